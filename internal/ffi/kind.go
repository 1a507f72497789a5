package ffi

import "fmt"

// TypeKind mirrors LLVMTypeKind. The numeric values match the C enum so the
// cgo binding can convert without a lookup table.
type TypeKind uint8

const (
	VoidTypeKind TypeKind = iota
	HalfTypeKind
	FloatTypeKind
	DoubleTypeKind
	X86FP80TypeKind
	FP128TypeKind
	PPCFP128TypeKind
	LabelTypeKind
	IntegerTypeKind
	FunctionTypeKind
	StructTypeKind
	ArrayTypeKind
	PointerTypeKind
	VectorTypeKind
	MetadataTypeKind
	X86MMXTypeKind
	TokenTypeKind
	ScalableVectorTypeKind
	BFloatTypeKind
	X86AMXTypeKind
	TargetExtTypeKind
)

func (k TypeKind) String() string {
	switch k {
	case VoidTypeKind:
		return "void"
	case HalfTypeKind:
		return "half"
	case FloatTypeKind:
		return "float"
	case DoubleTypeKind:
		return "double"
	case X86FP80TypeKind:
		return "x86_fp80"
	case FP128TypeKind:
		return "fp128"
	case PPCFP128TypeKind:
		return "ppc_fp128"
	case LabelTypeKind:
		return "label"
	case IntegerTypeKind:
		return "integer"
	case FunctionTypeKind:
		return "function"
	case StructTypeKind:
		return "struct"
	case ArrayTypeKind:
		return "array"
	case PointerTypeKind:
		return "pointer"
	case VectorTypeKind:
		return "vector"
	case MetadataTypeKind:
		return "metadata"
	case X86MMXTypeKind:
		return "x86_mmx"
	case TokenTypeKind:
		return "token"
	case ScalableVectorTypeKind:
		return "scalable_vector"
	case BFloatTypeKind:
		return "bfloat"
	case X86AMXTypeKind:
		return "x86_amx"
	case TargetExtTypeKind:
		return "target_ext"
	default:
		return fmt.Sprintf("TypeKind(%d)", k)
	}
}

// IsFloatingPoint reports whether the kind is one of the IEEE or
// target-specific floating formats.
func (k TypeKind) IsFloatingPoint() bool {
	switch k {
	case HalfTypeKind, BFloatTypeKind, FloatTypeKind, DoubleTypeKind,
		X86FP80TypeKind, FP128TypeKind, PPCFP128TypeKind:
		return true
	default:
		return false
	}
}

// FloatBits returns the storage width of a floating kind, or 0.
func (k TypeKind) FloatBits() uint32 {
	switch k {
	case HalfTypeKind, BFloatTypeKind:
		return 16
	case FloatTypeKind:
		return 32
	case DoubleTypeKind:
		return 64
	case X86FP80TypeKind:
		return 80
	case FP128TypeKind, PPCFP128TypeKind:
		return 128
	default:
		return 0
	}
}
