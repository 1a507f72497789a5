package irtype

import (
	"irbind/internal/ffi"
)

// TypeKind classifies a type. The set is closed and mirrors the engine's
// own enumeration.
type TypeKind = ffi.TypeKind

const (
	VoidTypeKind           = ffi.VoidTypeKind
	HalfTypeKind           = ffi.HalfTypeKind
	FloatTypeKind          = ffi.FloatTypeKind
	DoubleTypeKind         = ffi.DoubleTypeKind
	X86FP80TypeKind        = ffi.X86FP80TypeKind
	FP128TypeKind          = ffi.FP128TypeKind
	PPCFP128TypeKind       = ffi.PPCFP128TypeKind
	LabelTypeKind          = ffi.LabelTypeKind
	IntegerTypeKind        = ffi.IntegerTypeKind
	FunctionTypeKind       = ffi.FunctionTypeKind
	StructTypeKind         = ffi.StructTypeKind
	ArrayTypeKind          = ffi.ArrayTypeKind
	PointerTypeKind        = ffi.PointerTypeKind
	VectorTypeKind         = ffi.VectorTypeKind
	MetadataTypeKind       = ffi.MetadataTypeKind
	X86MMXTypeKind         = ffi.X86MMXTypeKind
	TokenTypeKind          = ffi.TokenTypeKind
	ScalableVectorTypeKind = ffi.ScalableVectorTypeKind
	BFloatTypeKind         = ffi.BFloatTypeKind
	X86AMXTypeKind         = ffi.X86AMXTypeKind
	TargetExtTypeKind      = ffi.TargetExtTypeKind
)

// Type is any engine type. Two Types are the same type exactly when they
// compare equal with ==. The zero Type is not usable.
type Type struct {
	ref ffi.TypeRef
}

func (t Type) handle(op string) ffi.TypeRef {
	if t.ref.IsNull() {
		fatal(op, "type")
	}
	return t.ref
}

// PtrType returns a pointer type in the given address space. The address
// space is passed to the engine as is. Pointers are opaque in current LLVM,
// so the result does not depend on t beyond its context.
func (t Type) PtrType(addressSpace uint32) Type {
	return newType(engine.PointerType(t.handle("PtrType"), addressSpace), "PtrType")
}

// FnType returns the signature with t as return type. params may be empty.
// Every parameter must belong to t's context; a parameter from another
// context is undefined behaviour in the engine. FnTypeChecked verifies it.
func (t Type) FnType(params []Type, isVarArg bool) FunctionType {
	mustCount("FnType", len(params))
	ref := engine.FunctionType(t.handle("FnType"), typeRefs("FnType", params), isVarArg)
	return FunctionType{ref: newType(ref, "FnType").ref}
}

// ArrayType returns the array of size elements of t. Zero is a valid size.
func (t Type) ArrayType(size uint32) Type {
	return newType(engine.ArrayType(t.handle("ArrayType"), size), "ArrayType")
}

// ConstInt returns an integer constant of t. The engine truncates v to t's
// bit width; signExtend only decides how the bits above 64 are filled for
// integers wider than 64 bits. t must be an integer type.
func (t Type) ConstInt(v uint64, signExtend bool) Value {
	return newValue(engine.ConstInt(t.handle("ConstInt"), v, signExtend), "ConstInt")
}

// ConstFloat returns a floating constant of t. On a non-floating type the
// engine's answer is passed through: the simulated engine refuses with null
// (and this call panics), LLVM release builds may return a meaningless value.
// ConstFloatChecked refuses before calling the engine.
func (t Type) ConstFloat(v float64) Value {
	return newValue(engine.ConstReal(t.handle("ConstFloat"), v), "ConstFloat")
}

// ConstArray returns the constant array [len(values) x t]. Every value must
// have type t; this is not verified. ConstArrayChecked verifies it.
func (t Type) ConstArray(values []Value) Value {
	mustCount("ConstArray", len(values))
	ref := engine.ConstArray(t.handle("ConstArray"), valueRefs("ConstArray", values))
	return newValue(ref, "ConstArray")
}

// ConstStruct returns a constant of the struct type t with one value per
// field, in order. Field count and field types are not verified;
// ConstStructChecked verifies them.
func (t Type) ConstStruct(values []Value) Value {
	mustCount("ConstStruct", len(values))
	ref := engine.ConstNamedStruct(t.handle("ConstStruct"), valueRefs("ConstStruct", values))
	return newValue(ref, "ConstStruct")
}

// ConstNull returns the all-zero constant of t.
func (t Type) ConstNull() Value {
	return newValue(engine.ConstNull(t.handle("ConstNull")), "ConstNull")
}

// Undef returns the undefined value of t.
func (t Type) Undef() Value {
	return newValue(engine.GetUndef(t.handle("Undef")), "Undef")
}

// TypeAtStructIndex returns the type of field index. ok is false when t is
// not a struct or has no such field.
func (t Type) TypeAtStructIndex(index uint32) (Type, bool) {
	if t.Kind() != StructTypeKind {
		return Type{}, false
	}
	return optionalType(engine.StructGetTypeAtIndex(t.ref, index))
}

// Kind returns t's kind.
func (t Type) Kind() TypeKind {
	return engine.GetTypeKind(t.handle("Kind"))
}

// Alignment returns t's ABI alignment as a constant of the target's size type
// (i64), not as a Go integer. LLVM may leave it as an unfolded constant
// expression. t must be sized.
func (t Type) Alignment() Value {
	return newValue(engine.AlignOf(t.handle("Alignment")), "Alignment")
}

// SizeOf returns t's allocation size in the same form as Alignment.
func (t Type) SizeOf() Value {
	return newValue(engine.SizeOf(t.handle("SizeOf")), "SizeOf")
}

// Context returns the context t was interned in.
func (t Type) Context() Context {
	return newContext(engine.GetTypeContext(t.handle("Context")), "Context")
}

// IsSized reports whether values of t have a size.
func (t Type) IsSized() bool {
	return engine.TypeIsSized(t.handle("IsSized"))
}

// ElementType returns the element type of an array or vector.
func (t Type) ElementType() (Type, bool) {
	return optionalType(engine.GetElementType(t.handle("ElementType")))
}

// ArrayLength returns the element count of an array type, or 0.
func (t Type) ArrayLength() uint64 {
	return engine.GetArrayLength(t.handle("ArrayLength"))
}

// PointerAddressSpace returns the address space of a pointer type, or 0.
func (t Type) PointerAddressSpace() uint32 {
	return engine.GetPointerAddressSpace(t.handle("PointerAddressSpace"))
}

// Dump writes t to the engine's diagnostic stream.
func (t Type) Dump() {
	engine.DumpType(t.handle("Dump"))
}

// AsFunctionType returns the function view of t.
func (t Type) AsFunctionType() (FunctionType, bool) {
	if t.Kind() != FunctionTypeKind {
		return FunctionType{}, false
	}
	return FunctionType{ref: t.ref}, true
}

// AsIntType returns the integer view of t.
func (t Type) AsIntType() (IntType, bool) {
	if t.Kind() != IntegerTypeKind {
		return IntType{}, false
	}
	return IntType{ref: t.ref}, true
}

// AsFloatType returns the floating-point view of t.
func (t Type) AsFloatType() (FloatType, bool) {
	if !t.Kind().IsFloatingPoint() {
		return FloatType{}, false
	}
	return FloatType{ref: t.ref}, true
}

// AsStructType returns the struct view of t.
func (t Type) AsStructType() (StructType, bool) {
	if t.Kind() != StructTypeKind {
		return StructType{}, false
	}
	return StructType{ref: t.ref}, true
}
