package irtype

import "irbind/internal/ffi"

// FloatType is the view of a floating-point type.
type FloatType struct {
	ref ffi.TypeRef
}

func floatType(c Context, kind TypeKind, op string) FloatType {
	return FloatType{ref: newType(engine.FloatKindTypeInContext(c.handle(op), kind), op).ref}
}

// HalfType returns the IEEE binary16 type.
func (c Context) HalfType() FloatType { return floatType(c, HalfTypeKind, "HalfType") }

// BFloatType returns the brain-float 16-bit type.
func (c Context) BFloatType() FloatType { return floatType(c, BFloatTypeKind, "BFloatType") }

// FloatType returns the IEEE binary32 type.
func (c Context) FloatType() FloatType { return floatType(c, FloatTypeKind, "FloatType") }

// DoubleType returns the IEEE binary64 type.
func (c Context) DoubleType() FloatType { return floatType(c, DoubleTypeKind, "DoubleType") }

// X86FP80Type returns the x87 80-bit extended type.
func (c Context) X86FP80Type() FloatType { return floatType(c, X86FP80TypeKind, "X86FP80Type") }

// FP128Type returns the IEEE binary128 type.
func (c Context) FP128Type() FloatType { return floatType(c, FP128TypeKind, "FP128Type") }

// PPCFP128Type returns the PowerPC double-double type.
func (c Context) PPCFP128Type() FloatType { return floatType(c, PPCFP128TypeKind, "PPCFP128Type") }

func (f FloatType) handle(op string) ffi.TypeRef {
	if f.ref.IsNull() {
		fatal(op, "type")
	}
	return f.ref
}

// AsType returns the general view of f.
func (f FloatType) AsType() Type {
	return Type{ref: f.handle("FloatType.AsType")}
}

// Kind returns which floating format f is.
func (f FloatType) Kind() TypeKind {
	return engine.GetTypeKind(f.handle("FloatType.Kind"))
}

// ConstFloat is Type.ConstFloat on the general view; it cannot hit the
// non-floating case.
func (f FloatType) ConstFloat(v float64) Value {
	return f.AsType().ConstFloat(v)
}
