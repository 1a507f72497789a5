package irtype

import "irbind/internal/ffi"

// Value is a constant minted from a Type. It belongs to the same context as
// its type and lives until that context is disposed. Two constants are the
// same constant exactly when they compare equal with ==.
type Value struct {
	ref ffi.ValueRef
}

func (v Value) handle(op string) ffi.ValueRef {
	if v.ref.IsNull() {
		fatal(op, "value")
	}
	return v.ref
}

// Type returns v's type.
func (v Value) Type() Type {
	return newType(engine.TypeOf(v.handle("Value.Type")), "Value.Type")
}

// IsUndef reports whether v is an undef placeholder.
func (v Value) IsUndef() bool {
	return engine.IsUndef(v.handle("IsUndef"))
}

// IsConstant reports whether v is a constant.
func (v Value) IsConstant() bool {
	return engine.IsConstant(v.handle("IsConstant"))
}

// ZExtValue returns the stored bits of an integer constant, zero-extended.
// ok is false when v is not a folded integer constant.
func (v Value) ZExtValue() (uint64, bool) {
	ref := v.handle("ZExtValue")
	if !engine.IsConstantInt(ref) {
		return 0, false
	}
	return engine.ConstIntGetZExtValue(ref), true
}

// SExtValue is ZExtValue with sign extension from the type's width.
func (v Value) SExtValue() (int64, bool) {
	ref := v.handle("SExtValue")
	if !engine.IsConstantInt(ref) {
		return 0, false
	}
	return engine.ConstIntGetSExtValue(ref), true
}

// FloatValue returns a floating constant widened to float64. ok is false when
// v is not a folded floating constant.
func (v Value) FloatValue() (f float64, ok bool) {
	ref := v.handle("FloatValue")
	if !engine.IsConstantFP(ref) {
		return 0, false
	}
	f, _ = engine.ConstRealGetDouble(ref)
	return f, true
}

// Dump writes v to the engine's diagnostic stream.
func (v Value) Dump() {
	engine.DumpValue(v.handle("Value.Dump"))
}
