package irtype

import "irbind/internal/ffi"

// FunctionType is the view of a function signature. Obtain one from
// Type.FnType or Type.AsFunctionType.
type FunctionType struct {
	ref ffi.TypeRef
}

func (f FunctionType) handle(op string) ffi.TypeRef {
	if f.ref.IsNull() {
		fatal(op, "type")
	}
	return f.ref
}

// AsType returns the general view of f.
func (f FunctionType) AsType() Type {
	return Type{ref: f.handle("FunctionType.AsType")}
}

// IsVarArg reports whether the signature ends in "...".
func (f FunctionType) IsVarArg() bool {
	return engine.IsFunctionVarArg(f.handle("IsVarArg"))
}

// CountParamTypes returns the number of fixed parameters.
func (f FunctionType) CountParamTypes() uint32 {
	return engine.CountParamTypes(f.handle("CountParamTypes"))
}

// ParamTypes returns the fixed parameters in declaration order. The result
// always has CountParamTypes elements.
func (f FunctionType) ParamTypes() []Type {
	ref := f.handle("ParamTypes")
	return fillTypes("ParamTypes", engine.CountParamTypes(ref), func(dst []ffi.TypeRef) {
		engine.GetParamTypes(ref, dst)
	})
}

// ReturnType returns the type the signature was built from.
func (f FunctionType) ReturnType() Type {
	return newType(engine.GetReturnType(f.handle("ReturnType")), "ReturnType")
}
