package irtype

import (
	"fmt"
	"strconv"
)

// String returns the engine's rendering of t, e.g. "i8 (i32, ...)".
func (t Type) String() string {
	if t.ref.IsNull() {
		return "<nil type>"
	}
	return engine.PrintTypeToString(t.ref)
}

// GoString renders the handle address next to the engine's rendering.
func (t Type) GoString() string {
	return debugString("Type", uintptr(t.ref), t.String())
}

func (f FunctionType) String() string { return Type(f).String() }

func (f FunctionType) GoString() string {
	return debugString("FunctionType", uintptr(f.ref), f.String())
}

func (i IntType) String() string { return Type(i).String() }

func (i IntType) GoString() string {
	return debugString("IntType", uintptr(i.ref), i.String())
}

func (f FloatType) String() string { return Type(f).String() }

func (f FloatType) GoString() string {
	return debugString("FloatType", uintptr(f.ref), f.String())
}

func (s StructType) String() string { return Type(s).String() }

func (s StructType) GoString() string {
	return debugString("StructType", uintptr(s.ref), s.String())
}

// String returns the engine's rendering of v, e.g. "i8 44".
func (v Value) String() string {
	if v.ref.IsNull() {
		return "<nil value>"
	}
	return engine.PrintValueToString(v.ref)
}

func (v Value) GoString() string {
	return debugField("Value", uintptr(v.ref), "llvm_value", v.String())
}

func debugString(name string, addr uintptr, rendered string) string {
	return debugField(name, addr, "llvm_type", rendered)
}

func debugField(name string, addr uintptr, key, rendered string) string {
	return fmt.Sprintf("%s{address: %#x, %s: %s}", name, addr, key, strconv.Quote(rendered))
}
