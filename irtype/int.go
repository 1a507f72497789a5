package irtype

import "irbind/internal/ffi"

// IntType is the view of an integer type. The constructors below form the
// closed set of named widths; CustomWidthIntType covers the rest. Repeated
// calls with the same width on the same context return the same type.
type IntType struct {
	ref ffi.TypeRef
}

func intType(c Context, bits uint32, op string) IntType {
	return IntType{ref: newType(engine.IntTypeInContext(c.handle(op), bits), op).ref}
}

// BoolType returns i1.
func (c Context) BoolType() IntType { return intType(c, 1, "BoolType") }

// I8Type returns i8.
func (c Context) I8Type() IntType { return intType(c, 8, "I8Type") }

// I16Type returns i16.
func (c Context) I16Type() IntType { return intType(c, 16, "I16Type") }

// I32Type returns i32.
func (c Context) I32Type() IntType { return intType(c, 32, "I32Type") }

// I64Type returns i64.
func (c Context) I64Type() IntType { return intType(c, 64, "I64Type") }

// I128Type returns i128.
func (c Context) I128Type() IntType { return intType(c, 128, "I128Type") }

// CustomWidthIntType returns iN for bits N. Widths the engine rejects
// (0, or above its maximum) are fatal.
func (c Context) CustomWidthIntType(bits uint32) IntType {
	return intType(c, bits, "CustomWidthIntType")
}

// BoolType returns i1 in the global context.
func BoolType() IntType { return GlobalContext().BoolType() }

// I8Type returns i8 in the global context.
func I8Type() IntType { return GlobalContext().I8Type() }

// I16Type returns i16 in the global context.
func I16Type() IntType { return GlobalContext().I16Type() }

// I32Type returns i32 in the global context.
func I32Type() IntType { return GlobalContext().I32Type() }

// I64Type returns i64 in the global context.
func I64Type() IntType { return GlobalContext().I64Type() }

// I128Type returns i128 in the global context.
func I128Type() IntType { return GlobalContext().I128Type() }

// CustomWidthIntType returns iN in the global context.
func CustomWidthIntType(bits uint32) IntType { return GlobalContext().CustomWidthIntType(bits) }

func (i IntType) handle(op string) ffi.TypeRef {
	if i.ref.IsNull() {
		fatal(op, "type")
	}
	return i.ref
}

// AsType returns the general view of i.
func (i IntType) AsType() Type {
	return Type{ref: i.handle("IntType.AsType")}
}

// BitWidth returns N for iN.
func (i IntType) BitWidth() uint32 {
	return engine.GetIntTypeWidth(i.handle("BitWidth"))
}

// ConstInt is Type.ConstInt on the general view.
func (i IntType) ConstInt(v uint64, signExtend bool) Value {
	return i.AsType().ConstInt(v, signExtend)
}

// ConstAllOnes returns the constant with every bit set.
func (i IntType) ConstAllOnes() Value {
	return i.AsType().ConstInt(^uint64(0), true)
}
