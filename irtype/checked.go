package irtype

import (
	"fmt"

	"go.uber.org/zap"
)

// ContractKind enumerates caller preconditions the ...Checked operations
// verify before reaching the engine.
type ContractKind uint8

const (
	// ContractContextMismatch: a component belongs to another context.
	ContractContextMismatch ContractKind = iota + 1
	// ContractElementType: an element's type differs from the expected one.
	ContractElementType
	// ContractArity: the number of elements differs from the field count.
	ContractArity
	// ContractNotStruct: a struct operation on a non-struct type.
	ContractNotStruct
	// ContractOpaqueStruct: a struct constant of a type with no body.
	ContractOpaqueStruct
	// ContractNotFloat: a floating constant of a non-floating type.
	ContractNotFloat
	// ContractUnsized: a layout query on a type without a size.
	ContractUnsized
	// ContractSizeOverflow: the allocation size does not fit in 64 bits.
	ContractSizeOverflow
)

func (k ContractKind) String() string {
	switch k {
	case ContractContextMismatch:
		return "context mismatch"
	case ContractElementType:
		return "element type mismatch"
	case ContractArity:
		return "arity mismatch"
	case ContractNotStruct:
		return "not a struct type"
	case ContractOpaqueStruct:
		return "opaque struct"
	case ContractNotFloat:
		return "not a floating-point type"
	case ContractUnsized:
		return "unsized type"
	case ContractSizeOverflow:
		return "size overflows 64 bits"
	default:
		return fmt.Sprintf("ContractKind(%d)", k)
	}
}

// ContractError reports a violated precondition. Index is the offending
// element, or -1 when the violation is not about one element.
type ContractError struct {
	Kind  ContractKind
	Op    string
	Index int
	Want  string
	Got   string
}

func (e *ContractError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("irtype: %s: %s", e.Op, e.Kind)
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at element %d", e.Index)
	}
	if e.Want != "" || e.Got != "" {
		msg += fmt.Sprintf(": want %s, got %s", e.Want, e.Got)
	}
	return msg
}

// Is matches another *ContractError with the same Kind.
func (e *ContractError) Is(target error) bool {
	t, ok := target.(*ContractError)
	return ok && e != nil && t.Kind == e.Kind
}

func contractErr(kind ContractKind, op string, index int, want, got string) error {
	err := &ContractError{Kind: kind, Op: op, Index: index, Want: want, Got: got}
	Logger().Debug("contract violation",
		zap.String("op", op),
		zap.Stringer("kind", kind),
		zap.Int("index", index))
	return err
}

// FnTypeChecked is FnType after verifying that every parameter shares t's
// context.
func (t Type) FnTypeChecked(params []Type, isVarArg bool) (FunctionType, error) {
	ctx := t.Context()
	for i, p := range params {
		if pc := p.Context(); pc != ctx {
			return FunctionType{}, contractErr(ContractContextMismatch, "FnType", i, ctx.String(), pc.String())
		}
	}
	return t.FnType(params, isVarArg), nil
}

// ConstFloatChecked is ConstFloat after verifying that t is a floating type.
func (t Type) ConstFloatChecked(v float64) (Value, error) {
	if k := t.Kind(); !k.IsFloatingPoint() {
		return Value{}, contractErr(ContractNotFloat, "ConstFloat", -1, "floating-point type", t.String())
	}
	return t.ConstFloat(v), nil
}

// SizeOfChecked is SizeOf for types whose size may be unknown. Unsized
// types and sizes the engine cannot fold into an i64 are reported instead of
// panicking.
func (t Type) SizeOfChecked() (Value, error) {
	h := t.handle("SizeOf")
	if !engine.TypeIsSized(h) {
		return Value{}, contractErr(ContractUnsized, "SizeOf", -1, "sized type", t.String())
	}
	v := engine.SizeOf(h)
	if v.IsNull() {
		return Value{}, contractErr(ContractSizeOverflow, "SizeOf", -1, "size below 2^64", t.String())
	}
	return Value{ref: v}, nil
}

// ConstArrayChecked is ConstArray after verifying that every value has type t.
func (t Type) ConstArrayChecked(values []Value) (Value, error) {
	for i, v := range values {
		if vt := v.Type(); vt != t {
			return Value{}, contractErr(ContractElementType, "ConstArray", i, t.String(), vt.String())
		}
	}
	return t.ConstArray(values), nil
}

// ConstStructChecked is ConstStruct after verifying that t is a struct with
// a body and that values match its fields one for one.
func (t Type) ConstStructChecked(values []Value) (Value, error) {
	st, ok := t.AsStructType()
	if !ok {
		return Value{}, contractErr(ContractNotStruct, "ConstStruct", -1, "struct type", t.String())
	}
	if st.IsOpaque() {
		return Value{}, contractErr(ContractOpaqueStruct, "ConstStruct", -1, "struct with a body", t.String())
	}
	fields := st.FieldTypes()
	if len(fields) != len(values) {
		return Value{}, contractErr(ContractArity, "ConstStruct", -1,
			fmt.Sprintf("%d values", len(fields)), fmt.Sprintf("%d values", len(values)))
	}
	for i, v := range values {
		if vt := v.Type(); vt != fields[i] {
			return Value{}, contractErr(ContractElementType, "ConstStruct", i, fields[i].String(), vt.String())
		}
	}
	return t.ConstStruct(values), nil
}
