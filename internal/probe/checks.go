package probe

import (
	"errors"
	"fmt"

	"irbind/irtype"
)

// env is what a check sees: one private context plus the run options.
type env struct {
	ctx       irtype.Context
	widths    []uint32
	addrSpace uint32
}

type check struct {
	name string
	run  func(env) error
}

// checks run in this order in every context.
var checks = []check{
	{"int-singleton", checkIntSingleton},
	{"fn-round-trip", checkFnRoundTrip},
	{"zero-arity", checkZeroArity},
	{"struct-index-absent", checkStructIndexAbsent},
	{"derived-context", checkDerivedContext},
	{"const-truncation", checkConstTruncation},
	{"null-handle", checkNullHandle},
}

// Checks lists the check names in run order.
func Checks() []string {
	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = c.name
	}
	return names
}

func checkIntSingleton(e env) error {
	named := map[uint32]func() irtype.IntType{
		1:   e.ctx.BoolType,
		8:   e.ctx.I8Type,
		16:  e.ctx.I16Type,
		32:  e.ctx.I32Type,
		64:  e.ctx.I64Type,
		128: e.ctx.I128Type,
	}
	for _, w := range e.widths {
		a, b := e.ctx.CustomWidthIntType(w), e.ctx.CustomWidthIntType(w)
		if a != b {
			return fmt.Errorf("i%d: two requests gave %#v and %#v", w, a, b)
		}
		if got := a.BitWidth(); got != w {
			return fmt.Errorf("i%d: bit width %d", w, got)
		}
		if ctor, ok := named[w]; ok && ctor() != a {
			return fmt.Errorf("i%d: named constructor disagrees with custom width", w)
		}
	}
	return nil
}

func checkFnRoundTrip(e env) error {
	i32 := e.ctx.I32Type().AsType()
	f64 := e.ctx.DoubleType().AsType()
	ret := e.ctx.I8Type().AsType()

	fn := ret.FnType([]irtype.Type{i32, f64}, false)
	if n := fn.CountParamTypes(); n != 2 {
		return fmt.Errorf("%s: %d params, want 2", fn, n)
	}
	params := fn.ParamTypes()
	if len(params) != 2 || params[0] != i32 || params[1] != f64 {
		return fmt.Errorf("%s: params %v, want [i32 double]", fn, params)
	}
	if fn.IsVarArg() {
		return fmt.Errorf("%s: reported variadic", fn)
	}
	if fn.ReturnType() != ret {
		return fmt.Errorf("%s: return type %s", fn, fn.ReturnType())
	}
	return nil
}

func checkZeroArity(e env) error {
	fn := e.ctx.VoidType().FnType(nil, false)
	if n := fn.CountParamTypes(); n != 0 || len(fn.ParamTypes()) != 0 {
		return fmt.Errorf("%s: %d params, want 0", fn, n)
	}

	i32 := e.ctx.I32Type().AsType()
	empty := i32.ArrayType(0)
	if empty.Kind() != irtype.ArrayTypeKind {
		return fmt.Errorf("[0 x i32]: kind %s", empty.Kind())
	}
	if empty == i32 || empty == i32.ArrayType(1) {
		return errors.New("[0 x i32] is not distinct")
	}
	if !empty.IsSized() || empty.ArrayLength() != 0 {
		return fmt.Errorf("%s: sized=%t length=%d", empty, empty.IsSized(), empty.ArrayLength())
	}
	return nil
}

func checkStructIndexAbsent(e env) error {
	i8 := e.ctx.I8Type().AsType()
	i32 := e.ctx.I32Type().AsType()
	if got, ok := i32.TypeAtStructIndex(0); ok {
		return fmt.Errorf("i32 field 0: got %s", got)
	}
	st := e.ctx.StructType([]irtype.Type{i8, i32}, false).AsType()
	if got, ok := st.TypeAtStructIndex(2); ok {
		return fmt.Errorf("%s field 2: got %s", st, got)
	}
	if got, ok := st.TypeAtStructIndex(1); !ok || got != i32 {
		return fmt.Errorf("%s field 1: got %s, %t", st, got, ok)
	}
	return nil
}

func checkDerivedContext(e env) error {
	i16 := e.ctx.I16Type().AsType()
	derived := []irtype.Type{
		i16.PtrType(e.addrSpace),
		i16.ArrayType(4),
		i16.FnType([]irtype.Type{i16}, true).AsType(),
		e.ctx.StructType([]irtype.Type{i16}, true).AsType(),
	}
	for _, d := range derived {
		if d.Context() != e.ctx {
			return fmt.Errorf("%s: reports %s, want %s", d, d.Context(), e.ctx)
		}
	}
	if as := derived[0].PointerAddressSpace(); as != e.addrSpace {
		return fmt.Errorf("%s: address space %d, want %d", derived[0], as, e.addrSpace)
	}
	return nil
}

func checkConstTruncation(e env) error {
	i8 := e.ctx.I8Type()
	a, b := i8.ConstInt(300, false), i8.ConstInt(44, false)
	if a != b {
		return fmt.Errorf("%s and %s are different constants", a, b)
	}
	if v, ok := a.ZExtValue(); !ok || v != 44 {
		return fmt.Errorf("%s: zext %d, %t", a, v, ok)
	}
	return nil
}

func checkNullHandle(env) error {
	for _, tc := range []struct {
		name string
		fn   func()
	}{
		{"Type", func() { irtype.Type{}.PtrType(0) }},
		{"Value", func() { irtype.Value{}.Type() }},
		{"FunctionType", func() { irtype.FunctionType{}.ParamTypes() }},
	} {
		if err := expectInvariant(tc.fn); err != nil {
			return fmt.Errorf("zero %s: %w", tc.name, err)
		}
	}
	return nil
}

var errNoPanic = errors.New("no panic")

func expectInvariant(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			err = errNoPanic
			return
		}
		var inv *irtype.InvariantError
		if rerr, ok := r.(error); !ok || !errors.As(rerr, &inv) {
			err = fmt.Errorf("panicked with %v, want *irtype.InvariantError", r)
		}
	}()
	fn()
	return nil
}
