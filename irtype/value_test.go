package irtype

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"irbind/internal/ffi/sim"
)

func TestConstIntTruncatesToWidth(t *testing.T) {
	ctx := newTestContext(t)
	i8 := ctx.I8Type()

	wrapped := i8.ConstInt(300, false)
	direct := i8.ConstInt(44, false)
	if wrapped != direct {
		t.Fatalf("ConstInt(300) on i8 = %v, want the same constant as ConstInt(44) %v", wrapped, direct)
	}
	if got, ok := wrapped.ZExtValue(); !ok || got != 44 {
		t.Fatalf("ZExtValue() = %d, %v, want 44", got, ok)
	}
	if got := wrapped.String(); got != "i8 44" {
		t.Fatalf("String() = %q", got)
	}
}

func TestConstIntSignedViews(t *testing.T) {
	ctx := newTestContext(t)
	i8 := ctx.I8Type()
	v := i8.ConstInt(0xFF, false)
	if got, ok := v.SExtValue(); !ok || got != -1 {
		t.Fatalf("SExtValue() = %d, %v, want -1", got, ok)
	}
	if got, _ := v.ZExtValue(); got != 255 {
		t.Fatalf("ZExtValue() = %d, want 255", got)
	}
	if i8.ConstAllOnes() != v {
		t.Fatalf("ConstAllOnes must equal 0xFF on i8")
	}
	if got := v.String(); got != "i8 -1" {
		t.Fatalf("String() = %q", got)
	}

	b := ctx.BoolType()
	if got := b.ConstInt(1, false).String(); got != "i1 true" {
		t.Fatalf("bool rendering = %q", got)
	}
	if got := b.ConstInt(2, false).String(); got != "i1 false" {
		t.Fatalf("i1 must keep only the low bit, got %q", got)
	}
}

func TestConstIntWideSignExtension(t *testing.T) {
	ctx := newTestContext(t)
	i128 := ctx.I128Type().AsType()
	neg := i128.ConstInt(math.MaxUint64, true)
	pos := i128.ConstInt(math.MaxUint64, false)
	if neg == pos {
		t.Fatalf("sign extension must change a 128-bit constant")
	}
	if got := neg.String(); got != "i128 -1" {
		t.Fatalf("sign-extended String() = %q", got)
	}
	if got := pos.String(); got != "i128 18446744073709551615" {
		t.Fatalf("zero-extended String() = %q", got)
	}
	if got := i128.ConstInt(1<<63, false).String(); got != "i128 9223372036854775808" {
		t.Fatalf("String() of 2^63 = %q", got)
	}
	if got := ctx.I64Type().ConstInt(1<<63, false).String(); got != "i64 -9223372036854775808" {
		t.Fatalf("i64 keeps signed rendering, got %q", got)
	}
}

func TestConstantsAreUniqued(t *testing.T) {
	ctx := newTestContext(t)
	i32 := ctx.I32Type().AsType()
	if i32.ConstInt(7, false) != i32.ConstInt(7, false) {
		t.Fatalf("equal integer constants must be the same value")
	}
	if i32.ConstNull() != i32.ConstInt(0, false) {
		t.Fatalf("ConstNull of i32 must be i32 0")
	}
	if i32.Undef() != i32.Undef() {
		t.Fatalf("undef must be uniqued")
	}
}

func TestConstFloat(t *testing.T) {
	ctx := newTestContext(t)
	dbl := ctx.DoubleType()
	v := dbl.ConstFloat(1.5)
	if f, ok := v.FloatValue(); !ok || f != 1.5 {
		t.Fatalf("FloatValue() = %v, %v", f, ok)
	}
	if got := v.String(); got != "double 1.500000e+00" {
		t.Fatalf("String() = %q", got)
	}
	if _, ok := v.ZExtValue(); ok {
		t.Fatalf("a float constant has no integer value")
	}

	f32 := ctx.FloatType().AsType().ConstFloat(0.1)
	if f, _ := f32.FloatValue(); f != float64(float32(0.1)) {
		t.Fatalf("float constant not rounded to single precision: %v", f)
	}

	half := ctx.HalfType()
	if half.ConstFloat(1.0001) != half.ConstFloat(1.0) {
		t.Fatalf("half 1.0001 and half 1.0 must be the same constant")
	}
	if f, _ := half.ConstFloat(0.1).FloatValue(); f != 0.0999755859375 {
		t.Fatalf("half constant not rounded to binary16: %v", f)
	}
	if f, _ := half.ConstFloat(1e5).FloatValue(); !math.IsInf(f, 1) {
		t.Fatalf("half overflow = %v, want +Inf", f)
	}
}

func TestUndefValues(t *testing.T) {
	ctx := newTestContext(t)
	i32 := ctx.I32Type().AsType()
	u := i32.Undef()
	if !u.IsUndef() || !u.IsConstant() {
		t.Fatalf("undef misreported")
	}
	if u.Type() != i32 {
		t.Fatalf("Type() = %v", u.Type())
	}
	if got := u.String(); got != "i32 undef" {
		t.Fatalf("String() = %q", got)
	}
	if i32.ConstInt(1, false).IsUndef() {
		t.Fatalf("a defined constant reported undef")
	}
	arr := i32.ConstArray([]Value{u, u})
	if !arr.IsUndef() {
		t.Fatalf("an all-undef array collapses to undef, got %v", arr)
	}
}

func TestConstArray(t *testing.T) {
	ctx := newTestContext(t)
	i32 := ctx.I32Type().AsType()
	arr := i32.ConstArray([]Value{i32.ConstInt(1, false), i32.ConstInt(2, false)})
	if arr.Type() != i32.ArrayType(2) {
		t.Fatalf("Type() = %v, want [2 x i32]", arr.Type())
	}
	if got := arr.String(); got != "[2 x i32] [i32 1, i32 2]" {
		t.Fatalf("String() = %q", got)
	}

	zeros := i32.ConstArray([]Value{i32.ConstNull(), i32.ConstNull()})
	if got := zeros.String(); got != "[2 x i32] zeroinitializer" {
		t.Fatalf("all-zero array rendering = %q", got)
	}

	empty := i32.ConstArray(nil)
	if empty.Type() != i32.ArrayType(0) {
		t.Fatalf("empty array type = %v", empty.Type())
	}

	i8 := ctx.I8Type()
	str := i8.AsType().ConstArray([]Value{i8.ConstInt('h', false), i8.ConstInt('i', false), i8.ConstInt(0, false)})
	if got := str.String(); got != `[3 x i8] c"hi\00"` {
		t.Fatalf("byte array rendering = %q", got)
	}
}

func TestConstStruct(t *testing.T) {
	ctx := newTestContext(t)
	i8 := ctx.I8Type().AsType()
	i32 := ctx.I32Type().AsType()

	pair := ctx.NamedStructType("pair")
	pair.SetBody([]Type{i8, i32}, false)
	v := pair.ConstStruct([]Value{i8.ConstInt(1, false), i32.ConstInt(2, false)})
	if v.Type() != pair.AsType() {
		t.Fatalf("Type() = %v", v.Type())
	}
	if got := v.String(); got != "%pair { i8 1, i32 2 }" {
		t.Fatalf("String() = %q", got)
	}

	lit := ctx.StructType([]Type{i8, i32}, true)
	lv := lit.ConstStruct([]Value{i8.ConstInt(3, false), i32.ConstInt(4, false)})
	if got := lv.String(); got != "<{ i8, i32 }> <{ i8 3, i32 4 }>" {
		t.Fatalf("packed rendering = %q", got)
	}
}

func TestAlignmentAndSize(t *testing.T) {
	ctx := newTestContext(t)
	i8 := ctx.I8Type().AsType()
	i32 := ctx.I32Type().AsType()
	cases := []struct {
		name  string
		typ   Type
		align uint64
		size  uint64
	}{
		{"i8", i8, 1, 1},
		{"i32", i32, 4, 4},
		{"i64", ctx.I64Type().AsType(), 8, 8},
		{"ptr", i8.PtrType(0), 8, 8},
		{"double", ctx.DoubleType().AsType(), 8, 8},
		{"[3 x i32]", i32.ArrayType(3), 4, 12},
		{"{ i8, i32 }", ctx.StructType([]Type{i8, i32}, false).AsType(), 4, 8},
		{"<{ i8, i32 }>", ctx.StructType([]Type{i8, i32}, true).AsType(), 1, 5},
		{"{}", ctx.StructType(nil, false).AsType(), 1, 0},
	}
	for _, tc := range cases {
		align := tc.typ.Alignment()
		if align.Type() != ctx.I64Type().AsType() {
			t.Errorf("%s: alignment type = %v, want i64", tc.name, align.Type())
		}
		if got, ok := align.ZExtValue(); !ok || got != tc.align {
			t.Errorf("%s: alignment = %d, %v, want %d", tc.name, got, ok, tc.align)
		}
		if got, ok := tc.typ.SizeOf().ZExtValue(); !ok || got != tc.size {
			t.Errorf("%s: size = %d, %v, want %d", tc.name, got, ok, tc.size)
		}
	}
}

func TestAlignmentOfUnsizedTypePanics(t *testing.T) {
	ctx := newTestContext(t)
	err := expectInvariant(t, func() { ctx.VoidType().Alignment() })
	if err.Op != "Alignment" || err.Handle != "value" {
		t.Fatalf("unexpected error %+v", err)
	}
}

func TestNullEngineResultPanics(t *testing.T) {
	useEngine(t, nullingEngine{ABI: sim.New(), nullPointer: true})
	ctx := newTestContext(t)
	i8 := ctx.I8Type().AsType()

	err := expectInvariant(t, func() { i8.PtrType(0) })
	if err.Op != "PtrType" || err.Handle != "type" {
		t.Fatalf("unexpected error %+v", err)
	}
	if err.Error() != "irtype: PtrType: null type handle" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestNullConstantPanics(t *testing.T) {
	useEngine(t, nullingEngine{ABI: sim.New(), nullConst: true})
	ctx := newTestContext(t)
	err := expectInvariant(t, func() { ctx.I32Type().ConstInt(1, false) })
	if err.Op != "ConstInt" || err.Handle != "value" {
		t.Fatalf("unexpected error %+v", err)
	}
}

func TestNullParamTypesPanics(t *testing.T) {
	useEngine(t, nullingEngine{ABI: sim.New(), nullParams: true})
	ctx := newTestContext(t)
	i32 := ctx.I32Type().AsType()
	fn := i32.FnType([]Type{i32}, false)
	err := expectInvariant(t, func() { fn.ParamTypes() })
	if err.Op != "ParamTypes" {
		t.Fatalf("unexpected error %+v", err)
	}
	// zero parameters never reach the engine
	if got := i32.FnType(nil, false).ParamTypes(); len(got) != 0 {
		t.Fatalf("ParamTypes() = %v", got)
	}
}

func TestZeroWrappersPanic(t *testing.T) {
	cases := map[string]func(){
		"Type":         func() { Type{}.Kind() },
		"Value":        func() { Value{}.Type() },
		"Context":      func() { Context{}.VoidType() },
		"IntType":      func() { IntType{}.BitWidth() },
		"FunctionType": func() { FunctionType{}.ReturnType() },
		"element":      func() { GlobalContext().I8Type().AsType().FnType([]Type{{}}, false) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			expectInvariant(t, fn)
		})
	}
}

func TestConstFloatOnIntegerPanics(t *testing.T) {
	ctx := newTestContext(t)
	err := expectInvariant(t, func() { ctx.I32Type().AsType().ConstFloat(1) })
	if err.Op != "ConstFloat" {
		t.Fatalf("unexpected error %+v", err)
	}
}

func TestCheckedVariants(t *testing.T) {
	ctx := newTestContext(t)
	other := newTestContext(t)
	i8 := ctx.I8Type().AsType()
	i32 := ctx.I32Type().AsType()

	t.Run("ConstFloat", func(t *testing.T) {
		_, err := i32.ConstFloatChecked(2.5)
		var ce *ContractError
		if !errors.As(err, &ce) || ce.Kind != ContractNotFloat || ce.Index != -1 {
			t.Fatalf("err = %v", err)
		}
		v, err := ctx.DoubleType().AsType().ConstFloatChecked(2.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f, _ := v.FloatValue(); f != 2.5 {
			t.Fatalf("FloatValue() = %v", f)
		}
	})

	t.Run("SizeOf", func(t *testing.T) {
		v, err := i32.ArrayType(3).SizeOfChecked()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n, _ := v.ZExtValue(); n != 12 {
			t.Fatalf("SizeOfChecked = %d, want 12", n)
		}
		_, err = ctx.NamedStructType("undefined").AsType().SizeOfChecked()
		if !errors.Is(err, &ContractError{Kind: ContractUnsized}) {
			t.Fatalf("err = %v", err)
		}
		huge := ctx.I64Type().AsType().ArrayType(math.MaxUint32).ArrayType(math.MaxUint32)
		_, err = huge.SizeOfChecked()
		if !errors.Is(err, &ContractError{Kind: ContractSizeOverflow}) {
			t.Fatalf("err = %v", err)
		}
		if n, _ := huge.Alignment().ZExtValue(); n != 8 {
			t.Fatalf("Alignment() = %d, want 8", n)
		}
	})

	t.Run("FnType", func(t *testing.T) {
		_, err := i8.FnTypeChecked([]Type{i32, other.I32Type().AsType()}, false)
		if !errors.Is(err, &ContractError{Kind: ContractContextMismatch}) {
			t.Fatalf("err = %v", err)
		}
		var ce *ContractError
		if errors.As(err, &ce) && ce.Index != 1 {
			t.Fatalf("Index = %d, want 1", ce.Index)
		}
		fn, err := i8.FnTypeChecked([]Type{i32}, false)
		if err != nil || fn != i8.FnType([]Type{i32}, false) {
			t.Fatalf("FnTypeChecked = %v, %v", fn, err)
		}
	})

	t.Run("ConstArray", func(t *testing.T) {
		_, err := i32.ConstArrayChecked([]Value{i32.ConstInt(1, false), i8.ConstInt(1, false)})
		var ce *ContractError
		if !errors.As(err, &ce) || ce.Kind != ContractElementType || ce.Index != 1 {
			t.Fatalf("err = %v", err)
		}
		if ce.Error() != "irtype: ConstArray: element type mismatch at element 1: want i32, got i8" {
			t.Fatalf("Error() = %q", ce.Error())
		}
	})

	t.Run("ConstStruct", func(t *testing.T) {
		st := ctx.StructType([]Type{i8, i32}, false).AsType()
		_, err := i32.ConstStructChecked(nil)
		if !errors.Is(err, &ContractError{Kind: ContractNotStruct}) {
			t.Fatalf("non-struct: err = %v", err)
		}
		_, err = ctx.NamedStructType("later").AsType().ConstStructChecked(nil)
		if !errors.Is(err, &ContractError{Kind: ContractOpaqueStruct}) {
			t.Fatalf("opaque: err = %v", err)
		}
		_, err = st.ConstStructChecked([]Value{i8.ConstInt(1, false)})
		if !errors.Is(err, &ContractError{Kind: ContractArity}) {
			t.Fatalf("arity: err = %v", err)
		}
		_, err = st.ConstStructChecked([]Value{i32.ConstInt(1, false), i32.ConstInt(1, false)})
		if !errors.Is(err, &ContractError{Kind: ContractElementType}) {
			t.Fatalf("element: err = %v", err)
		}
		v, err := st.ConstStructChecked([]Value{i8.ConstInt(1, false), i32.ConstInt(2, false)})
		if err != nil || v.Type() != st {
			t.Fatalf("ConstStructChecked = %v, %v", v, err)
		}
	})
}

func TestDumpWritesToDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	useSim(t, sim.WithDiagnostics(&buf))
	ctx := newTestContext(t)

	i32 := ctx.I32Type().AsType()
	i32.Dump()
	i32.ConstInt(5, false).Dump()
	if got := buf.String(); got != "i32\ni32 5\n" {
		t.Fatalf("dump output = %q", got)
	}
}

func TestWithContextDisposes(t *testing.T) {
	e := useSim(t)
	before := e.LiveContexts()
	var inner Context
	err := WithContext(func(ctx Context) error {
		inner = ctx
		if e.LiveContexts() != before+1 {
			t.Fatalf("context not live inside WithContext")
		}
		if ctx.I8Type().AsType().ConstInt(1, false).Type().Context() != ctx {
			t.Fatalf("constant escaped its context")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithContext: %v", err)
	}
	if e.LiveContexts() != before {
		t.Fatalf("context %v not disposed", inner)
	}

	sentinel := errors.New("boom")
	if err := WithContext(func(Context) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("WithContext lost the callback error: %v", err)
	}
}

func TestGlobalContextDisposeIsNoop(t *testing.T) {
	e := useSim(t)
	g := GlobalContext()
	g.Dispose()
	if !g.IsGlobal() {
		t.Fatalf("global context lost its identity")
	}
	if I32Type().BitWidth() != 32 {
		t.Fatalf("global context unusable after Dispose")
	}
	if e.LiveContexts() < 1 {
		t.Fatalf("global context reported dead")
	}
}
