package irtype

import (
	"strings"
	"testing"
)

func TestIntTypeSingletonIdentity(t *testing.T) {
	ctx := newTestContext(t)
	ctors := map[string]func() IntType{
		"bool": ctx.BoolType,
		"i8":   ctx.I8Type,
		"i16":  ctx.I16Type,
		"i32":  ctx.I32Type,
		"i64":  ctx.I64Type,
		"i128": ctx.I128Type,
		"i7":   func() IntType { return ctx.CustomWidthIntType(7) },
	}
	for name, ctor := range ctors {
		a, b := ctor(), ctor()
		if a != b {
			t.Fatalf("%s: repeated requests produced distinct types %#v and %#v", name, a, b)
		}
	}
	if ctx.CustomWidthIntType(32) != ctx.I32Type() {
		t.Fatalf("custom width 32 should be the i32 singleton")
	}
}

func TestIntTypeWidths(t *testing.T) {
	ctx := newTestContext(t)
	cases := []struct {
		typ  IntType
		bits uint32
		name string
	}{
		{ctx.BoolType(), 1, "i1"},
		{ctx.I8Type(), 8, "i8"},
		{ctx.I16Type(), 16, "i16"},
		{ctx.I32Type(), 32, "i32"},
		{ctx.I64Type(), 64, "i64"},
		{ctx.I128Type(), 128, "i128"},
		{ctx.CustomWidthIntType(3), 3, "i3"},
	}
	for _, tc := range cases {
		if got := tc.typ.BitWidth(); got != tc.bits {
			t.Errorf("%s: BitWidth() = %d, want %d", tc.name, got, tc.bits)
		}
		if got := tc.typ.String(); got != tc.name {
			t.Errorf("String() = %q, want %q", got, tc.name)
		}
		if tc.typ.AsType().Kind() != IntegerTypeKind {
			t.Errorf("%s: kind = %v", tc.name, tc.typ.AsType().Kind())
		}
	}
}

func TestPrimitiveTypesAreScopedToTheirContext(t *testing.T) {
	a := newTestContext(t)
	b := newTestContext(t)
	if a.I32Type() == b.I32Type() {
		t.Fatalf("i32 from two contexts must be distinct types")
	}
	if a.I32Type().AsType().Context() != a {
		t.Fatalf("i32 does not report its own context")
	}
}

func TestGlobalContextIntTypes(t *testing.T) {
	if I8Type() != I8Type() {
		t.Fatalf("global i8 must be a singleton")
	}
	if !I64Type().AsType().Context().IsGlobal() {
		t.Fatalf("package-level constructors must use the global context")
	}
	if CustomWidthIntType(24).BitWidth() != 24 {
		t.Fatalf("custom global width lost")
	}
}

func TestFunctionTypeRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	ret := ctx.I8Type().AsType()
	p1 := ctx.I32Type().AsType()
	p2 := ctx.DoubleType().AsType()

	fn := ret.FnType([]Type{p1, p2}, false)

	if got := fn.CountParamTypes(); got != 2 {
		t.Fatalf("CountParamTypes() = %d, want 2", got)
	}
	params := fn.ParamTypes()
	if len(params) != 2 || params[0] != p1 || params[1] != p2 {
		t.Fatalf("ParamTypes() = %v, want [%v %v]", params, p1, p2)
	}
	if fn.IsVarArg() {
		t.Fatalf("IsVarArg() = true for a fixed signature")
	}
	if fn.ReturnType() != ret {
		t.Fatalf("ReturnType() = %v, want %v", fn.ReturnType(), ret)
	}
	if fn.AsType().Kind() != FunctionTypeKind {
		t.Fatalf("kind = %v", fn.AsType().Kind())
	}
	if got := fn.String(); got != "i8 (i32, double)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestFunctionTypeSameParamTwice(t *testing.T) {
	ctx := newTestContext(t)
	i8 := ctx.I8Type().AsType()
	fn := i8.FnType([]Type{ctx.I8Type().AsType(), ctx.I8Type().AsType()}, false)
	params := fn.ParamTypes()
	if len(params) != 2 || params[0] != i8 || params[1] != i8 {
		t.Fatalf("ParamTypes() = %v", params)
	}
}

func TestFunctionTypeVarArg(t *testing.T) {
	ctx := newTestContext(t)
	i32 := ctx.I32Type().AsType()
	ptr := i32.PtrType(0)

	fn := i32.FnType([]Type{ptr}, true)
	if !fn.IsVarArg() {
		t.Fatalf("IsVarArg() = false for a variadic signature")
	}
	if fn == i32.FnType([]Type{ptr}, false) {
		t.Fatalf("variadic and fixed signatures must differ")
	}
	if got := fn.String(); got != "i32 (ptr, ...)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestFunctionTypeIdentity(t *testing.T) {
	ctx := newTestContext(t)
	i32 := ctx.I32Type().AsType()
	a := i32.FnType([]Type{i32}, false)
	b := i32.FnType([]Type{i32}, false)
	if a != b {
		t.Fatalf("identical signatures must be the same type")
	}
}

func TestZeroArityFunctionType(t *testing.T) {
	ctx := newTestContext(t)
	void := ctx.VoidType()
	fn := void.FnType(nil, false)
	if fn.CountParamTypes() != 0 {
		t.Fatalf("CountParamTypes() = %d, want 0", fn.CountParamTypes())
	}
	if params := fn.ParamTypes(); len(params) != 0 {
		t.Fatalf("ParamTypes() = %v, want empty", params)
	}
	if fn != void.FnType([]Type{}, false) {
		t.Fatalf("nil and empty parameter lists must give the same signature")
	}
	if got := fn.String(); got != "void ()" {
		t.Fatalf("String() = %q", got)
	}
}

func TestZeroLengthArrayType(t *testing.T) {
	ctx := newTestContext(t)
	i8 := ctx.I8Type().AsType()
	empty := i8.ArrayType(0)
	if empty == i8.ArrayType(1) {
		t.Fatalf("[0 x i8] and [1 x i8] must differ")
	}
	if empty != i8.ArrayType(0) {
		t.Fatalf("[0 x i8] must be interned")
	}
	if empty.Kind() != ArrayTypeKind {
		t.Fatalf("kind = %v", empty.Kind())
	}
	if !empty.IsSized() {
		t.Fatalf("zero-length array must be sized")
	}
	if empty.ArrayLength() != 0 {
		t.Fatalf("ArrayLength() = %d", empty.ArrayLength())
	}
	if elem, ok := empty.ElementType(); !ok || elem != i8 {
		t.Fatalf("ElementType() = %v, %v", elem, ok)
	}
	if got := empty.String(); got != "[0 x i8]" {
		t.Fatalf("String() = %q", got)
	}
}

func TestTypeAtStructIndexAbsent(t *testing.T) {
	ctx := newTestContext(t)
	i8 := ctx.I8Type().AsType()
	i32 := ctx.I32Type().AsType()
	pair := ctx.StructType([]Type{i8, i32}, false).AsType()

	if got, ok := pair.TypeAtStructIndex(1); !ok || got != i32 {
		t.Fatalf("TypeAtStructIndex(1) = %v, %v", got, ok)
	}
	if _, ok := pair.TypeAtStructIndex(2); ok {
		t.Fatalf("index past the last field must be absent")
	}
	if _, ok := i32.TypeAtStructIndex(0); ok {
		t.Fatalf("non-struct type must have no fields")
	}
	if _, ok := i8.ArrayType(4).TypeAtStructIndex(0); ok {
		t.Fatalf("array type must have no struct fields")
	}
	opaque := ctx.NamedStructType("opaque").AsType()
	if _, ok := opaque.TypeAtStructIndex(0); ok {
		t.Fatalf("opaque struct must have no fields")
	}
}

func TestDerivedTypesReportComponentContext(t *testing.T) {
	ctx := newTestContext(t)
	other := newTestContext(t)
	i16 := ctx.I16Type().AsType()

	derived := map[string]Type{
		"ptr":   i16.PtrType(0),
		"ptr1":  i16.PtrType(1),
		"array": i16.ArrayType(3),
		"fn":    i16.FnType([]Type{i16}, false).AsType(),
		"undef": i16.Undef().Type(),
	}
	for name, d := range derived {
		if d.Context() != ctx {
			t.Errorf("%s: Context() = %v, want %v", name, d.Context(), ctx)
		}
		if d.Context() == other {
			t.Errorf("%s: attributed to an unrelated context", name)
		}
	}
}

func TestPointerTypeAddressSpaces(t *testing.T) {
	ctx := newTestContext(t)
	i8 := ctx.I8Type().AsType()
	p0 := i8.PtrType(0)
	p3 := i8.PtrType(3)
	if p0 == p3 {
		t.Fatalf("address spaces must yield distinct pointer types")
	}
	if p3.PointerAddressSpace() != 3 {
		t.Fatalf("PointerAddressSpace() = %d", p3.PointerAddressSpace())
	}
	if p0.Kind() != PointerTypeKind || !p0.IsSized() {
		t.Fatalf("pointer kind/sizedness wrong: %v %v", p0.Kind(), p0.IsSized())
	}
	if got := p3.String(); got != "ptr addrspace(3)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestIsSized(t *testing.T) {
	ctx := newTestContext(t)
	i32 := ctx.I32Type().AsType()
	cases := []struct {
		name  string
		typ   Type
		sized bool
	}{
		{"i32", i32, true},
		{"double", ctx.DoubleType().AsType(), true},
		{"void", ctx.VoidType(), false},
		{"label", ctx.LabelType(), false},
		{"fn", i32.FnType(nil, false).AsType(), false},
		{"struct", ctx.StructType([]Type{i32}, false).AsType(), true},
		{"opaque", ctx.NamedStructType("o").AsType(), false},
	}
	for _, tc := range cases {
		if got := tc.typ.IsSized(); got != tc.sized {
			t.Errorf("%s: IsSized() = %v, want %v", tc.name, got, tc.sized)
		}
	}
}

func TestViewConversions(t *testing.T) {
	ctx := newTestContext(t)
	i32 := ctx.I32Type().AsType()
	dbl := ctx.DoubleType().AsType()
	fn := i32.FnType(nil, false).AsType()
	st := ctx.StructType(nil, false).AsType()

	if _, ok := i32.AsFunctionType(); ok {
		t.Errorf("i32 viewed as function")
	}
	if f, ok := fn.AsFunctionType(); !ok || f.AsType() != fn {
		t.Errorf("function view lost identity")
	}
	if it, ok := i32.AsIntType(); !ok || it != ctx.I32Type() {
		t.Errorf("int view lost identity")
	}
	if _, ok := dbl.AsIntType(); ok {
		t.Errorf("double viewed as int")
	}
	if ft, ok := dbl.AsFloatType(); !ok || ft.Kind() != DoubleTypeKind {
		t.Errorf("float view wrong")
	}
	if _, ok := st.AsStructType(); !ok {
		t.Errorf("struct view refused")
	}
	if _, ok := fn.AsStructType(); ok {
		t.Errorf("function viewed as struct")
	}
}

func TestFloatTypes(t *testing.T) {
	ctx := newTestContext(t)
	cases := []struct {
		typ  FloatType
		kind TypeKind
		name string
	}{
		{ctx.HalfType(), HalfTypeKind, "half"},
		{ctx.BFloatType(), BFloatTypeKind, "bfloat"},
		{ctx.FloatType(), FloatTypeKind, "float"},
		{ctx.DoubleType(), DoubleTypeKind, "double"},
		{ctx.X86FP80Type(), X86FP80TypeKind, "x86_fp80"},
		{ctx.FP128Type(), FP128TypeKind, "fp128"},
		{ctx.PPCFP128Type(), PPCFP128TypeKind, "ppc_fp128"},
	}
	for _, tc := range cases {
		if tc.typ.Kind() != tc.kind {
			t.Errorf("%s: kind = %v", tc.name, tc.typ.Kind())
		}
		if tc.typ.String() != tc.name {
			t.Errorf("String() = %q, want %q", tc.typ.String(), tc.name)
		}
		if !tc.typ.AsType().IsSized() {
			t.Errorf("%s must be sized", tc.name)
		}
	}
}

func TestNamedStructs(t *testing.T) {
	ctx := newTestContext(t)
	i8 := ctx.I8Type().AsType()
	i32 := ctx.I32Type().AsType()

	node := ctx.NamedStructType("node")
	if !node.IsOpaque() || node.CountFields() != 0 {
		t.Fatalf("new named struct must be opaque")
	}
	if got := node.String(); got != "%node = type opaque" {
		t.Fatalf("String() = %q", got)
	}
	node.SetBody([]Type{i32, node.AsType().PtrType(0)}, false)
	if node.IsOpaque() || node.CountFields() != 2 {
		t.Fatalf("SetBody did not take effect")
	}
	if got := node.String(); got != "%node = type { i32, ptr }" {
		t.Fatalf("String() = %q", got)
	}
	if node.Name() != "node" {
		t.Fatalf("Name() = %q", node.Name())
	}

	second := ctx.NamedStructType("node")
	if second == node {
		t.Fatalf("named structs are nominal")
	}
	if second.Name() == "node" || !strings.HasPrefix(second.Name(), "node.") {
		t.Fatalf("clashing name not renamed: %q", second.Name())
	}

	packed := ctx.StructType([]Type{i8, i32}, true)
	if !packed.IsPacked() || packed.Name() != "" {
		t.Fatalf("literal packed struct misreported")
	}
	if got := packed.String(); got != "<{ i8, i32 }>" {
		t.Fatalf("String() = %q", got)
	}
	if ctx.StructType([]Type{i8, i32}, false) == packed {
		t.Fatalf("packing is part of a literal struct's identity")
	}
	fields := packed.FieldTypes()
	if len(fields) != 2 || fields[0] != i8 || fields[1] != i32 {
		t.Fatalf("FieldTypes() = %v", fields)
	}
}

func TestGoStringShowsAddressAndRendering(t *testing.T) {
	ctx := newTestContext(t)
	i8 := ctx.I8Type().AsType()
	got := i8.GoString()
	if !strings.HasPrefix(got, "Type{address: 0x") || !strings.HasSuffix(got, `llvm_type: "i8"}`) {
		t.Fatalf("GoString() = %q", got)
	}
	fn := i8.FnType(nil, false)
	if !strings.HasPrefix(fn.GoString(), "FunctionType{") {
		t.Fatalf("FunctionType GoString() = %q", fn.GoString())
	}
	if (Type{}).String() != "<nil type>" {
		t.Fatalf("zero Type must render without touching the engine")
	}
}
