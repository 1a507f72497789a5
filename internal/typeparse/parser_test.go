package typeparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irbind/irtype"
)

func newContext(t *testing.T) irtype.Context {
	t.Helper()
	ctx := irtype.NewContext()
	t.Cleanup(ctx.Dispose)
	return ctx
}

func TestParse_RoundTripsRendering(t *testing.T) {
	ctx := newContext(t)
	inputs := []string{
		"i1",
		"i32",
		"i7",
		"void",
		"label",
		"half",
		"bfloat",
		"float",
		"double",
		"x86_fp80",
		"fp128",
		"ppc_fp128",
		"ptr",
		"ptr addrspace(3)",
		"ptr addrspace(16777215)",
		"[0 x i8]",
		"[4 x [2 x double]]",
		"{}",
		"{ i8, ptr }",
		"<{ i8, i32 }>",
		"i8 (i32, double)",
		"void ()",
		"i32 (ptr, ...)",
		"void (...)",
		"{ i32 (i8)*, [2 x i16] }",
	}
	want := map[string]string{
		"{ i32 (i8)*, [2 x i16] }": "{ ptr, [2 x i16] }",
	}
	for _, in := range inputs {
		got, err := Parse(ctx, in)
		require.NoError(t, err, in)
		expected := in
		if w, ok := want[in]; ok {
			expected = w
		}
		assert.Equal(t, expected, got.String(), "rendering of %q", in)
	}
}

func TestParse_ResultsAreInterned(t *testing.T) {
	ctx := newContext(t)
	a, err := Parse(ctx, "{ i8, [3 x i32] }")
	require.NoError(t, err)
	b, err := Parse(ctx, "{i8,[3x i32]}")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	i32 := ctx.I32Type().AsType()
	fn, err := Parse(ctx, "i32 (i32)")
	require.NoError(t, err)
	assert.Equal(t, i32.FnType([]irtype.Type{i32}, false).AsType(), fn)
}

func TestParse_FunctionShape(t *testing.T) {
	ctx := newContext(t)
	got, err := Parse(ctx, "i8 (i32, double, ...)")
	require.NoError(t, err)

	fn, ok := got.AsFunctionType()
	require.True(t, ok)
	assert.True(t, fn.IsVarArg())
	assert.Equal(t, uint32(2), fn.CountParamTypes())
	assert.Equal(t, ctx.I8Type().AsType(), fn.ReturnType())
	assert.Equal(t, []irtype.Type{ctx.I32Type().AsType(), ctx.DoubleType().AsType()}, fn.ParamTypes())
}

func TestParser_NamedStructs(t *testing.T) {
	ctx := newContext(t)
	p := New(ctx)

	node, err := p.Parse("%node = type { i32, %node* }")
	require.NoError(t, err)
	assert.Equal(t, "%node = type { i32, ptr }", node.String())

	ref, err := p.Parse("%node")
	require.NoError(t, err)
	assert.Equal(t, node, ref)

	st, ok := p.Named("node")
	require.True(t, ok)
	assert.Equal(t, uint32(2), st.CountFields())

	_, err = p.Parse("%node = type { i8 }")
	assert.ErrorIs(t, err, &Error{Kind: ErrRedefinition})

	fwd, err := p.Parse("{ %later }")
	require.NoError(t, err)
	assert.False(t, fwd.IsSized(), "forward reference stays opaque until defined")

	later, err := p.Parse("%later = type <{ i8, i16 }>")
	require.NoError(t, err)
	assert.Equal(t, "%later = type <{ i8, i16 }>", later.String())
	assert.True(t, fwd.IsSized())

	opaque, err := p.Parse(`%"has space" = type opaque`)
	require.NoError(t, err)
	ost, _ := opaque.AsStructType()
	assert.True(t, ost.IsOpaque())
	assert.Equal(t, "has space", ost.Name())
}

func TestParse_Errors(t *testing.T) {
	ctx := newContext(t)
	cases := []struct {
		src  string
		kind ErrorKind
		off  uint32
	}{
		{"", ErrUnexpectedToken, 0},
		{"i32 i32", ErrUnexpectedToken, 4},
		{"quux", ErrUnknownType, 0},
		{"i0", ErrInvalidType, 0},
		{"i99999999", ErrInvalidType, 0},
		{"[4 x void]", ErrInvalidType, 0},
		{"[4 i8]", ErrUnexpectedToken, 3},
		{"[99999999999 x i8]", ErrBadNumber, 1},
		{"{ i8, label }", ErrInvalidType, 6},
		{"{ i8 i8 }", ErrUnexpectedToken, 5},
		{"label ()", ErrInvalidType, 6},
		{"i8 (void)", ErrInvalidType, 4},
		{"i8 (i8, ...", ErrUnexpectedToken, 11},
		{"void*", ErrInvalidType, 4},
		{"i8 $", ErrUnexpectedChar, 3},
		{"i8 ..", ErrUnexpectedChar, 3},
		{`%"open`, ErrUnterminated, 0},
		{"%", ErrUnexpectedChar, 0},
		{"ptr addrspace(x)", ErrUnexpectedToken, 14},
		{"ptr addrspace(16777216)", ErrBadNumber, 14},
		{"ptr addrspace(4294967295)", ErrBadNumber, 14},
		{"ptr addrspace(99999999999)", ErrBadNumber, 14},
	}
	for _, tc := range cases {
		_, err := Parse(ctx, tc.src)
		var perr *Error
		if !assert.ErrorAs(t, err, &perr, "source %q", tc.src) {
			continue
		}
		assert.Equal(t, tc.kind, perr.Kind, "kind for %q: %v", tc.src, perr)
		assert.Equal(t, tc.off, perr.Off, "offset for %q: %v", tc.src, perr)
	}
}

func TestError_Message(t *testing.T) {
	err := errorAt(ErrUnknownType, 7, `unknown type "quux"`)
	assert.Equal(t, `typeparse: unknown type at offset 7: unknown type "quux"`, err.Error())
	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
}
