package typedesc

import (
	"bytes"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
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

func assertTable(t *testing.T, name string, ty irtype.Type) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, Describe(ty), 0))
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, buf.Bytes())
}

func TestWriteTable_NamedStruct(t *testing.T) {
	ctx := newContext(t)
	i8 := ctx.I8Type().AsType()
	pair := ctx.NamedStructType("pair")
	pair.SetBody([]irtype.Type{i8, i8.PtrType(0), ctx.I16Type().AsType().ArrayType(2)}, false)
	assertTable(t, "named_struct", pair.AsType())
}

func TestWriteTable_VariadicFunction(t *testing.T) {
	ctx := newContext(t)
	i32 := ctx.I32Type().AsType()
	fn := i32.FnType([]irtype.Type{i32.PtrType(0), ctx.DoubleType().AsType()}, true)
	assertTable(t, "variadic_function", fn.AsType())
}

func TestWriteTable_SharedStructIsExpandedOnce(t *testing.T) {
	ctx := newContext(t)
	i32 := ctx.I32Type().AsType()
	pt := ctx.NamedStructType("pt")
	pt.SetBody([]irtype.Type{i32, i32}, false)
	outer := ctx.StructType([]irtype.Type{pt.AsType(), pt.AsType()}, false)
	assertTable(t, "shared_struct", outer.AsType())
}

func TestDescribe_Fields(t *testing.T) {
	ctx := newContext(t)
	i8 := ctx.I8Type().AsType()

	d := Describe(i8.ArrayType(0))
	assert.Equal(t, "array", d.Kind)
	assert.True(t, d.Sized)
	assert.Equal(t, uint64(0), d.Length)
	assert.Equal(t, uint64(0), d.Size)
	require.Len(t, d.Elems, 1)
	assert.Equal(t, uint32(8), d.Elems[0].Width)

	p := Describe(i8.PtrType(5))
	assert.Equal(t, uint32(5), p.AddrSpace)

	opaque := Describe(ctx.NamedStructType("hidden").AsType())
	assert.True(t, opaque.Opaque)
	assert.False(t, opaque.Sized)
	assert.Equal(t, "%hidden", opaque.Text)
	assert.Empty(t, opaque.Elems)

	huge := Describe(ctx.I64Type().AsType().ArrayType(math.MaxUint32).ArrayType(math.MaxUint32))
	assert.True(t, huge.Sized)
	assert.True(t, huge.Overflow)
	assert.Equal(t, uint64(8), huge.Align)
	assert.False(t, huge.Elems[0].Overflow)
	rows := Rows(huge)
	assert.Equal(t, "overflow", rows[0].Size)
	assert.Equal(t, "34359738360", rows[1].Size)

	v := Describe(ctx.VoidType())
	assert.Equal(t, Descriptor{Kind: "void", Text: "void"}, v)
}

func TestWriteTable_TruncatesTypeColumn(t *testing.T) {
	ctx := newContext(t)
	i32 := ctx.I32Type().AsType()
	fn := i32.FnType([]irtype.Type{i32, i32, i32}, false)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, Describe(fn.AsType()), 10))
	lines := bytes.Split(bytes.TrimSuffix(buf.Bytes(), []byte("\n")), []byte("\n"))
	require.Len(t, lines, 5)
	assert.Contains(t, string(lines[1]), "i32 (i3...")
}

func TestMarshal_RoundTrip(t *testing.T) {
	ctx := newContext(t)
	i8 := ctx.I8Type().AsType()
	st := ctx.StructType([]irtype.Type{i8, i8.PtrType(0)}, true)
	doc := Document{Schema: SchemaVersion, Engine: irtype.EngineName(), Expr: "<{ i8, ptr }>", Root: Describe(st.AsType())}

	data, err := Marshal(doc)
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
	assert.True(t, got.Root.Packed)

	doc.Schema = SchemaVersion + 1
	data, err = Marshal(doc)
	require.NoError(t, err)
	_, err = Unmarshal(data)
	assert.ErrorContains(t, err, "schema")

	_, err = Unmarshal([]byte{0xc1})
	assert.Error(t, err)
}

func TestDiskCache_PutGet(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	require.NoError(t, err)

	ctx := newContext(t)
	doc := Document{Schema: SchemaVersion, Engine: "sim", Expr: "i32", Root: Describe(ctx.I32Type().AsType())}

	_, ok, err := cache.Get("sim", "i32")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(doc))
	got, ok, err := cache.Get("sim", "i32")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc, got)

	_, ok, err = cache.Get("llvm", "i32")
	require.NoError(t, err)
	assert.False(t, ok, "entries are per engine")

	var nilCache *DiskCache
	assert.NoError(t, nilCache.Put(doc))
}

func TestKey_IsStable(t *testing.T) {
	assert.Equal(t, Key("sim", "i8"), Key("sim", "i8"))
	assert.NotEqual(t, Key("sim", "i8"), Key("sim", "i16"))
	assert.NotEqual(t, Key("si", "mi8"), Key("sim", "i8"))
	assert.Len(t, Key("sim", "i8"), 64)
}
