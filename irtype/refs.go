package irtype

import (
	"fmt"
	"unsafe"

	"fortio.org/safecast"

	"irbind/internal/ffi"
)

// Type and Value are laid out exactly like their handle. The conversions in
// this file reinterpret slices in place and break if either struct gains a
// field; the array sizes below stop the build if that happens.
var (
	_ [unsafe.Sizeof(Type{}) - unsafe.Sizeof(ffi.TypeRef(0))]struct{}
	_ [unsafe.Sizeof(ffi.TypeRef(0)) - unsafe.Sizeof(Type{})]struct{}
	_ [unsafe.Sizeof(Value{}) - unsafe.Sizeof(ffi.ValueRef(0))]struct{}
	_ [unsafe.Sizeof(ffi.ValueRef(0)) - unsafe.Sizeof(Value{})]struct{}
)

// typeRefs views ts as engine handles without copying. Every element must
// already be a checked, non-null Type.
func typeRefs(op string, ts []Type) []ffi.TypeRef {
	if len(ts) == 0 {
		return nil
	}
	for _, t := range ts {
		t.handle(op)
	}
	return unsafe.Slice((*ffi.TypeRef)(unsafe.Pointer(unsafe.SliceData(ts))), len(ts))
}

func valueRefs(op string, vs []Value) []ffi.ValueRef {
	if len(vs) == 0 {
		return nil
	}
	for _, v := range vs {
		v.handle(op)
	}
	return unsafe.Slice((*ffi.ValueRef)(unsafe.Pointer(unsafe.SliceData(vs))), len(vs))
}

// fillTypes allocates n Types, lets the engine fill them as raw handles, and
// checks the result. Used for the count-then-fill query pairs.
func fillTypes(op string, n uint32, fill func(dst []ffi.TypeRef)) []Type {
	out := make([]Type, n)
	if n == 0 {
		return out
	}
	fill(unsafe.Slice((*ffi.TypeRef)(unsafe.Pointer(unsafe.SliceData(out))), len(out)))
	for _, t := range out {
		if t.ref.IsNull() {
			fatal(op, "type")
		}
	}
	return out
}

func mustCount(op string, n int) uint32 {
	c, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("irtype: %s: length %d overflows uint32: %w", op, n, err))
	}
	return c
}
