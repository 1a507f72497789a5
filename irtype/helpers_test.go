package irtype

import (
	"errors"
	"testing"

	"irbind/internal/ffi"
	"irbind/internal/ffi/sim"
)

func newTestContext(t *testing.T) Context {
	t.Helper()
	ctx := NewContext()
	t.Cleanup(ctx.Dispose)
	return ctx
}

// useSim installs a fresh simulated engine for the duration of the test.
func useSim(t *testing.T, opts ...sim.Option) *sim.Engine {
	t.Helper()
	e := sim.New(opts...)
	useEngine(t, e)
	return e
}

func useEngine(t *testing.T, abi ffi.ABI) {
	t.Helper()
	prev := engine
	engine = abi
	t.Cleanup(func() { engine = prev })
}

// expectInvariant runs fn and returns the *InvariantError it panicked with.
func expectInvariant(t *testing.T, fn func()) *InvariantError {
	t.Helper()
	var got *InvariantError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok || !errors.As(err, &got) {
				t.Fatalf("expected *InvariantError panic, got %v", r)
			}
		}()
		fn()
	}()
	if got == nil {
		t.Fatalf("expected panic with *InvariantError, got none")
	}
	return got
}

// nullingEngine answers null from the operations whose flag is set and
// forwards everything else.
type nullingEngine struct {
	ffi.ABI
	nullPointer bool
	nullConst   bool
	nullParams  bool
}

func (n nullingEngine) PointerType(elem ffi.TypeRef, as uint32) ffi.TypeRef {
	if n.nullPointer {
		return 0
	}
	return n.ABI.PointerType(elem, as)
}

func (n nullingEngine) ConstInt(t ffi.TypeRef, v uint64, signExtend bool) ffi.ValueRef {
	if n.nullConst {
		return 0
	}
	return n.ABI.ConstInt(t, v, signExtend)
}

func (n nullingEngine) GetParamTypes(fn ffi.TypeRef, dst []ffi.TypeRef) {
	if n.nullParams {
		return
	}
	n.ABI.GetParamTypes(fn, dst)
}
