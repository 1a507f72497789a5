// Package sim is an in-process engine implementing ffi.ABI.
//
// It reproduces the behaviour of LLVM that the type layer can observe:
// primitive and structural types are interned per context, constants are
// uniqued, integer constants are truncated to their width, pointers are
// opaque, struct field lookups answer null when out of range, and the
// textual rendering follows LLVM assembly syntax. Calls the real engine would
// reject with an assertion answer a null handle instead.
//
// An Engine serialises its own bookkeeping with a mutex so that independent
// contexts can be driven from independent goroutines. That lock is an
// implementation detail: callers must still confine each context to one
// logical owner, exactly as with LLVM.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"

	"fortio.org/safecast"

	"irbind/internal/ffi"
)

// Engine is a simulated foreign engine. The zero value is not usable; call New.
//
// Handles index engine-wide tables that only grow. Disposing a context drops
// its interning maps and struct bodies, but its type and value slots stay
// allocated so that stale handles keep reporting use after dispose instead of
// aliasing a newer object. A process that creates contexts in a loop should
// reuse one Engine per bounded batch of work.
type Engine struct {
	mu       sync.Mutex
	contexts []*simContext
	types    []typeObj
	values   []valueObj
	global   ffi.ContextRef
	target   Target
	diag     io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithDiagnostics redirects DumpType/DumpValue output. Defaults to os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.diag = w
		}
	}
}

// WithTarget selects the data layout used by AlignOf and SizeOf.
func WithTarget(t Target) Option {
	return func(e *Engine) { e.target = t }
}

// New creates an engine with its global context already live.
func New(opts ...Option) *Engine {
	e := &Engine{
		contexts: make([]*simContext, 0, 4),
		types:    make([]typeObj, 0, 256),
		values:   make([]valueObj, 0, 256),
		target:   X86_64LinuxGNU(),
		diag:     os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.global = e.newContext()
	return e
}

var _ ffi.ABI = (*Engine)(nil)

type simContext struct {
	disposed bool
	index    map[typeKey]ffi.TypeRef
	consts   map[constKey]ffi.ValueRef
	fns      []fnInfo
	structs  []structInfo
	nameSeq  uint32
	names    map[string]struct{}
}

// ContextCreate implements ffi.ABI.
func (e *Engine) ContextCreate() ffi.ContextRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.newContext()
}

func (e *Engine) newContext() ffi.ContextRef {
	e.contexts = append(e.contexts, &simContext{
		index:   make(map[typeKey]ffi.TypeRef, 64),
		consts:  make(map[constKey]ffi.ValueRef, 64),
		fns:     []fnInfo{{}},     // reserve 0 as invalid sentinel
		structs: []structInfo{{}}, // reserve 0 as invalid sentinel
		names:   make(map[string]struct{}),
	})
	return ffi.ContextRef(len(e.contexts))
}

// ContextDispose implements ffi.ABI. Disposing the global context is ignored.
func (e *Engine) ContextDispose(c ffi.ContextRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c == e.global {
		return
	}
	ctx := e.ctx(c)
	ctx.disposed = true
	ctx.index = nil
	ctx.consts = nil
	ctx.fns = nil
	ctx.structs = nil
	ctx.names = nil
}

// GetGlobalContext implements ffi.ABI.
func (e *Engine) GetGlobalContext() ffi.ContextRef {
	return e.global
}

// LiveContexts reports how many non-global contexts are not yet disposed.
func (e *Engine) LiveContexts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for i, c := range e.contexts {
		if ffi.ContextRef(i+1) == e.global {
			continue
		}
		if !c.disposed {
			n++
		}
	}
	return n
}

// ctx resolves a context handle. Unknown or disposed handles are fatal: the
// real engine would read freed memory here.
func (e *Engine) ctx(c ffi.ContextRef) *simContext {
	if c == 0 || int(c) > len(e.contexts) {
		panic(fmt.Sprintf("sim: invalid context handle %#x", uintptr(c)))
	}
	ctx := e.contexts[c-1]
	if ctx.disposed {
		panic(fmt.Sprintf("sim: use of disposed context %#x", uintptr(c)))
	}
	return ctx
}

// typ returns a copy of the descriptor; the backing table may grow while the
// caller still holds it.
func (e *Engine) typ(t ffi.TypeRef) typeObj {
	if t == 0 || int(t) > len(e.types) {
		panic(fmt.Sprintf("sim: invalid type handle %#x", uintptr(t)))
	}
	obj := e.types[t-1]
	e.ctx(obj.ctx)
	return obj
}

func (e *Engine) val(v ffi.ValueRef) valueObj {
	if v == 0 || int(v) > len(e.values) {
		panic(fmt.Sprintf("sim: invalid value handle %#x", uintptr(v)))
	}
	obj := e.values[v-1]
	e.ctx(obj.ctx)
	return obj
}

// intern returns the existing handle for an identical descriptor or mints one.
func (e *Engine) intern(c ffi.ContextRef, t typeObj) ffi.TypeRef {
	ctx := e.ctx(c)
	t.ctx = c
	key := t.key()
	if id, ok := ctx.index[key]; ok {
		return id
	}
	id := e.internRaw(t)
	ctx.index[key] = id
	return id
}

// internRaw appends the descriptor without consulting the index.
func (e *Engine) internRaw(t typeObj) ffi.TypeRef {
	n, err := safecast.Conv[uint32](len(e.types) + 1)
	if err != nil {
		panic(fmt.Errorf("sim: type table overflow: %w", err))
	}
	e.types = append(e.types, t)
	return ffi.TypeRef(n)
}

func (e *Engine) mintValue(v valueObj) ffi.ValueRef {
	ctx := e.ctx(v.ctx)
	key := v.key()
	if id, ok := ctx.consts[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(e.values) + 1)
	if err != nil {
		panic(fmt.Errorf("sim: value table overflow: %w", err))
	}
	e.values = append(e.values, v)
	id := ffi.ValueRef(n)
	ctx.consts[key] = id
	return id
}

// sameContext reports whether every handle in refs lives in c.
func (e *Engine) sameContext(c ffi.ContextRef, refs []ffi.TypeRef) bool {
	for _, r := range refs {
		if r == 0 || int(r) > len(e.types) {
			return false
		}
		if e.typ(r).ctx != c {
			return false
		}
	}
	return true
}
