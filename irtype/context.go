package irtype

import (
	"fmt"

	"irbind/internal/ffi"
)

// Context is the interning domain that owns every type and value minted in
// it. The zero Context is not usable.
type Context struct {
	ref ffi.ContextRef
}

// NewContext creates a fresh context. The caller must Dispose it.
func NewContext() Context {
	return newContext(engine.ContextCreate(), "NewContext")
}

// GlobalContext returns the engine's process-wide context. It is never
// disposed and, like every context, must not be used from two goroutines at
// once.
func GlobalContext() Context {
	return newContext(engine.GetGlobalContext(), "GlobalContext")
}

// WithContext runs fn with a fresh context and disposes it when fn returns.
// Handles obtained inside fn must not be retained after it returns.
func WithContext(fn func(Context) error) error {
	ctx := NewContext()
	defer ctx.Dispose()
	return fn(ctx)
}

func (c Context) handle(op string) ffi.ContextRef {
	if c.ref.IsNull() {
		fatal(op, "context")
	}
	return c.ref
}

// Dispose frees the context and everything interned in it. Disposing the
// global context does nothing.
func (c Context) Dispose() {
	engine.ContextDispose(c.handle("Context.Dispose"))
}

// IsGlobal reports whether c is the engine's global context.
func (c Context) IsGlobal() bool {
	return c.ref == engine.GetGlobalContext()
}

// VoidType returns the void type.
func (c Context) VoidType() Type {
	return newType(engine.VoidTypeInContext(c.handle("VoidType")), "VoidType")
}

// LabelType returns the basic-block label type.
func (c Context) LabelType() Type {
	return newType(engine.LabelTypeInContext(c.handle("LabelType")), "LabelType")
}

// StructType returns the literal struct with the given fields. Literal
// structs are structural: equal field lists yield the same type. Every field
// must belong to c.
func (c Context) StructType(fields []Type, packed bool) StructType {
	mustCount("StructType", len(fields))
	ref := engine.StructTypeInContext(c.handle("StructType"), typeRefs("StructType", fields), packed)
	return StructType{ref: newType(ref, "StructType").ref}
}

// NamedStructType creates an opaque identified struct. Identified structs are
// nominal: each call mints a new type, renamed by the engine if the name is
// taken. Give it fields with SetBody.
func (c Context) NamedStructType(name string) StructType {
	ref := engine.StructCreateNamed(c.handle("NamedStructType"), name)
	return StructType{ref: newType(ref, "NamedStructType").ref}
}

func (c Context) String() string {
	if c.IsGlobal() {
		return fmt.Sprintf("Context{address: %#x, global}", uintptr(c.ref))
	}
	return fmt.Sprintf("Context{address: %#x}", uintptr(c.ref))
}
