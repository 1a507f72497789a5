package irtype

import (
	"fmt"

	"go.uber.org/zap"

	"irbind/internal/ffi"
)

// InvariantError is the panic value raised when a handle that must be
// non-null is null: either the engine answered null to a minting call, or a
// zero-valued wrapper was used.
type InvariantError struct {
	Op     string // operation that produced or consumed the handle
	Handle string // "type", "value" or "context"
}

func (e *InvariantError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("irtype: %s: null %s handle", e.Op, e.Handle)
}

func fatal(op, handle string) {
	err := &InvariantError{Op: op, Handle: handle}
	Logger().Error("null engine handle",
		zap.String("op", op),
		zap.String("handle", handle))
	panic(err)
}

// newType is the only way a Type comes into existence.
func newType(ref ffi.TypeRef, op string) Type {
	if ref.IsNull() {
		fatal(op, "type")
	}
	return Type{ref: ref}
}

func newValue(ref ffi.ValueRef, op string) Value {
	if ref.IsNull() {
		fatal(op, "value")
	}
	return Value{ref: ref}
}

func newContext(ref ffi.ContextRef, op string) Context {
	if ref.IsNull() {
		fatal(op, "context")
	}
	return Context{ref: ref}
}

// optionalType wraps ref when the engine signals absence with null.
func optionalType(ref ffi.TypeRef) (Type, bool) {
	if ref.IsNull() {
		return Type{}, false
	}
	return Type{ref: ref}, true
}
