package typeparse

import "fmt"

// ErrorKind enumerates the ways a type expression can be rejected.
type ErrorKind uint8

const (
	ErrUnexpectedChar ErrorKind = iota + 1
	ErrUnterminated
	ErrUnexpectedToken
	ErrUnknownType
	ErrBadNumber
	// ErrInvalidType: the syntax is fine but the engine cannot build the type,
	// e.g. an array of void.
	ErrInvalidType
	ErrRedefinition
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedChar:
		return "unexpected character"
	case ErrUnterminated:
		return "unterminated token"
	case ErrUnexpectedToken:
		return "unexpected token"
	case ErrUnknownType:
		return "unknown type"
	case ErrBadNumber:
		return "bad number"
	case ErrInvalidType:
		return "invalid type"
	case ErrRedefinition:
		return "redefinition"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is a parse failure at a byte offset of the source.
type Error struct {
	Kind ErrorKind
	Off  uint32
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("typeparse: %s at offset %d: %s", e.Kind, e.Off, e.Msg)
}

// Is matches another *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t.Kind == e.Kind
}

func errorAt(kind ErrorKind, off uint32, msg string) *Error {
	return &Error{Kind: kind, Off: off, Msg: msg}
}
