package typeparse

import "fmt"

// Kind is the lexical class of a token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF
	Ident      // i32, ptr, void, x, addrspace, type, opaque ...
	Number     // decimal literal
	LocalIdent // %name or %"quoted name"
	LBracket
	RBracket
	LBrace
	RBrace
	LAngle
	RAngle
	LParen
	RParen
	Comma
	Star
	Equal
	Ellipsis
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case LocalIdent:
		return "%name"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LAngle:
		return "'<'"
	case RAngle:
		return "'>'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Comma:
		return "','"
	case Star:
		return "'*'"
	case Equal:
		return "'='"
	case Ellipsis:
		return "'...'"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Token is one lexeme with its byte offset in the source.
type Token struct {
	Kind Kind
	Off  uint32
	Text string
}
