package typeparse

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// cursor is a byte position in the source.
type cursor struct {
	src   string
	off   uint32
	limit uint32
}

func newCursor(src string) cursor {
	limit, err := safecast.Conv[uint32](len(src))
	if err != nil {
		panic(fmt.Errorf("len type source overflow: %w", err))
	}
	return cursor{src: src, limit: limit}
}

func (c *cursor) eof() bool { return c.off >= c.limit }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.off]
}

func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.src[c.off]
	c.off++
	return b
}

// lexer yields tokens with one token of lookahead.
type lexer struct {
	cur  cursor
	look *Token
}

func newLexer(src string) *lexer {
	return &lexer{cur: newCursor(src)}
}

func (lx *lexer) peek() (Token, error) {
	if lx.look == nil {
		tok, err := lx.scan()
		if err != nil {
			return Token{}, err
		}
		lx.look = &tok
	}
	return *lx.look, nil
}

func (lx *lexer) next() (Token, error) {
	tok, err := lx.peek()
	lx.look = nil
	return tok, err
}

func (lx *lexer) scan() (Token, error) {
	for !lx.cur.eof() && isSpace(lx.cur.peek()) {
		lx.cur.bump()
	}
	start := lx.cur.off
	if lx.cur.eof() {
		return Token{Kind: EOF, Off: start}, nil
	}
	ch := lx.cur.bump()
	punct := func(k Kind) (Token, error) {
		return Token{Kind: k, Off: start, Text: lx.cur.src[start:lx.cur.off]}, nil
	}
	switch {
	case ch == '[':
		return punct(LBracket)
	case ch == ']':
		return punct(RBracket)
	case ch == '{':
		return punct(LBrace)
	case ch == '}':
		return punct(RBrace)
	case ch == '<':
		return punct(LAngle)
	case ch == '>':
		return punct(RAngle)
	case ch == '(':
		return punct(LParen)
	case ch == ')':
		return punct(RParen)
	case ch == ',':
		return punct(Comma)
	case ch == '*':
		return punct(Star)
	case ch == '=':
		return punct(Equal)
	case ch == '.':
		if lx.cur.bump() != '.' || lx.cur.bump() != '.' {
			return Token{}, errorAt(ErrUnexpectedChar, start, "expected '...'")
		}
		return punct(Ellipsis)
	case ch == '%':
		return lx.scanLocal(start)
	case isDec(ch):
		for isDec(lx.cur.peek()) {
			lx.cur.bump()
		}
		return Token{Kind: Number, Off: start, Text: lx.cur.src[start:lx.cur.off]}, nil
	case isIdentStart(ch):
		for isIdentContinue(lx.cur.peek()) {
			lx.cur.bump()
		}
		return Token{Kind: Ident, Off: start, Text: lx.cur.src[start:lx.cur.off]}, nil
	default:
		return Token{}, errorAt(ErrUnexpectedChar, start, fmt.Sprintf("unexpected character %q", ch))
	}
}

// scanLocal reads the name after '%'. Quoted names follow Go escaping.
func (lx *lexer) scanLocal(start uint32) (Token, error) {
	if lx.cur.peek() == '"' {
		lx.cur.bump()
		for {
			if lx.cur.eof() {
				return Token{}, errorAt(ErrUnterminated, start, "unterminated quoted name")
			}
			b := lx.cur.bump()
			if b == '\\' {
				lx.cur.bump()
				continue
			}
			if b == '"' {
				break
			}
		}
		name, err := strconv.Unquote(lx.cur.src[start+1 : lx.cur.off])
		if err != nil {
			return Token{}, errorAt(ErrUnexpectedChar, start, fmt.Sprintf("bad quoted name: %v", err))
		}
		return Token{Kind: LocalIdent, Off: start, Text: name}, nil
	}
	for isIdentContinue(lx.cur.peek()) || lx.cur.peek() == '.' || lx.cur.peek() == '-' || lx.cur.peek() == '$' {
		lx.cur.bump()
	}
	if lx.cur.off == start+1 {
		return Token{}, errorAt(ErrUnexpectedChar, start, "empty name after '%'")
	}
	return Token{Kind: LocalIdent, Off: start, Text: lx.cur.src[start+1 : lx.cur.off]}, nil
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
func isDec(b byte) bool   { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDec(b)
}
