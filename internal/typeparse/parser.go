// Package typeparse reads LLVM textual type syntax into irtype values.
//
// Accepted forms: iN, void, label, the floating formats, ptr, ptr
// addrspace(N), [N x T], { T, ... }, <{ T, ... }>, R (P, ...), the legacy
// T* spelling of a pointer, references to identified structs (%name), and
// definitions of the form %name = type { ... } or %name = type opaque.
package typeparse

import (
	"fmt"
	"strconv"

	"irbind/irtype"
)

const (
	maxIntBits   = 1 << 23
	maxAddrSpace = 1<<24 - 1
)

// Parser builds types in one context. Identified structs are remembered
// across calls, so a definition can refer to a struct declared earlier or
// to itself.
type Parser struct {
	ctx   irtype.Context
	named map[string]irtype.StructType
	lx    *lexer
}

// New returns a parser that mints into ctx.
func New(ctx irtype.Context) *Parser {
	return &Parser{ctx: ctx, named: make(map[string]irtype.StructType)}
}

// Parse reads one type expression or struct definition from src.
func Parse(ctx irtype.Context, src string) (irtype.Type, error) {
	return New(ctx).Parse(src)
}

// Named returns the identified struct registered under name.
func (p *Parser) Named(name string) (irtype.StructType, bool) {
	st, ok := p.named[name]
	return st, ok
}

// Parse reads one type expression or struct definition.
func (p *Parser) Parse(src string) (irtype.Type, error) {
	p.lx = newLexer(src)
	defer func() { p.lx = nil }()

	first, err := p.lx.peek()
	if err != nil {
		return irtype.Type{}, err
	}
	var t irtype.Type
	if first.Kind == LocalIdent {
		t, err = p.parseDefinitionOrType()
	} else {
		t, err = p.parseType()
	}
	if err != nil {
		return irtype.Type{}, err
	}
	if _, err := p.expect(EOF); err != nil {
		return irtype.Type{}, err
	}
	return t, nil
}

func (p *Parser) parseDefinitionOrType() (irtype.Type, error) {
	name, err := p.lx.next()
	if err != nil {
		return irtype.Type{}, err
	}
	eq, err := p.lx.peek()
	if err != nil {
		return irtype.Type{}, err
	}
	if eq.Kind != Equal {
		return p.parseSuffixes(p.reference(name.Text).AsType())
	}
	p.lx.next() //nolint:errcheck // peeked above
	if _, err := p.expectIdent("type"); err != nil {
		return irtype.Type{}, err
	}

	st := p.reference(name.Text)
	if !st.IsOpaque() {
		return irtype.Type{}, errorAt(ErrRedefinition, name.Off, fmt.Sprintf("%%%s already has a body", name.Text))
	}
	tok, err := p.lx.peek()
	if err != nil {
		return irtype.Type{}, err
	}
	if tok.Kind == Ident && tok.Text == "opaque" {
		p.lx.next() //nolint:errcheck // peeked above
		return st.AsType(), nil
	}
	packed := false
	if tok.Kind == LAngle {
		p.lx.next() //nolint:errcheck // peeked above
		packed = true
	}
	fields, err := p.parseFields()
	if err != nil {
		return irtype.Type{}, err
	}
	if packed {
		if _, err := p.expect(RAngle); err != nil {
			return irtype.Type{}, err
		}
	}
	st.SetBody(fields, packed)
	return st.AsType(), nil
}

// reference returns the identified struct called name, declaring it opaque
// on first use.
func (p *Parser) reference(name string) irtype.StructType {
	if st, ok := p.named[name]; ok {
		return st
	}
	st := p.ctx.NamedStructType(name)
	p.named[name] = st
	return st
}

func (p *Parser) parseType() (irtype.Type, error) {
	base, err := p.parseBase()
	if err != nil {
		return irtype.Type{}, err
	}
	return p.parseSuffixes(base)
}

// parseSuffixes applies the postfix forms: a parameter list turns t into
// a return type, '*' takes a pointer to it.
func (p *Parser) parseSuffixes(t irtype.Type) (irtype.Type, error) {
	for {
		tok, err := p.lx.peek()
		if err != nil {
			return irtype.Type{}, err
		}
		switch tok.Kind {
		case LParen:
			fn, err := p.parseSignature(t, tok.Off)
			if err != nil {
				return irtype.Type{}, err
			}
			t = fn
		case Star:
			p.lx.next() //nolint:errcheck // peeked above
			if !pointee(t.Kind()) {
				return irtype.Type{}, errorAt(ErrInvalidType, tok.Off, fmt.Sprintf("pointer to %s", t))
			}
			t = t.PtrType(0)
		default:
			return t, nil
		}
	}
}

func (p *Parser) parseBase() (irtype.Type, error) {
	tok, err := p.lx.next()
	if err != nil {
		return irtype.Type{}, err
	}
	switch tok.Kind {
	case Ident:
		return p.parseKeyword(tok)
	case LocalIdent:
		return p.reference(tok.Text).AsType(), nil
	case LBracket:
		return p.parseArray(tok)
	case LBrace:
		p.unread(tok)
		return p.parseStruct(false)
	case LAngle:
		st, err := p.parseStruct(true)
		if err != nil {
			return irtype.Type{}, err
		}
		if _, err := p.expect(RAngle); err != nil {
			return irtype.Type{}, err
		}
		return st, nil
	default:
		return irtype.Type{}, unexpected(tok, "a type")
	}
}

func (p *Parser) parseKeyword(tok Token) (irtype.Type, error) {
	switch tok.Text {
	case "void":
		return p.ctx.VoidType(), nil
	case "label":
		return p.ctx.LabelType(), nil
	case "half":
		return p.ctx.HalfType().AsType(), nil
	case "bfloat":
		return p.ctx.BFloatType().AsType(), nil
	case "float":
		return p.ctx.FloatType().AsType(), nil
	case "double":
		return p.ctx.DoubleType().AsType(), nil
	case "x86_fp80":
		return p.ctx.X86FP80Type().AsType(), nil
	case "fp128":
		return p.ctx.FP128Type().AsType(), nil
	case "ppc_fp128":
		return p.ctx.PPCFP128Type().AsType(), nil
	case "ptr":
		return p.parsePointer()
	}
	if len(tok.Text) > 1 && tok.Text[0] == 'i' {
		bits, err := strconv.ParseUint(tok.Text[1:], 10, 32)
		if err == nil {
			if bits == 0 || bits > maxIntBits {
				return irtype.Type{}, errorAt(ErrInvalidType, tok.Off, fmt.Sprintf("integer width %d out of range", bits))
			}
			return p.ctx.CustomWidthIntType(uint32(bits)).AsType(), nil
		}
	}
	return irtype.Type{}, errorAt(ErrUnknownType, tok.Off, fmt.Sprintf("unknown type %q", tok.Text))
}

func (p *Parser) parsePointer() (irtype.Type, error) {
	var as uint32
	tok, err := p.lx.peek()
	if err != nil {
		return irtype.Type{}, err
	}
	if tok.Kind == Ident && tok.Text == "addrspace" {
		p.lx.next() //nolint:errcheck // peeked above
		if _, err := p.expect(LParen); err != nil {
			return irtype.Type{}, err
		}
		num, err := p.lx.peek()
		if err != nil {
			return irtype.Type{}, err
		}
		if as, err = p.number(); err != nil {
			return irtype.Type{}, err
		}
		if as > maxAddrSpace {
			return irtype.Type{}, errorAt(ErrBadNumber, num.Off, fmt.Sprintf("address space %d out of range", as))
		}
		if _, err := p.expect(RParen); err != nil {
			return irtype.Type{}, err
		}
	}
	// pointers are opaque; any type of the context selects it
	return p.ctx.I8Type().AsType().PtrType(as), nil
}

func (p *Parser) parseArray(open Token) (irtype.Type, error) {
	n, err := p.number()
	if err != nil {
		return irtype.Type{}, err
	}
	if _, err := p.expectIdent("x"); err != nil {
		return irtype.Type{}, err
	}
	elem, err := p.parseType()
	if err != nil {
		return irtype.Type{}, err
	}
	if _, err := p.expect(RBracket); err != nil {
		return irtype.Type{}, err
	}
	if !element(elem.Kind()) {
		return irtype.Type{}, errorAt(ErrInvalidType, open.Off, fmt.Sprintf("array of %s", elem))
	}
	return elem.ArrayType(n), nil
}

func (p *Parser) parseStruct(packed bool) (irtype.Type, error) {
	fields, err := p.parseFields()
	if err != nil {
		return irtype.Type{}, err
	}
	return p.ctx.StructType(fields, packed).AsType(), nil
}

// parseFields reads "{ T, ... }" including the braces.
func (p *Parser) parseFields() ([]irtype.Type, error) {
	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}
	var fields []irtype.Type
	tok, err := p.lx.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == RBrace {
		p.lx.next() //nolint:errcheck // peeked above
		return fields, nil
	}
	for {
		start, err := p.lx.peek()
		if err != nil {
			return nil, err
		}
		f, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if !element(f.Kind()) {
			return nil, errorAt(ErrInvalidType, start.Off, fmt.Sprintf("struct field of type %s", f))
		}
		fields = append(fields, f)
		sep, err := p.lx.next()
		if err != nil {
			return nil, err
		}
		if sep.Kind == RBrace {
			return fields, nil
		}
		if sep.Kind != Comma {
			return nil, unexpected(sep, "',' or '}'")
		}
	}
}

func (p *Parser) parseSignature(ret irtype.Type, off uint32) (irtype.Type, error) {
	if !returnable(ret.Kind()) {
		return irtype.Type{}, errorAt(ErrInvalidType, off, fmt.Sprintf("function returning %s", ret))
	}
	p.lx.next() //nolint:errcheck // caller peeked '('
	var params []irtype.Type
	varArg := false
	for {
		tok, err := p.lx.peek()
		if err != nil {
			return irtype.Type{}, err
		}
		if tok.Kind == RParen && len(params) == 0 && !varArg {
			p.lx.next() //nolint:errcheck // peeked above
			break
		}
		if tok.Kind == Ellipsis {
			p.lx.next() //nolint:errcheck // peeked above
			varArg = true
			if _, err := p.expect(RParen); err != nil {
				return irtype.Type{}, err
			}
			break
		}
		param, err := p.parseType()
		if err != nil {
			return irtype.Type{}, err
		}
		if !parameter(param.Kind()) {
			return irtype.Type{}, errorAt(ErrInvalidType, tok.Off, fmt.Sprintf("parameter of type %s", param))
		}
		params = append(params, param)
		sep, err := p.lx.next()
		if err != nil {
			return irtype.Type{}, err
		}
		if sep.Kind == RParen {
			break
		}
		if sep.Kind != Comma {
			return irtype.Type{}, unexpected(sep, "',' or ')'")
		}
	}
	return ret.FnType(params, varArg).AsType(), nil
}

func (p *Parser) number() (uint32, error) {
	tok, err := p.expect(Number)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(tok.Text, 10, 32)
	if err != nil {
		return 0, errorAt(ErrBadNumber, tok.Off, err.Error())
	}
	return uint32(n), nil
}

func (p *Parser) expect(kind Kind) (Token, error) {
	tok, err := p.lx.next()
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != kind {
		return Token{}, unexpected(tok, kind.String())
	}
	return tok, nil
}

func (p *Parser) expectIdent(text string) (Token, error) {
	tok, err := p.lx.next()
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != Ident || tok.Text != text {
		return Token{}, unexpected(tok, strconv.Quote(text))
	}
	return tok, nil
}

func (p *Parser) unread(tok Token) {
	p.lx.look = &tok
}

func unexpected(tok Token, want string) *Error {
	got := tok.Kind.String()
	if tok.Text != "" && tok.Kind != EOF {
		got = strconv.Quote(tok.Text)
	}
	return errorAt(ErrUnexpectedToken, tok.Off, fmt.Sprintf("expected %s, found %s", want, got))
}

func element(k irtype.TypeKind) bool {
	switch k {
	case irtype.VoidTypeKind, irtype.LabelTypeKind, irtype.FunctionTypeKind, irtype.MetadataTypeKind, irtype.TokenTypeKind:
		return false
	}
	return true
}

func pointee(k irtype.TypeKind) bool {
	switch k {
	case irtype.VoidTypeKind, irtype.LabelTypeKind, irtype.MetadataTypeKind, irtype.TokenTypeKind:
		return false
	}
	return true
}

func returnable(k irtype.TypeKind) bool {
	return k != irtype.LabelTypeKind && k != irtype.FunctionTypeKind && k != irtype.MetadataTypeKind
}

func parameter(k irtype.TypeKind) bool {
	return k != irtype.VoidTypeKind && k != irtype.LabelTypeKind && k != irtype.FunctionTypeKind
}
