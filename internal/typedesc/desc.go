// Package typedesc turns engine types into plain descriptor trees that can
// be printed as a table or serialised with msgpack.
package typedesc

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"irbind/irtype"
)

// Current schema version - increment when Document changes shape.
const SchemaVersion uint16 = 2

// Descriptor is the engine-independent description of one type.
type Descriptor struct {
	Kind      string       `msgpack:"kind"`
	Text      string       `msgpack:"text"`
	Sized     bool         `msgpack:"sized"`
	Size      uint64       `msgpack:"size,omitempty"`
	Overflow  bool         `msgpack:"overflow,omitempty"` // size does not fit in 64 bits
	Align     uint64       `msgpack:"align,omitempty"`
	Width     uint32       `msgpack:"width,omitempty"`     // integers
	Length    uint64       `msgpack:"length,omitempty"`    // arrays
	AddrSpace uint32       `msgpack:"addrspace,omitempty"` // pointers
	Name      string       `msgpack:"name,omitempty"`      // identified structs
	Packed    bool         `msgpack:"packed,omitempty"`    // structs
	Opaque    bool         `msgpack:"opaque,omitempty"`    // structs
	VarArg    bool         `msgpack:"vararg,omitempty"`    // functions
	Ref       bool         `msgpack:"ref,omitempty"`       // repeated identified struct, not expanded
	Elems     []Descriptor `msgpack:"elems,omitempty"`     // element, fields, or return then params
}

// Document is the serialised unit: a descriptor plus where it came from.
type Document struct {
	Schema uint16     `msgpack:"schema"`
	Engine string     `msgpack:"engine"`
	Expr   string     `msgpack:"expr"`
	Root   Descriptor `msgpack:"root"`
}

// Describe builds the descriptor tree of t. Identified structs are expanded
// once; later occurrences are emitted with Ref set.
func Describe(t irtype.Type) Descriptor {
	d := describer{seen: make(map[irtype.Type]struct{})}
	return d.describe(t)
}

type describer struct {
	seen map[irtype.Type]struct{}
}

func (d *describer) describe(t irtype.Type) Descriptor {
	out := Descriptor{
		Kind:  t.Kind().String(),
		Text:  t.String(),
		Sized: t.IsSized(),
	}
	if out.Sized {
		if size, err := t.SizeOfChecked(); err == nil {
			out.Size, _ = size.ZExtValue()
		} else {
			out.Overflow = true
		}
		out.Align, _ = t.Alignment().ZExtValue()
	}

	switch t.Kind() {
	case irtype.IntegerTypeKind:
		it, _ := t.AsIntType()
		out.Width = it.BitWidth()
	case irtype.PointerTypeKind:
		out.AddrSpace = t.PointerAddressSpace()
	case irtype.ArrayTypeKind, irtype.VectorTypeKind:
		out.Length = t.ArrayLength()
		if elem, ok := t.ElementType(); ok {
			out.Elems = []Descriptor{d.describe(elem)}
		}
	case irtype.FunctionTypeKind:
		fn, _ := t.AsFunctionType()
		out.VarArg = fn.IsVarArg()
		out.Elems = append(out.Elems, d.describe(fn.ReturnType()))
		for _, p := range fn.ParamTypes() {
			out.Elems = append(out.Elems, d.describe(p))
		}
	case irtype.StructTypeKind:
		st, _ := t.AsStructType()
		out.Name = st.Name()
		out.Packed = st.IsPacked()
		out.Opaque = st.IsOpaque()
		if out.Name != "" {
			// the top-level rendering of an identified struct includes its body
			out.Text = "%" + out.Name
			if _, dup := d.seen[t]; dup {
				out.Ref = true
				return out
			}
			d.seen[t] = struct{}{}
		}
		for _, f := range st.FieldTypes() {
			out.Elems = append(out.Elems, d.describe(f))
		}
	}
	return out
}

// Marshal encodes doc with msgpack.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode type document: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a Document and rejects other schema versions.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode type document: %w", err)
	}
	if doc.Schema != SchemaVersion {
		return Document{}, fmt.Errorf("type document schema %d, want %d", doc.Schema, SchemaVersion)
	}
	return doc, nil
}
