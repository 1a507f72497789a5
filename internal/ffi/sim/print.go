package sim

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"irbind/internal/ffi"
)

// PrintTypeToString implements ffi.ABI. Identified structs print their body
// after the name, as LLVM's Type::print does.
func (e *Engine) PrintTypeToString(t ffi.TypeRef) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var sb strings.Builder
	e.writeType(&sb, t)
	if info, ok := e.structInfo(t); ok && info.named {
		sb.WriteString(" = type ")
		if !info.hasBody {
			sb.WriteString("opaque")
		} else {
			e.writeStructBody(&sb, info)
		}
	}
	return sb.String()
}

// PrintValueToString implements ffi.ABI.
func (e *Engine) PrintValueToString(v ffi.ValueRef) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var sb strings.Builder
	e.writeValue(&sb, v)
	return sb.String()
}

// DumpType implements ffi.ABI.
func (e *Engine) DumpType(t ffi.TypeRef) {
	s := e.PrintTypeToString(t)
	// Diagnostics are best-effort.
	_, _ = fmt.Fprintln(e.diag, s) //nolint:errcheck
}

// DumpValue implements ffi.ABI.
func (e *Engine) DumpValue(v ffi.ValueRef) {
	s := e.PrintValueToString(v)
	_, _ = fmt.Fprintln(e.diag, s) //nolint:errcheck
}

func (e *Engine) writeType(sb *strings.Builder, t ffi.TypeRef) {
	obj := e.typ(t)
	switch obj.kind {
	case ffi.IntegerTypeKind:
		sb.WriteByte('i')
		sb.WriteString(strconv.FormatUint(uint64(obj.width), 10))
	case ffi.PointerTypeKind:
		sb.WriteString("ptr")
		if obj.addrSpace != 0 {
			fmt.Fprintf(sb, " addrspace(%d)", obj.addrSpace)
		}
	case ffi.ArrayTypeKind:
		fmt.Fprintf(sb, "[%d x ", obj.count)
		e.writeType(sb, obj.elem)
		sb.WriteByte(']')
	case ffi.FunctionTypeKind:
		info, _ := e.fnInfo(t)
		e.writeType(sb, info.ret)
		sb.WriteString(" (")
		for i, p := range info.params {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.writeType(sb, p)
		}
		if info.isVarArg {
			if len(info.params) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("...")
		}
		sb.WriteByte(')')
	case ffi.StructTypeKind:
		info, _ := e.structInfo(t)
		if !info.named {
			e.writeStructBody(sb, info)
			return
		}
		if info.name == "" {
			fmt.Fprintf(sb, "%%\"type %#x\"", uintptr(t))
			return
		}
		sb.WriteByte('%')
		sb.WriteString(quoteIdent(info.name))
	default:
		sb.WriteString(obj.kind.String())
	}
}

func (e *Engine) writeStructBody(sb *strings.Builder, info structInfo) {
	if info.packed {
		sb.WriteByte('<')
	}
	if len(info.fields) == 0 {
		sb.WriteString("{}")
	} else {
		sb.WriteString("{ ")
		for i, f := range info.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.writeType(sb, f)
		}
		sb.WriteString(" }")
	}
	if info.packed {
		sb.WriteByte('>')
	}
}

func (e *Engine) writeValue(sb *strings.Builder, v ffi.ValueRef) {
	obj := e.val(v)
	e.writeType(sb, obj.typ)
	sb.WriteByte(' ')
	e.writeOperand(sb, obj)
}

func (e *Engine) writeOperand(sb *strings.Builder, obj valueObj) {
	t := e.typ(obj.typ)
	switch obj.kind {
	case valueUndef:
		sb.WriteString("undef")
	case valueZero:
		if t.kind == ffi.PointerTypeKind {
			sb.WriteString("null")
			return
		}
		sb.WriteString("zeroinitializer")
	case valueConstInt:
		if t.width == 1 {
			if obj.lo != 0 {
				sb.WriteString("true")
			} else {
				sb.WriteString("false")
			}
			return
		}
		if t.width > 64 {
			if obj.hi != 0 {
				sb.WriteString(strconv.FormatInt(int64(obj.lo), 10))
			} else {
				sb.WriteString(strconv.FormatUint(obj.lo, 10))
			}
			return
		}
		sb.WriteString(strconv.FormatInt(signExtend(obj.lo, t.width), 10))
	case valueConstFP:
		sb.WriteString(formatFloat(math.Float64frombits(obj.lo)))
	case valueAggregate:
		if t.kind == ffi.ArrayTypeKind && e.typ(t.elem).width == 8 {
			e.writeCString(sb, obj.elems)
			return
		}
		open, closing := "[", "]"
		if t.kind == ffi.StructTypeKind {
			info, _ := e.structInfo(obj.typ)
			open, closing = "{ ", " }"
			if info.packed {
				open, closing = "<{ ", " }>"
			}
		}
		sb.WriteString(open)
		for i, el := range obj.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.writeValue(sb, el)
		}
		sb.WriteString(closing)
	}
}

// writeCString renders an i8 array the way LLVM prints ConstantDataArray.
// Undef elements make LLVM fall back to the element list form.
func (e *Engine) writeCString(sb *strings.Builder, elems []ffi.ValueRef) {
	buf := make([]byte, 0, len(elems))
	for _, el := range elems {
		obj := e.val(el)
		if obj.kind == valueUndef {
			sb.WriteByte('[')
			for i, el := range elems {
				if i > 0 {
					sb.WriteString(", ")
				}
				e.writeValue(sb, el)
			}
			sb.WriteByte(']')
			return
		}
		buf = append(buf, byte(obj.lo))
	}
	sb.WriteString("c\"")
	for _, c := range buf {
		if c >= 0x20 && c < 0x7F && c != '"' && c != '\\' {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(sb, "\\%02X", c)
	}
	sb.WriteByte('"')
}

// formatFloat prints in LLVM's exponent form when it round-trips and falls
// back to the hexadecimal bit pattern otherwise.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'e', 6, 64)
	if parsed, err := strconv.ParseFloat(s, 64); err == nil && parsed == f && !math.IsInf(f, 0) {
		return s
	}
	return fmt.Sprintf("0x%016X", math.Float64bits(f))
}

func quoteIdent(name string) string {
	for i := 0; i < len(name); i++ {
		c := name[i]
		isIdent := c == '.' || c == '_' || c == '$' || c == '-' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9' && i > 0)
		if !isIdent {
			return strconv.Quote(name)
		}
	}
	return name
}
