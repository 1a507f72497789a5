package sim

import (
	"math"
	"strconv"
	"strings"

	"irbind/internal/ffi"
)

type valueKind uint8

const (
	valueConstInt valueKind = iota + 1
	valueConstFP
	valueAggregate
	valueZero
	valueUndef
)

// valueObj is the descriptor of a simulated constant.
type valueObj struct {
	ctx   ffi.ContextRef
	typ   ffi.TypeRef
	kind  valueKind
	lo    uint64 // integer low word, or float64 bits
	hi    uint64 // integer bits above 64, all ones or zero
	elems []ffi.ValueRef
}

type constKey struct {
	typ   ffi.TypeRef
	kind  valueKind
	lo    uint64
	hi    uint64
	elems string
}

func (v valueObj) key() constKey {
	k := constKey{typ: v.typ, kind: v.kind, lo: v.lo, hi: v.hi}
	if len(v.elems) > 0 {
		var sb strings.Builder
		for i, el := range v.elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatUint(uint64(el), 16))
		}
		k.elems = sb.String()
	}
	return k
}

// ConstInt implements ffi.ABI. The value is truncated to the type's width;
// signExtend only decides what fills the bits above 64 for wide integers.
func (e *Engine) ConstInt(t ffi.TypeRef, v uint64, signExtend bool) ffi.ValueRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	obj := e.typ(t)
	if obj.kind != ffi.IntegerTypeKind {
		return 0
	}
	lo, hi := truncate(v, signExtend, obj.width)
	return e.mintValue(valueObj{ctx: obj.ctx, typ: t, kind: valueConstInt, lo: lo, hi: hi})
}

func truncate(v uint64, signExtend bool, width uint32) (lo, hi uint64) {
	if width < 64 {
		return v & (uint64(1)<<width - 1), 0
	}
	if width > 64 && signExtend && int64(v) < 0 {
		return v, math.MaxUint64
	}
	return v, 0
}

// ConstReal implements ffi.ABI. Non-floating types fail with null. The value
// is rounded to the precision of the format where Go can represent it.
func (e *Engine) ConstReal(t ffi.TypeRef, v float64) ffi.ValueRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	obj := e.typ(t)
	if !obj.kind.IsFloatingPoint() {
		return 0
	}
	return e.mintValue(valueObj{ctx: obj.ctx, typ: t, kind: valueConstFP, lo: math.Float64bits(roundTo(obj.kind, v))})
}

func roundTo(kind ffi.TypeKind, v float64) float64 {
	switch kind {
	case ffi.FloatTypeKind:
		return float64(float32(v))
	case ffi.HalfTypeKind:
		return roundHalf(v)
	case ffi.BFloatTypeKind:
		bits := math.Float32bits(float32(v))
		if math.IsNaN(float64(float32(v))) {
			return v
		}
		// round to nearest even on the 16 discarded mantissa bits
		bits += 0x7FFF + (bits>>16)&1
		return float64(math.Float32frombits(bits &^ 0xFFFF))
	default:
		return v
	}
}

// roundHalf rounds v to the nearest IEEE binary16 value, ties to even.
// Magnitudes past the largest finite half (65504) become infinities.
func roundHalf(v float64) float64 {
	a := math.Abs(v)
	if a == 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return v
	}
	_, exp := math.Frexp(a)
	// 11 significant bits for normals, fixed 2^-24 quantum below 2^-14
	q := max(exp-11, -24)
	r := math.Ldexp(math.RoundToEven(math.Ldexp(a, -q)), q)
	if r > 65504 {
		r = math.Inf(1)
	}
	return math.Copysign(r, v)
}

// ConstArray implements ffi.ABI. Elements must all have type elem. Arrays
// whose elements are all zero collapse to the null constant and arrays whose
// elements are all undef collapse to undef.
func (e *Engine) ConstArray(elem ffi.TypeRef, vals []ffi.ValueRef) ffi.ValueRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	et := e.typ(elem)
	if !validElement(et.kind) {
		return 0
	}
	for _, v := range vals {
		if v == 0 || int(v) > len(e.values) || e.val(v).typ != elem {
			return 0
		}
	}
	arr := e.intern(et.ctx, typeObj{kind: ffi.ArrayTypeKind, elem: elem, count: uint64(len(vals))})
	return e.aggregate(et.ctx, arr, vals)
}

// ConstNamedStruct implements ffi.ABI. The struct must have a body whose
// field types match vals one for one.
func (e *Engine) ConstNamedStruct(st ffi.TypeRef, vals []ffi.ValueRef) ffi.ValueRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.structInfo(st)
	if !ok || !info.hasBody || len(info.fields) != len(vals) {
		return 0
	}
	for i, v := range vals {
		if v == 0 || int(v) > len(e.values) || e.val(v).typ != info.fields[i] {
			return 0
		}
	}
	return e.aggregate(e.typ(st).ctx, st, vals)
}

func (e *Engine) aggregate(c ffi.ContextRef, t ffi.TypeRef, vals []ffi.ValueRef) ffi.ValueRef {
	if len(vals) == 0 || e.all(vals, e.isZero) {
		return e.mintValue(valueObj{ctx: c, typ: t, kind: valueZero})
	}
	if e.all(vals, func(v ffi.ValueRef) bool { return e.val(v).kind == valueUndef }) {
		return e.mintValue(valueObj{ctx: c, typ: t, kind: valueUndef})
	}
	elems := make([]ffi.ValueRef, len(vals))
	copy(elems, vals)
	return e.mintValue(valueObj{ctx: c, typ: t, kind: valueAggregate, elems: elems})
}

func (e *Engine) all(vals []ffi.ValueRef, pred func(ffi.ValueRef) bool) bool {
	for _, v := range vals {
		if !pred(v) {
			return false
		}
	}
	return true
}

func (e *Engine) isZero(v ffi.ValueRef) bool {
	obj := e.val(v)
	switch obj.kind {
	case valueZero:
		return true
	case valueConstInt:
		return obj.lo == 0 && obj.hi == 0
	case valueConstFP:
		return obj.lo == 0 // +0.0 only
	default:
		return false
	}
}

// ConstNull implements ffi.ABI.
func (e *Engine) ConstNull(t ffi.TypeRef) ffi.ValueRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	obj := e.typ(t)
	switch obj.kind {
	case ffi.IntegerTypeKind:
		return e.mintValue(valueObj{ctx: obj.ctx, typ: t, kind: valueConstInt})
	case ffi.VoidTypeKind, ffi.LabelTypeKind, ffi.FunctionTypeKind, ffi.MetadataTypeKind:
		return 0
	default:
		if obj.kind.IsFloatingPoint() {
			return e.mintValue(valueObj{ctx: obj.ctx, typ: t, kind: valueConstFP})
		}
		return e.mintValue(valueObj{ctx: obj.ctx, typ: t, kind: valueZero})
	}
}

// GetUndef implements ffi.ABI.
func (e *Engine) GetUndef(t ffi.TypeRef) ffi.ValueRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	obj := e.typ(t)
	return e.mintValue(valueObj{ctx: obj.ctx, typ: t, kind: valueUndef})
}

// AlignOf implements ffi.ABI. The result is folded to an i64 constant using
// the engine's target layout. Unsized types fail with null.
func (e *Engine) AlignOf(t ffi.TypeRef) ffi.ValueRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.layoutOf(t)
	if !ok {
		return 0
	}
	return e.sizeTypeConst(e.typ(t).ctx, l.Align)
}

// SizeOf implements ffi.ABI with the same folding as AlignOf. A size that
// does not fit in 64 bits also fails with null.
func (e *Engine) SizeOf(t ffi.TypeRef) ffi.ValueRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.layoutOf(t)
	if !ok || l.Overflow {
		return 0
	}
	return e.sizeTypeConst(e.typ(t).ctx, l.Size)
}

func (e *Engine) sizeTypeConst(c ffi.ContextRef, n uint64) ffi.ValueRef {
	i64 := e.intern(c, typeObj{kind: ffi.IntegerTypeKind, width: 64})
	return e.mintValue(valueObj{ctx: c, typ: i64, kind: valueConstInt, lo: n})
}

// TypeOf implements ffi.ABI.
func (e *Engine) TypeOf(v ffi.ValueRef) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.val(v).typ
}

// IsUndef implements ffi.ABI.
func (e *Engine) IsUndef(v ffi.ValueRef) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.val(v).kind == valueUndef
}

// IsConstant implements ffi.ABI. Every simulated value is a constant.
func (e *Engine) IsConstant(v ffi.ValueRef) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.val(v)
	return true
}

// IsConstantInt implements ffi.ABI.
func (e *Engine) IsConstantInt(v ffi.ValueRef) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.val(v).kind == valueConstInt
}

// IsConstantFP implements ffi.ABI.
func (e *Engine) IsConstantFP(v ffi.ValueRef) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.val(v).kind == valueConstFP
}

// ConstIntGetZExtValue implements ffi.ABI.
func (e *Engine) ConstIntGetZExtValue(v ffi.ValueRef) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.val(v).lo
}

// ConstIntGetSExtValue implements ffi.ABI.
func (e *Engine) ConstIntGetSExtValue(v ffi.ValueRef) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	obj := e.val(v)
	return signExtend(obj.lo, e.typ(obj.typ).width)
}

func signExtend(lo uint64, width uint32) int64 {
	if width == 0 || width >= 64 {
		return int64(lo)
	}
	shift := 64 - width
	return int64(lo<<shift) >> shift
}

// ConstRealGetDouble implements ffi.ABI. The engine stores at most double
// precision, so the conversion never loses information.
func (e *Engine) ConstRealGetDouble(v ffi.ValueRef) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return math.Float64frombits(e.val(v).lo), false
}
