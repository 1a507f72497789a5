package sim

import (
	"math/bits"

	"irbind/internal/ffi"
)

// Target describes the data layout the engine folds AlignOf/SizeOf with.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  uint64 // bytes
	PtrAlign uint64 // bytes
	// IntAligns maps the widths listed in the data layout string to their
	// ABI alignment in bytes. Other widths use the next larger entry.
	IntAligns []IntAlign
}

// IntAlign is one integer entry of a data layout.
type IntAlign struct {
	Bits  uint32
	Align uint64
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:   "x86_64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
		IntAligns: []IntAlign{
			{Bits: 1, Align: 1},
			{Bits: 8, Align: 1},
			{Bits: 16, Align: 2},
			{Bits: 32, Align: 4},
			{Bits: 64, Align: 8},
			{Bits: 128, Align: 16},
		},
	}
}

// typeLayout is the ABI layout of a type: allocation size and alignment.
// Overflow is set when the allocation size does not fit in 64 bits; Size is
// meaningless then but Align is still exact.
type typeLayout struct {
	Size     uint64
	Align    uint64
	Overflow bool
}

type layoutState struct {
	visiting map[ffi.TypeRef]struct{}
}

// layoutOf computes the layout of t. ok is false for unsized types,
// including structs that contain themselves by value.
func (e *Engine) layoutOf(t ffi.TypeRef) (typeLayout, bool) {
	state := &layoutState{visiting: make(map[ffi.TypeRef]struct{}, 8)}
	return e.computeLayout(t, state)
}

func (e *Engine) computeLayout(t ffi.TypeRef, state *layoutState) (typeLayout, bool) {
	obj := e.typ(t)
	switch obj.kind {
	case ffi.IntegerTypeKind:
		return e.intLayout(obj.width), true

	case ffi.PointerTypeKind:
		return typeLayout{Size: e.target.PtrSize, Align: e.target.PtrAlign}, true

	case ffi.HalfTypeKind, ffi.BFloatTypeKind:
		return typeLayout{Size: 2, Align: 2}, true
	case ffi.FloatTypeKind:
		return typeLayout{Size: 4, Align: 4}, true
	case ffi.DoubleTypeKind:
		return typeLayout{Size: 8, Align: 8}, true
	case ffi.X86FP80TypeKind, ffi.FP128TypeKind, ffi.PPCFP128TypeKind:
		return typeLayout{Size: 16, Align: 16}, true

	case ffi.ArrayTypeKind:
		el, ok := e.computeLayout(obj.elem, state)
		if !ok {
			return typeLayout{}, false
		}
		hi, size := bits.Mul64(el.Size, obj.count)
		return typeLayout{Size: size, Align: el.Align, Overflow: el.Overflow || hi != 0}, true

	case ffi.StructTypeKind:
		return e.structLayout(t, obj, state)

	default:
		return typeLayout{}, false
	}
}

func (e *Engine) intLayout(bits uint32) typeLayout {
	bytes := uint64(bits+7) / 8
	align := uint64(1)
	for _, ia := range e.target.IntAligns {
		align = ia.Align
		if ia.Bits >= bits {
			break
		}
	}
	size, _ := alignTo(bytes, align, false)
	return typeLayout{Size: size, Align: align}
}

func (e *Engine) structLayout(t ffi.TypeRef, obj typeObj, state *layoutState) (typeLayout, bool) {
	if _, ok := state.visiting[t]; ok {
		return typeLayout{}, false
	}
	info := e.ctx(obj.ctx).structs[obj.payload]
	if !info.hasBody {
		return typeLayout{}, false
	}
	state.visiting[t] = struct{}{}
	defer delete(state.visiting, t)

	var (
		size     uint64
		overflow bool
	)
	maxAlign := uint64(1)
	for _, f := range info.fields {
		fl, ok := e.computeLayout(f, state)
		if !ok {
			return typeLayout{}, false
		}
		align := fl.Align
		if info.packed {
			align = 1
		}
		var carry uint64
		size, overflow = alignTo(size, align, overflow)
		size, carry = bits.Add64(size, fl.Size, 0)
		overflow = overflow || fl.Overflow || carry != 0
		if align > maxAlign {
			maxAlign = align
		}
	}
	size, overflow = alignTo(size, maxAlign, overflow)
	return typeLayout{Size: size, Align: maxAlign, Overflow: overflow}, true
}

// alignTo rounds n up to a multiple of align. overflow is sticky.
func alignTo(n, align uint64, overflow bool) (uint64, bool) {
	if align <= 1 {
		return n, overflow
	}
	sum, carry := bits.Add64(n, align-1, 0)
	return sum / align * align, overflow || carry != 0
}
