package sim

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"irbind/internal/ffi"
)

// typeObj is a compact descriptor for any simulated type.
type typeObj struct {
	ctx       ffi.ContextRef
	kind      ffi.TypeKind
	width     uint32      // integer bit width
	elem      ffi.TypeRef // array element
	count     uint64      // array length
	addrSpace uint32      // pointer address space
	payload   uint32      // slot in simContext.fns or simContext.structs
}

type typeKey struct {
	kind      ffi.TypeKind
	width     uint32
	elem      ffi.TypeRef
	count     uint64
	addrSpace uint32
	payload   uint32
}

func (t typeObj) key() typeKey {
	return typeKey{
		kind:      t.kind,
		width:     t.width,
		elem:      t.elem,
		count:     t.count,
		addrSpace: t.addrSpace,
		payload:   t.payload,
	}
}

// fnInfo stores metadata for function types.
type fnInfo struct {
	ret      ffi.TypeRef
	params   []ffi.TypeRef
	isVarArg bool
}

// structInfo stores metadata for literal and identified struct types.
type structInfo struct {
	name    string
	named   bool
	hasBody bool
	packed  bool
	fields  []ffi.TypeRef
}

// Upper bound LLVM places on integer widths (IntegerType::MAX_INT_BITS).
const maxIntBits = 1 << 23

// IntTypeInContext implements ffi.ABI.
func (e *Engine) IntTypeInContext(c ffi.ContextRef, bits uint32) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	if bits == 0 || bits > maxIntBits {
		return 0
	}
	return e.intern(c, typeObj{kind: ffi.IntegerTypeKind, width: bits})
}

// FloatKindTypeInContext implements ffi.ABI.
func (e *Engine) FloatKindTypeInContext(c ffi.ContextRef, kind ffi.TypeKind) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !kind.IsFloatingPoint() {
		return 0
	}
	return e.intern(c, typeObj{kind: kind})
}

// VoidTypeInContext implements ffi.ABI.
func (e *Engine) VoidTypeInContext(c ffi.ContextRef) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.intern(c, typeObj{kind: ffi.VoidTypeKind})
}

// LabelTypeInContext implements ffi.ABI.
func (e *Engine) LabelTypeInContext(c ffi.ContextRef) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.intern(c, typeObj{kind: ffi.LabelTypeKind})
}

// PointerType implements ffi.ABI. Pointers are opaque: the pointee only
// selects the context, so every pointee yields the same type per address space.
func (e *Engine) PointerType(elem ffi.TypeRef, addressSpace uint32) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	et := e.typ(elem)
	if !validPointee(et.kind) {
		return 0
	}
	return e.intern(et.ctx, typeObj{kind: ffi.PointerTypeKind, addrSpace: addressSpace})
}

// ArrayType implements ffi.ABI.
func (e *Engine) ArrayType(elem ffi.TypeRef, count uint32) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	et := e.typ(elem)
	if !validElement(et.kind) {
		return 0
	}
	return e.intern(et.ctx, typeObj{kind: ffi.ArrayTypeKind, elem: elem, count: uint64(count)})
}

// FunctionType implements ffi.ABI. Parameters from another context make the
// call fail with null.
func (e *Engine) FunctionType(ret ffi.TypeRef, params []ffi.TypeRef, isVarArg bool) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	rt := e.typ(ret)
	if rt.kind == ffi.LabelTypeKind || rt.kind == ffi.FunctionTypeKind || rt.kind == ffi.MetadataTypeKind {
		return 0
	}
	if !e.sameContext(rt.ctx, params) {
		return 0
	}
	for _, p := range params {
		pk := e.typ(p).kind
		if pk == ffi.VoidTypeKind || pk == ffi.LabelTypeKind || pk == ffi.FunctionTypeKind {
			return 0
		}
	}
	ctx := e.ctx(rt.ctx)
	for slot := 1; slot < len(ctx.fns); slot++ {
		info := ctx.fns[slot]
		if info.ret == ret && info.isVarArg == isVarArg && slices.Equal(info.params, params) {
			return e.intern(rt.ctx, typeObj{kind: ffi.FunctionTypeKind, payload: mustSlot(slot)})
		}
	}
	ctx.fns = append(ctx.fns, fnInfo{ret: ret, params: slices.Clone(params), isVarArg: isVarArg})
	return e.intern(rt.ctx, typeObj{kind: ffi.FunctionTypeKind, payload: mustSlot(len(ctx.fns) - 1)})
}

// StructTypeInContext implements ffi.ABI. Literal structs are uniqued by
// their field list and packing.
func (e *Engine) StructTypeInContext(c ffi.ContextRef, elems []ffi.TypeRef, packed bool) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx := e.ctx(c)
	if !e.sameContext(c, elems) || !e.validFields(elems) {
		return 0
	}
	for slot := 1; slot < len(ctx.structs); slot++ {
		info := ctx.structs[slot]
		if !info.named && info.packed == packed && slices.Equal(info.fields, elems) {
			return e.intern(c, typeObj{kind: ffi.StructTypeKind, payload: mustSlot(slot)})
		}
	}
	ctx.structs = append(ctx.structs, structInfo{hasBody: true, packed: packed, fields: slices.Clone(elems)})
	return e.intern(c, typeObj{kind: ffi.StructTypeKind, payload: mustSlot(len(ctx.structs) - 1)})
}

// StructCreateNamed implements ffi.ABI. A name already taken in the context
// receives a numeric suffix.
func (e *Engine) StructCreateNamed(c ffi.ContextRef, name string) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx := e.ctx(c)
	if name != "" {
		if _, taken := ctx.names[name]; taken {
			for {
				candidate := fmt.Sprintf("%s.%d", name, ctx.nameSeq)
				ctx.nameSeq++
				if _, taken := ctx.names[candidate]; !taken {
					name = candidate
					break
				}
			}
		}
		ctx.names[name] = struct{}{}
	}
	ctx.structs = append(ctx.structs, structInfo{name: name, named: true})
	return e.internRaw(typeObj{ctx: c, kind: ffi.StructTypeKind, payload: mustSlot(len(ctx.structs) - 1)})
}

// StructSetBody implements ffi.ABI. Literal structs and structs that already
// have a body are left untouched.
func (e *Engine) StructSetBody(st ffi.TypeRef, elems []ffi.TypeRef, packed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.typ(st)
	if t.kind != ffi.StructTypeKind {
		return
	}
	ctx := e.ctx(t.ctx)
	info := &ctx.structs[t.payload]
	if !info.named || info.hasBody {
		return
	}
	if !e.sameContext(t.ctx, elems) || !e.validFields(elems) {
		return
	}
	info.fields = slices.Clone(elems)
	info.packed = packed
	info.hasBody = true
}

// GetTypeKind implements ffi.ABI.
func (e *Engine) GetTypeKind(t ffi.TypeRef) ffi.TypeKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.typ(t).kind
}

// TypeIsSized implements ffi.ABI.
func (e *Engine) TypeIsSized(t ffi.TypeRef) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isSized(t, make(map[ffi.TypeRef]struct{}, 8))
}

func (e *Engine) isSized(t ffi.TypeRef, visiting map[ffi.TypeRef]struct{}) bool {
	obj := e.typ(t)
	switch obj.kind {
	case ffi.IntegerTypeKind, ffi.PointerTypeKind:
		return true
	case ffi.ArrayTypeKind:
		return e.isSized(obj.elem, visiting)
	case ffi.StructTypeKind:
		if _, ok := visiting[t]; ok {
			return false
		}
		info := e.ctx(obj.ctx).structs[obj.payload]
		if !info.hasBody {
			return false
		}
		visiting[t] = struct{}{}
		defer delete(visiting, t)
		for _, f := range info.fields {
			if !e.isSized(f, visiting) {
				return false
			}
		}
		return true
	default:
		return obj.kind.IsFloatingPoint()
	}
}

// GetTypeContext implements ffi.ABI.
func (e *Engine) GetTypeContext(t ffi.TypeRef) ffi.ContextRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.typ(t).ctx
}

// GetIntTypeWidth implements ffi.ABI. Non-integer types report 0.
func (e *Engine) GetIntTypeWidth(t ffi.TypeRef) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.typ(t).width
}

// GetElementType implements ffi.ABI. Opaque pointers have no element type.
func (e *Engine) GetElementType(t ffi.TypeRef) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.typ(t).elem
}

// GetArrayLength implements ffi.ABI.
func (e *Engine) GetArrayLength(t ffi.TypeRef) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.typ(t).count
}

// GetPointerAddressSpace implements ffi.ABI.
func (e *Engine) GetPointerAddressSpace(t ffi.TypeRef) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.typ(t).addrSpace
}

// IsFunctionVarArg implements ffi.ABI.
func (e *Engine) IsFunctionVarArg(fn ffi.TypeRef) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.fnInfo(fn)
	return ok && info.isVarArg
}

// CountParamTypes implements ffi.ABI.
func (e *Engine) CountParamTypes(fn ffi.TypeRef) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.fnInfo(fn)
	if !ok {
		return 0
	}
	return mustSlot(len(info.params))
}

// GetParamTypes implements ffi.ABI.
func (e *Engine) GetParamTypes(fn ffi.TypeRef, dst []ffi.TypeRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.fnInfo(fn)
	if !ok {
		return
	}
	copy(dst, info.params)
}

// GetReturnType implements ffi.ABI.
func (e *Engine) GetReturnType(fn ffi.TypeRef) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.fnInfo(fn)
	if !ok {
		return 0
	}
	return info.ret
}

// StructGetTypeAtIndex implements ffi.ABI. Non-struct types and indices past
// the last field answer null.
func (e *Engine) StructGetTypeAtIndex(st ffi.TypeRef, i uint32) ffi.TypeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.structInfo(st)
	if !ok || int(i) >= len(info.fields) {
		return 0
	}
	return info.fields[i]
}

// CountStructElementTypes implements ffi.ABI.
func (e *Engine) CountStructElementTypes(st ffi.TypeRef) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.structInfo(st)
	if !ok {
		return 0
	}
	return mustSlot(len(info.fields))
}

// GetStructElementTypes implements ffi.ABI.
func (e *Engine) GetStructElementTypes(st ffi.TypeRef, dst []ffi.TypeRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.structInfo(st)
	if !ok {
		return
	}
	copy(dst, info.fields)
}

// IsPackedStruct implements ffi.ABI.
func (e *Engine) IsPackedStruct(st ffi.TypeRef) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.structInfo(st)
	return ok && info.packed
}

// IsOpaqueStruct implements ffi.ABI.
func (e *Engine) IsOpaqueStruct(st ffi.TypeRef) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.structInfo(st)
	return ok && !info.hasBody
}

// GetStructName implements ffi.ABI. Literal structs have no name.
func (e *Engine) GetStructName(st ffi.TypeRef) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	info, ok := e.structInfo(st)
	if !ok {
		return ""
	}
	return info.name
}

func (e *Engine) fnInfo(fn ffi.TypeRef) (fnInfo, bool) {
	t := e.typ(fn)
	if t.kind != ffi.FunctionTypeKind {
		return fnInfo{}, false
	}
	fns := e.ctx(t.ctx).fns
	if int(t.payload) >= len(fns) {
		return fnInfo{}, false
	}
	return fns[t.payload], true
}

func (e *Engine) structInfo(st ffi.TypeRef) (structInfo, bool) {
	t := e.typ(st)
	if t.kind != ffi.StructTypeKind {
		return structInfo{}, false
	}
	structs := e.ctx(t.ctx).structs
	if int(t.payload) >= len(structs) {
		return structInfo{}, false
	}
	return structs[t.payload], true
}

func (e *Engine) validFields(elems []ffi.TypeRef) bool {
	for _, f := range elems {
		if !validElement(e.typ(f).kind) {
			return false
		}
	}
	return true
}

func validElement(k ffi.TypeKind) bool {
	switch k {
	case ffi.VoidTypeKind, ffi.LabelTypeKind, ffi.FunctionTypeKind, ffi.MetadataTypeKind, ffi.TokenTypeKind:
		return false
	default:
		return true
	}
}

func validPointee(k ffi.TypeKind) bool {
	switch k {
	case ffi.VoidTypeKind, ffi.LabelTypeKind, ffi.MetadataTypeKind, ffi.TokenTypeKind:
		return false
	default:
		return true
	}
}

func mustSlot(n int) uint32 {
	slot, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("sim: slot overflow: %w", err))
	}
	return slot
}
