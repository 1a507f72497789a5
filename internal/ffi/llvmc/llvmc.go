//go:build llvm

// Package llvmc binds ffi.ABI to LLVM-C.
//
// Build with -tags llvm and point cgo at an LLVM installation, e.g.
//
//	CGO_CFLAGS="$(llvm-config --cflags)" \
//	CGO_LDFLAGS="$(llvm-config --ldflags --libs core)" go build -tags llvm ./...
//
// Calls that LLVM implements with an unchecked cast (struct field lookup,
// element type, parameter queries) are guarded by a kind check here so that
// the Go side observes null instead of an engine assertion. Everything else
// is forwarded unchanged.
package llvmc

/*
#cgo LDFLAGS: -lLLVM
#include <stdlib.h>
#include <llvm-c/Core.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"fortio.org/safecast"

	"irbind/internal/ffi"
)

// Engine is the LLVM-C implementation of ffi.ABI. It is stateless; LLVM owns
// all state.
type Engine struct{}

// New returns the LLVM-C engine.
func New() *Engine { return &Engine{} }

var _ ffi.ABI = (*Engine)(nil)

func ty(r ffi.TypeRef) C.LLVMTypeRef { return C.LLVMTypeRef(unsafe.Pointer(uintptr(r))) }
func val(r ffi.ValueRef) C.LLVMValueRef { return C.LLVMValueRef(unsafe.Pointer(uintptr(r))) }
func cx(r ffi.ContextRef) C.LLVMContextRef { return C.LLVMContextRef(unsafe.Pointer(uintptr(r))) }
func typeRef(t C.LLVMTypeRef) ffi.TypeRef { return ffi.TypeRef(uintptr(unsafe.Pointer(t))) }
func valueRef(v C.LLVMValueRef) ffi.ValueRef { return ffi.ValueRef(uintptr(unsafe.Pointer(v))) }
func ctxRef(c C.LLVMContextRef) ffi.ContextRef { return ffi.ContextRef(uintptr(unsafe.Pointer(c))) }

func cLen(n int) C.unsigned {
	u, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("llvmc: length overflow: %w", err))
	}
	return C.unsigned(u)
}

func llvmBool(b bool) C.LLVMBool {
	if b {
		return 1
	}
	return 0
}

// typeArray views a handle slice as the C array LLVM expects. Handles are
// C pointers stored as integers, so the slice holds no Go pointers.
func typeArray(refs []ffi.TypeRef) *C.LLVMTypeRef {
	if len(refs) == 0 {
		return nil
	}
	return (*C.LLVMTypeRef)(unsafe.Pointer(&refs[0]))
}

func valueArray(refs []ffi.ValueRef) *C.LLVMValueRef {
	if len(refs) == 0 {
		return nil
	}
	return (*C.LLVMValueRef)(unsafe.Pointer(&refs[0]))
}

// ContextCreate implements ffi.ABI.
func (Engine) ContextCreate() ffi.ContextRef { return ctxRef(C.LLVMContextCreate()) }

// ContextDispose implements ffi.ABI. The global context is never disposed.
func (Engine) ContextDispose(c ffi.ContextRef) {
	if c == ctxRef(C.LLVMGetGlobalContext()) {
		return
	}
	C.LLVMContextDispose(cx(c))
}

// GetGlobalContext implements ffi.ABI.
func (Engine) GetGlobalContext() ffi.ContextRef { return ctxRef(C.LLVMGetGlobalContext()) }

// IntTypeInContext implements ffi.ABI.
func (Engine) IntTypeInContext(c ffi.ContextRef, bits uint32) ffi.TypeRef {
	return typeRef(C.LLVMIntTypeInContext(cx(c), C.unsigned(bits)))
}

// FloatKindTypeInContext implements ffi.ABI.
func (Engine) FloatKindTypeInContext(c ffi.ContextRef, kind ffi.TypeKind) ffi.TypeRef {
	switch kind {
	case ffi.HalfTypeKind:
		return typeRef(C.LLVMHalfTypeInContext(cx(c)))
	case ffi.BFloatTypeKind:
		return typeRef(C.LLVMBFloatTypeInContext(cx(c)))
	case ffi.FloatTypeKind:
		return typeRef(C.LLVMFloatTypeInContext(cx(c)))
	case ffi.DoubleTypeKind:
		return typeRef(C.LLVMDoubleTypeInContext(cx(c)))
	case ffi.X86FP80TypeKind:
		return typeRef(C.LLVMX86FP80TypeInContext(cx(c)))
	case ffi.FP128TypeKind:
		return typeRef(C.LLVMFP128TypeInContext(cx(c)))
	case ffi.PPCFP128TypeKind:
		return typeRef(C.LLVMPPCFP128TypeInContext(cx(c)))
	default:
		return 0
	}
}

// VoidTypeInContext implements ffi.ABI.
func (Engine) VoidTypeInContext(c ffi.ContextRef) ffi.TypeRef {
	return typeRef(C.LLVMVoidTypeInContext(cx(c)))
}

// LabelTypeInContext implements ffi.ABI.
func (Engine) LabelTypeInContext(c ffi.ContextRef) ffi.TypeRef {
	return typeRef(C.LLVMLabelTypeInContext(cx(c)))
}

// PointerType implements ffi.ABI.
func (Engine) PointerType(elem ffi.TypeRef, addressSpace uint32) ffi.TypeRef {
	return typeRef(C.LLVMPointerType(ty(elem), C.unsigned(addressSpace)))
}

// ArrayType implements ffi.ABI.
func (Engine) ArrayType(elem ffi.TypeRef, count uint32) ffi.TypeRef {
	return typeRef(C.LLVMArrayType(ty(elem), C.unsigned(count)))
}

// FunctionType implements ffi.ABI.
func (Engine) FunctionType(ret ffi.TypeRef, params []ffi.TypeRef, isVarArg bool) ffi.TypeRef {
	return typeRef(C.LLVMFunctionType(ty(ret), typeArray(params), cLen(len(params)), llvmBool(isVarArg)))
}

// StructTypeInContext implements ffi.ABI.
func (Engine) StructTypeInContext(c ffi.ContextRef, elems []ffi.TypeRef, packed bool) ffi.TypeRef {
	return typeRef(C.LLVMStructTypeInContext(cx(c), typeArray(elems), cLen(len(elems)), llvmBool(packed)))
}

// StructCreateNamed implements ffi.ABI.
func (Engine) StructCreateNamed(c ffi.ContextRef, name string) ffi.TypeRef {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return typeRef(C.LLVMStructCreateNamed(cx(c), cname))
}

// StructSetBody implements ffi.ABI.
func (Engine) StructSetBody(st ffi.TypeRef, elems []ffi.TypeRef, packed bool) {
	if C.LLVMGetTypeKind(ty(st)) != C.LLVMStructTypeKind || C.LLVMIsOpaqueStruct(ty(st)) == 0 {
		return
	}
	C.LLVMStructSetBody(ty(st), typeArray(elems), cLen(len(elems)), llvmBool(packed))
}

// ConstInt implements ffi.ABI.
func (Engine) ConstInt(t ffi.TypeRef, v uint64, signExtend bool) ffi.ValueRef {
	return valueRef(C.LLVMConstInt(ty(t), C.ulonglong(v), llvmBool(signExtend)))
}

// ConstReal implements ffi.ABI.
func (Engine) ConstReal(t ffi.TypeRef, v float64) ffi.ValueRef {
	return valueRef(C.LLVMConstReal(ty(t), C.double(v)))
}

// ConstArray implements ffi.ABI.
func (Engine) ConstArray(elem ffi.TypeRef, vals []ffi.ValueRef) ffi.ValueRef {
	return valueRef(C.LLVMConstArray(ty(elem), valueArray(vals), cLen(len(vals))))
}

// ConstNamedStruct implements ffi.ABI.
func (Engine) ConstNamedStruct(st ffi.TypeRef, vals []ffi.ValueRef) ffi.ValueRef {
	return valueRef(C.LLVMConstNamedStruct(ty(st), valueArray(vals), cLen(len(vals))))
}

// ConstNull implements ffi.ABI.
func (Engine) ConstNull(t ffi.TypeRef) ffi.ValueRef { return valueRef(C.LLVMConstNull(ty(t))) }

// GetUndef implements ffi.ABI.
func (Engine) GetUndef(t ffi.TypeRef) ffi.ValueRef { return valueRef(C.LLVMGetUndef(ty(t))) }

// AlignOf implements ffi.ABI.
func (Engine) AlignOf(t ffi.TypeRef) ffi.ValueRef { return valueRef(C.LLVMAlignOf(ty(t))) }

// SizeOf implements ffi.ABI.
func (Engine) SizeOf(t ffi.TypeRef) ffi.ValueRef { return valueRef(C.LLVMSizeOf(ty(t))) }

// GetTypeKind implements ffi.ABI.
func (Engine) GetTypeKind(t ffi.TypeRef) ffi.TypeKind {
	return ffi.TypeKind(C.LLVMGetTypeKind(ty(t)))
}

// TypeIsSized implements ffi.ABI.
func (Engine) TypeIsSized(t ffi.TypeRef) bool { return C.LLVMTypeIsSized(ty(t)) != 0 }

// GetTypeContext implements ffi.ABI.
func (Engine) GetTypeContext(t ffi.TypeRef) ffi.ContextRef {
	return ctxRef(C.LLVMGetTypeContext(ty(t)))
}

// GetIntTypeWidth implements ffi.ABI.
func (Engine) GetIntTypeWidth(t ffi.TypeRef) uint32 {
	if C.LLVMGetTypeKind(ty(t)) != C.LLVMIntegerTypeKind {
		return 0
	}
	return uint32(C.LLVMGetIntTypeWidth(ty(t)))
}

// GetElementType implements ffi.ABI.
func (Engine) GetElementType(t ffi.TypeRef) ffi.TypeRef {
	switch C.LLVMGetTypeKind(ty(t)) {
	case C.LLVMArrayTypeKind, C.LLVMVectorTypeKind, C.LLVMScalableVectorTypeKind:
		return typeRef(C.LLVMGetElementType(ty(t)))
	default:
		return 0
	}
}

// GetArrayLength implements ffi.ABI.
func (Engine) GetArrayLength(t ffi.TypeRef) uint64 {
	if C.LLVMGetTypeKind(ty(t)) != C.LLVMArrayTypeKind {
		return 0
	}
	return uint64(C.LLVMGetArrayLength(ty(t)))
}

// GetPointerAddressSpace implements ffi.ABI.
func (Engine) GetPointerAddressSpace(t ffi.TypeRef) uint32 {
	if C.LLVMGetTypeKind(ty(t)) != C.LLVMPointerTypeKind {
		return 0
	}
	return uint32(C.LLVMGetPointerAddressSpace(ty(t)))
}

func isFunction(t ffi.TypeRef) bool {
	return C.LLVMGetTypeKind(ty(t)) == C.LLVMFunctionTypeKind
}

func isStruct(t ffi.TypeRef) bool {
	return C.LLVMGetTypeKind(ty(t)) == C.LLVMStructTypeKind
}

// IsFunctionVarArg implements ffi.ABI.
func (Engine) IsFunctionVarArg(fn ffi.TypeRef) bool {
	return isFunction(fn) && C.LLVMIsFunctionVarArg(ty(fn)) != 0
}

// CountParamTypes implements ffi.ABI.
func (Engine) CountParamTypes(fn ffi.TypeRef) uint32 {
	if !isFunction(fn) {
		return 0
	}
	return uint32(C.LLVMCountParamTypes(ty(fn)))
}

// GetParamTypes implements ffi.ABI.
func (e Engine) GetParamTypes(fn ffi.TypeRef, dst []ffi.TypeRef) {
	if len(dst) == 0 || len(dst) < int(e.CountParamTypes(fn)) {
		return
	}
	C.LLVMGetParamTypes(ty(fn), typeArray(dst))
}

// GetReturnType implements ffi.ABI.
func (Engine) GetReturnType(fn ffi.TypeRef) ffi.TypeRef {
	if !isFunction(fn) {
		return 0
	}
	return typeRef(C.LLVMGetReturnType(ty(fn)))
}

// StructGetTypeAtIndex implements ffi.ABI.
func (e Engine) StructGetTypeAtIndex(st ffi.TypeRef, i uint32) ffi.TypeRef {
	if i >= e.CountStructElementTypes(st) {
		return 0
	}
	return typeRef(C.LLVMStructGetTypeAtIndex(ty(st), C.unsigned(i)))
}

// CountStructElementTypes implements ffi.ABI.
func (Engine) CountStructElementTypes(st ffi.TypeRef) uint32 {
	if !isStruct(st) {
		return 0
	}
	return uint32(C.LLVMCountStructElementTypes(ty(st)))
}

// GetStructElementTypes implements ffi.ABI.
func (e Engine) GetStructElementTypes(st ffi.TypeRef, dst []ffi.TypeRef) {
	if len(dst) == 0 || len(dst) < int(e.CountStructElementTypes(st)) {
		return
	}
	C.LLVMGetStructElementTypes(ty(st), typeArray(dst))
}

// IsPackedStruct implements ffi.ABI.
func (Engine) IsPackedStruct(st ffi.TypeRef) bool {
	return isStruct(st) && C.LLVMIsPackedStruct(ty(st)) != 0
}

// IsOpaqueStruct implements ffi.ABI.
func (Engine) IsOpaqueStruct(st ffi.TypeRef) bool {
	return isStruct(st) && C.LLVMIsOpaqueStruct(ty(st)) != 0
}

// GetStructName implements ffi.ABI.
func (Engine) GetStructName(st ffi.TypeRef) string {
	if !isStruct(st) {
		return ""
	}
	name := C.LLVMGetStructName(ty(st))
	if name == nil {
		return ""
	}
	return C.GoString(name)
}

// TypeOf implements ffi.ABI.
func (Engine) TypeOf(v ffi.ValueRef) ffi.TypeRef { return typeRef(C.LLVMTypeOf(val(v))) }

// IsUndef implements ffi.ABI.
func (Engine) IsUndef(v ffi.ValueRef) bool { return C.LLVMIsUndef(val(v)) != 0 }

// IsConstant implements ffi.ABI.
func (Engine) IsConstant(v ffi.ValueRef) bool { return C.LLVMIsConstant(val(v)) != 0 }

// IsConstantInt implements ffi.ABI.
func (Engine) IsConstantInt(v ffi.ValueRef) bool { return C.LLVMIsAConstantInt(val(v)) != nil }

// IsConstantFP implements ffi.ABI.
func (Engine) IsConstantFP(v ffi.ValueRef) bool { return C.LLVMIsAConstantFP(val(v)) != nil }

// ConstIntGetZExtValue implements ffi.ABI.
func (Engine) ConstIntGetZExtValue(v ffi.ValueRef) uint64 {
	return uint64(C.LLVMConstIntGetZExtValue(val(v)))
}

// ConstIntGetSExtValue implements ffi.ABI.
func (Engine) ConstIntGetSExtValue(v ffi.ValueRef) int64 {
	return int64(C.LLVMConstIntGetSExtValue(val(v)))
}

// ConstRealGetDouble implements ffi.ABI.
func (Engine) ConstRealGetDouble(v ffi.ValueRef) (float64, bool) {
	var loses C.LLVMBool
	d := C.LLVMConstRealGetDouble(val(v), &loses)
	return float64(d), loses != 0
}

func takeMessage(msg *C.char) string {
	if msg == nil {
		return ""
	}
	defer C.LLVMDisposeMessage(msg)
	return C.GoString(msg)
}

// PrintTypeToString implements ffi.ABI.
func (Engine) PrintTypeToString(t ffi.TypeRef) string {
	return takeMessage(C.LLVMPrintTypeToString(ty(t)))
}

// PrintValueToString implements ffi.ABI.
func (Engine) PrintValueToString(v ffi.ValueRef) string {
	return takeMessage(C.LLVMPrintValueToString(val(v)))
}

// DumpType implements ffi.ABI. LLVM writes to stderr.
func (Engine) DumpType(t ffi.TypeRef) { C.LLVMDumpType(ty(t)) }

// DumpValue implements ffi.ABI.
func (Engine) DumpValue(v ffi.ValueRef) { C.LLVMDumpValue(val(v)) }
