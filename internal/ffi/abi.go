// Package ffi describes the foreign-engine boundary that irtype sits on.
//
// Handles are raw uintptr values copied out of the engine. A zero handle is
// null. Nothing in this package owns engine memory: every type and value
// belongs to the context that minted it and dies with that context.
//
// Two implementations exist. llvmc forwards to LLVM-C through cgo and is
// compiled with the llvm build tag. sim is an in-process engine with the same
// observable behaviour and is used everywhere else, including tests.
package ffi

// TypeRef is an opaque reference to an engine type (LLVMTypeRef).
type TypeRef uintptr

// ValueRef is an opaque reference to an engine value (LLVMValueRef).
type ValueRef uintptr

// ContextRef is an opaque reference to an engine context (LLVMContextRef).
type ContextRef uintptr

// IsNull reports whether the handle is the engine's null.
func (r TypeRef) IsNull() bool { return r == 0 }

// IsNull reports whether the handle is the engine's null.
func (r ValueRef) IsNull() bool { return r == 0 }

// IsNull reports whether the handle is the engine's null.
func (r ContextRef) IsNull() bool { return r == 0 }

// ABI is the set of foreign calls the type layer needs. Method names follow
// the LLVM-C entry points they stand for, minus the LLVM prefix.
//
// Implementations are not required to be safe for concurrent use of the same
// context. Distinct contexts may be used from distinct goroutines.
type ABI interface {
	// Context lifecycle.
	ContextCreate() ContextRef
	ContextDispose(c ContextRef)
	GetGlobalContext() ContextRef

	// Type minting.
	IntTypeInContext(c ContextRef, bits uint32) TypeRef
	FloatKindTypeInContext(c ContextRef, kind TypeKind) TypeRef
	VoidTypeInContext(c ContextRef) TypeRef
	LabelTypeInContext(c ContextRef) TypeRef
	PointerType(elem TypeRef, addressSpace uint32) TypeRef
	ArrayType(elem TypeRef, count uint32) TypeRef
	FunctionType(ret TypeRef, params []TypeRef, isVarArg bool) TypeRef
	StructTypeInContext(c ContextRef, elems []TypeRef, packed bool) TypeRef
	StructCreateNamed(c ContextRef, name string) TypeRef
	StructSetBody(st TypeRef, elems []TypeRef, packed bool)

	// Constant minting.
	ConstInt(t TypeRef, v uint64, signExtend bool) ValueRef
	ConstReal(t TypeRef, v float64) ValueRef
	ConstArray(elem TypeRef, vals []ValueRef) ValueRef
	ConstNamedStruct(st TypeRef, vals []ValueRef) ValueRef
	ConstNull(t TypeRef) ValueRef
	GetUndef(t TypeRef) ValueRef
	AlignOf(t TypeRef) ValueRef
	SizeOf(t TypeRef) ValueRef

	// Type introspection.
	GetTypeKind(t TypeRef) TypeKind
	TypeIsSized(t TypeRef) bool
	GetTypeContext(t TypeRef) ContextRef
	GetIntTypeWidth(t TypeRef) uint32
	GetElementType(t TypeRef) TypeRef
	GetArrayLength(t TypeRef) uint64
	GetPointerAddressSpace(t TypeRef) uint32
	IsFunctionVarArg(fn TypeRef) bool
	CountParamTypes(fn TypeRef) uint32
	// GetParamTypes fills dst, which the caller sizes with CountParamTypes.
	GetParamTypes(fn TypeRef, dst []TypeRef)
	GetReturnType(fn TypeRef) TypeRef
	StructGetTypeAtIndex(st TypeRef, i uint32) TypeRef
	CountStructElementTypes(st TypeRef) uint32
	// GetStructElementTypes fills dst, sized with CountStructElementTypes.
	GetStructElementTypes(st TypeRef, dst []TypeRef)
	IsPackedStruct(st TypeRef) bool
	IsOpaqueStruct(st TypeRef) bool
	GetStructName(st TypeRef) string

	// Value introspection.
	TypeOf(v ValueRef) TypeRef
	IsUndef(v ValueRef) bool
	IsConstant(v ValueRef) bool
	IsConstantInt(v ValueRef) bool
	IsConstantFP(v ValueRef) bool
	// ConstIntGetZExtValue and ConstIntGetSExtValue require IsConstantInt.
	ConstIntGetZExtValue(v ValueRef) uint64
	ConstIntGetSExtValue(v ValueRef) int64
	// ConstRealGetDouble requires IsConstantFP. losesInfo reports whether
	// widening the stored value to double was inexact.
	ConstRealGetDouble(v ValueRef) (value float64, losesInfo bool)

	// Diagnostics.
	PrintTypeToString(t TypeRef) string
	PrintValueToString(v ValueRef) string
	DumpType(t TypeRef)
	DumpValue(v ValueRef)
}
