package irtype

import "irbind/internal/ffi"

// StructType is the view of a literal or identified struct type.
type StructType struct {
	ref ffi.TypeRef
}

func (s StructType) handle(op string) ffi.TypeRef {
	if s.ref.IsNull() {
		fatal(op, "type")
	}
	return s.ref
}

// AsType returns the general view of s.
func (s StructType) AsType() Type {
	return Type{ref: s.handle("StructType.AsType")}
}

// SetBody gives an opaque identified struct its fields. It has no effect on
// literal structs or on structs that already have a body.
func (s StructType) SetBody(fields []Type, packed bool) {
	mustCount("SetBody", len(fields))
	engine.StructSetBody(s.handle("SetBody"), typeRefs("SetBody", fields), packed)
}

// CountFields returns the number of fields; 0 for opaque structs.
func (s StructType) CountFields() uint32 {
	return engine.CountStructElementTypes(s.handle("CountFields"))
}

// FieldTypes returns the field types in order.
func (s StructType) FieldTypes() []Type {
	ref := s.handle("FieldTypes")
	return fillTypes("FieldTypes", engine.CountStructElementTypes(ref), func(dst []ffi.TypeRef) {
		engine.GetStructElementTypes(ref, dst)
	})
}

// FieldType returns the type of field index, if there is one.
func (s StructType) FieldType(index uint32) (Type, bool) {
	return optionalType(engine.StructGetTypeAtIndex(s.handle("FieldType"), index))
}

// IsPacked reports whether fields are laid out without padding.
func (s StructType) IsPacked() bool {
	return engine.IsPackedStruct(s.handle("IsPacked"))
}

// IsOpaque reports whether s is an identified struct without a body.
func (s StructType) IsOpaque() bool {
	return engine.IsOpaqueStruct(s.handle("IsOpaque"))
}

// Name returns the identified struct's name, or "" for literal structs.
func (s StructType) Name() string {
	return engine.GetStructName(s.handle("Name"))
}

// ConstStruct is Type.ConstStruct on the general view.
func (s StructType) ConstStruct(values []Value) Value {
	return s.AsType().ConstStruct(values)
}
