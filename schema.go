package corestore

// schema.go implements schema declaration and validation.

import "fmt"

// FieldType identifies the primitive type of a field or list element.
type FieldType uint8

const (
	// FieldBool is a boolean.
	FieldBool FieldType = iota + 1
	// FieldInt8 is a signed 8-bit integer.
	FieldInt8
	// FieldInt16 is a signed 16-bit integer.
	FieldInt16
	// FieldInt32 is a signed 32-bit integer.
	FieldInt32
	// FieldInt64 is a signed 64-bit integer.
	FieldInt64
	// FieldByte is an unsigned 8-bit integer.
	FieldByte
	// FieldFloat is a 32-bit IEEE-754 float.
	FieldFloat
	// FieldDouble is a 64-bit IEEE-754 float.
	FieldDouble
	// FieldChar is a Unicode code point.
	FieldChar
	// FieldDate is a point in time, stored in UTC at nanosecond precision.
	FieldDate
	// FieldString is a UTF-8 string.
	FieldString
	// FieldData is an arbitrary byte sequence.
	FieldData
)

// String returns the type's schema name.
func (t FieldType) String() string {
	switch t {
	case FieldBool:
		return "bool"
	case FieldInt8:
		return "int8"
	case FieldInt16:
		return "int16"
	case FieldInt32:
		return "int32"
	case FieldInt64:
		return "int64"
	case FieldByte:
		return "byte"
	case FieldFloat:
		return "float"
	case FieldDouble:
		return "double"
	case FieldChar:
		return "char"
	case FieldDate:
		return "date"
	case FieldString:
		return "string"
	case FieldData:
		return "data"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// isInteger reports whether the type supports counter semantics.
func (t FieldType) isInteger() bool {
	switch t {
	case FieldInt8, FieldInt16, FieldInt32, FieldInt64, FieldByte:
		return true
	default:
		return false
	}
}

// FieldSchema declares one field of an object type.
type FieldSchema struct {
	// Name is the field name, unique within the object type.
	Name string

	// Type is the primitive type of the field, or of its elements when List
	// is set.
	Type FieldType

	// Nullable permits the null value (or null list elements).
	Nullable bool

	// Counter gives integer fields accumulate semantics: Increment adds to
	// the stored value instead of overwriting it. Indexed assignment still
	// sets the absolute value. Only valid on integer types.
	Counter bool

	// List makes the field an ordered list of Type-valued elements.
	List bool
}

// ObjectSchema declares one object type.
type ObjectSchema struct {
	Name   string
	Fields []FieldSchema
}

// Field returns the declaration of the named field, or nil.
func (os *ObjectSchema) Field(name string) *FieldSchema {
	for i := range os.Fields {
		if os.Fields[i].Name == name {
			return &os.Fields[i]
		}
	}
	return nil
}

// Schema is the set of object types a store holds.
type Schema struct {
	Objects []ObjectSchema
}

// Object returns the declaration of the named object type, or nil.
func (s *Schema) Object(name string) *ObjectSchema {
	for i := range s.Objects {
		if s.Objects[i].Name == name {
			return &s.Objects[i]
		}
	}
	return nil
}

// validate checks the schema for duplicate names and invalid flag
// combinations.
func (s *Schema) validate() error {
	seenTypes := make(map[string]bool, len(s.Objects))
	for i := range s.Objects {
		ot := &s.Objects[i]
		if ot.Name == "" {
			return fmt.Errorf("corestore: object type %d has no name", i)
		}
		if seenTypes[ot.Name] {
			return fmt.Errorf("corestore: duplicate object type %q", ot.Name)
		}
		seenTypes[ot.Name] = true

		seenFields := make(map[string]bool, len(ot.Fields))
		for j := range ot.Fields {
			f := &ot.Fields[j]
			if f.Name == "" {
				return fmt.Errorf("corestore: type %q field %d has no name", ot.Name, j)
			}
			if seenFields[f.Name] {
				return fmt.Errorf("corestore: type %q has duplicate field %q", ot.Name, f.Name)
			}
			seenFields[f.Name] = true
			if f.Type < FieldBool || f.Type > FieldData {
				return fmt.Errorf("corestore: type %q field %q has invalid type", ot.Name, f.Name)
			}
			if f.Counter && !f.Type.isInteger() {
				return fmt.Errorf("corestore: type %q field %q: counter requires an integer type", ot.Name, f.Name)
			}
		}
	}
	return nil
}
