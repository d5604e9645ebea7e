package corestore

// value.go implements the tagged value union stored in fields and lists.

import (
	"bytes"
	"math"
	"time"
)

// unixEpoch is the default for non-nullable date fields.
var unixEpoch = time.Unix(0, 0).UTC()

// Value is one typed field or list element value. The zero Value is invalid;
// construct values with the typed constructors or Null.
type Value struct {
	kind FieldType
	null bool

	b bool
	i int64 // integer types, byte, char
	f float64
	t time.Time
	s string
	d []byte
}

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: FieldBool, b: v} }

// Int8 returns a signed 8-bit integer value.
func Int8(v int8) Value { return Value{kind: FieldInt8, i: int64(v)} }

// Int16 returns a signed 16-bit integer value.
func Int16(v int16) Value { return Value{kind: FieldInt16, i: int64(v)} }

// Int32 returns a signed 32-bit integer value.
func Int32(v int32) Value { return Value{kind: FieldInt32, i: int64(v)} }

// Int64 returns a signed 64-bit integer value.
func Int64(v int64) Value { return Value{kind: FieldInt64, i: v} }

// Byte returns an unsigned 8-bit integer value.
func Byte(v uint8) Value { return Value{kind: FieldByte, i: int64(v)} }

// Float returns a 32-bit float value.
func Float(v float32) Value { return Value{kind: FieldFloat, f: float64(v)} }

// Double returns a 64-bit float value.
func Double(v float64) Value { return Value{kind: FieldDouble, f: v} }

// Char returns a Unicode code point value.
func Char(v rune) Value { return Value{kind: FieldChar, i: int64(v)} }

// Date returns a point-in-time value, normalized to UTC.
func Date(v time.Time) Value { return Value{kind: FieldDate, t: v.UTC()} }

// String returns a string value.
func String(v string) Value { return Value{kind: FieldString, s: v} }

// Data returns a byte-sequence value. The slice is copied.
func Data(v []byte) Value {
	return Value{kind: FieldData, d: bytes.Clone(v)}
}

// Null returns the null value of the given type.
func Null(t FieldType) Value { return Value{kind: t, null: true} }

// Type returns the value's primitive type.
func (v Value) Type() FieldType { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.null }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the integer payload, widened to int64. Valid for the
// integer types, byte, and char.
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the 32-bit float payload.
func (v Value) AsFloat() float32 { return float32(v.f) }

// AsDouble returns the 64-bit float payload.
func (v Value) AsDouble() float64 { return v.f }

// AsChar returns the code point payload.
func (v Value) AsChar() rune { return rune(v.i) }

// AsDate returns the point-in-time payload.
func (v Value) AsDate() time.Time { return v.t }

// AsString returns the string payload.
func (v Value) AsString() string { return v.s }

// AsData returns the byte-sequence payload. Callers must not mutate it.
func (v Value) AsData() []byte { return v.d }

// Interface returns the payload as a plain Go value: bool, int64,
// float32, float64, rune, time.Time, string, or []byte. Null values
// return nil.
func (v Value) Interface() any {
	if v.null {
		return nil
	}
	switch v.kind {
	case FieldBool:
		return v.b
	case FieldInt8, FieldInt16, FieldInt32, FieldInt64, FieldByte:
		return v.i
	case FieldChar:
		return rune(v.i)
	case FieldFloat:
		return float32(v.f)
	case FieldDouble:
		return v.f
	case FieldDate:
		return v.t
	case FieldString:
		return v.s
	case FieldData:
		return v.d
	default:
		return nil
	}
}

// Equal reports value equality. Floats compare by their IEEE-754 bits, so a
// stored value equals exactly what was written, with no tolerance window.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.null != o.null {
		return false
	}
	if v.null {
		return true
	}
	switch v.kind {
	case FieldBool:
		return v.b == o.b
	case FieldInt8, FieldInt16, FieldInt32, FieldInt64, FieldByte, FieldChar:
		return v.i == o.i
	case FieldFloat:
		return math.Float32bits(float32(v.f)) == math.Float32bits(float32(o.f))
	case FieldDouble:
		return math.Float64bits(v.f) == math.Float64bits(o.f)
	case FieldDate:
		return v.t.Equal(o.t)
	case FieldString:
		return v.s == o.s
	case FieldData:
		return bytes.Equal(v.d, o.d)
	default:
		return false
	}
}

// Compare orders two values of the same type: -1, 0, or +1. Null orders
// before every non-null value. Booleans order false before true; all other
// types follow their standard total order.
func (v Value) Compare(o Value) int {
	if v.null || o.null {
		switch {
		case v.null && o.null:
			return 0
		case v.null:
			return -1
		default:
			return 1
		}
	}
	switch v.kind {
	case FieldBool:
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		default:
			return 1
		}
	case FieldInt8, FieldInt16, FieldInt32, FieldInt64, FieldByte, FieldChar:
		return cmpOrdered(v.i, o.i)
	case FieldFloat, FieldDouble:
		return cmpOrdered(v.f, o.f)
	case FieldDate:
		return v.t.Compare(o.t)
	case FieldString:
		return cmpOrdered(v.s, o.s)
	case FieldData:
		return bytes.Compare(v.d, o.d)
	default:
		return 0
	}
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// matchesField reports whether the value is assignable to the field
// declaration: the types match and null is only used on nullable fields.
func (v Value) matchesField(f *FieldSchema) bool {
	if v.kind != f.Type {
		return false
	}
	if v.null && !f.Nullable {
		return false
	}
	return true
}
