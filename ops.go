package corestore

// ops.go implements the logical operation log that makes up a journal
// frame's payload, and its application to a working state.
//
// Object and slot IDs are allocated by the writer and recorded explicitly
// in each op, so replaying a frame in any process reconstructs an identical
// generation.

import (
	"fmt"
	"time"

	"github.com/aalhour/corestore/internal/encoding"
)

type opKind uint8

// Op kind values are embedded in the on-disk format and MUST NOT change.
const (
	opCreate opKind = iota + 1
	opSetField
	opRemoveObject
	opListInsert
	opListSet
	opListRemoveAt
	opListMove
	opListClear
	opCounterAdd
	opListCounterAdd
	opSetSchemaVersion
)

// op is one logical mutation. Field usage varies by kind; unused fields are
// zero.
type op struct {
	kind  opKind
	typ   string
	id    uint64
	field string
	index int
	to    int    // opListMove destination
	slot  uint64    // opListInsert slot ID
	delta int64     // counter ops
	vt    FieldType // counter ops: declared integer type
	ver   uint64    // opSetSchemaVersion
	val   Value
}

// -----------------------------------------------------------------------------
// Encoding
// -----------------------------------------------------------------------------

// encodeOps serializes a frame payload.
func encodeOps(ops []op) []byte {
	var dst []byte
	dst = encoding.PutUvarint(dst, uint64(len(ops)))
	for i := range ops {
		o := &ops[i]
		dst = append(dst, byte(o.kind))
		switch o.kind {
		case opCreate:
			dst = encoding.PutString(dst, o.typ)
			dst = encoding.PutUvarint(dst, o.id)
		case opSetField:
			dst = encoding.PutString(dst, o.typ)
			dst = encoding.PutUvarint(dst, o.id)
			dst = encoding.PutString(dst, o.field)
			dst = encodeValue(dst, o.val)
		case opRemoveObject:
			dst = encoding.PutString(dst, o.typ)
			dst = encoding.PutUvarint(dst, o.id)
		case opListInsert:
			dst = encoding.PutString(dst, o.typ)
			dst = encoding.PutUvarint(dst, o.id)
			dst = encoding.PutString(dst, o.field)
			dst = encoding.PutUvarint(dst, uint64(o.index))
			dst = encoding.PutUvarint(dst, o.slot)
			dst = encodeValue(dst, o.val)
		case opListSet:
			dst = encoding.PutString(dst, o.typ)
			dst = encoding.PutUvarint(dst, o.id)
			dst = encoding.PutString(dst, o.field)
			dst = encoding.PutUvarint(dst, uint64(o.index))
			dst = encodeValue(dst, o.val)
		case opListRemoveAt:
			dst = encoding.PutString(dst, o.typ)
			dst = encoding.PutUvarint(dst, o.id)
			dst = encoding.PutString(dst, o.field)
			dst = encoding.PutUvarint(dst, uint64(o.index))
		case opListMove:
			dst = encoding.PutString(dst, o.typ)
			dst = encoding.PutUvarint(dst, o.id)
			dst = encoding.PutString(dst, o.field)
			dst = encoding.PutUvarint(dst, uint64(o.index))
			dst = encoding.PutUvarint(dst, uint64(o.to))
		case opListClear:
			dst = encoding.PutString(dst, o.typ)
			dst = encoding.PutUvarint(dst, o.id)
			dst = encoding.PutString(dst, o.field)
		case opCounterAdd:
			dst = encoding.PutString(dst, o.typ)
			dst = encoding.PutUvarint(dst, o.id)
			dst = encoding.PutString(dst, o.field)
			dst = append(dst, byte(o.vt))
			dst = encoding.PutVarint(dst, o.delta)
		case opListCounterAdd:
			dst = encoding.PutString(dst, o.typ)
			dst = encoding.PutUvarint(dst, o.id)
			dst = encoding.PutString(dst, o.field)
			dst = encoding.PutUvarint(dst, uint64(o.index))
			dst = append(dst, byte(o.vt))
			dst = encoding.PutVarint(dst, o.delta)
		case opSetSchemaVersion:
			dst = encoding.PutUvarint(dst, o.ver)
		}
	}
	return dst
}

// decodeOps parses a frame payload.
func decodeOps(src []byte) ([]op, error) {
	n, src, err := encoding.Uvarint(src)
	if err != nil {
		return nil, err
	}
	ops := make([]op, 0, n)
	for k := uint64(0); k < n; k++ {
		if len(src) == 0 {
			return nil, encoding.ErrBufferTooSmall
		}
		o := op{kind: opKind(src[0])}
		src = src[1:]
		switch o.kind {
		case opCreate, opRemoveObject:
			if o.typ, src, err = encoding.String(src); err != nil {
				return nil, err
			}
			if o.id, src, err = encoding.Uvarint(src); err != nil {
				return nil, err
			}
		case opSetField:
			if src, err = decodeTarget(&o, src); err != nil {
				return nil, err
			}
			if o.val, src, err = decodeValue(src); err != nil {
				return nil, err
			}
		case opListInsert:
			if src, err = decodeTarget(&o, src); err != nil {
				return nil, err
			}
			if src, err = decodeIndex(&o.index, src); err != nil {
				return nil, err
			}
			if o.slot, src, err = encoding.Uvarint(src); err != nil {
				return nil, err
			}
			if o.val, src, err = decodeValue(src); err != nil {
				return nil, err
			}
		case opListSet:
			if src, err = decodeTarget(&o, src); err != nil {
				return nil, err
			}
			if src, err = decodeIndex(&o.index, src); err != nil {
				return nil, err
			}
			if o.val, src, err = decodeValue(src); err != nil {
				return nil, err
			}
		case opListRemoveAt:
			if src, err = decodeTarget(&o, src); err != nil {
				return nil, err
			}
			if src, err = decodeIndex(&o.index, src); err != nil {
				return nil, err
			}
		case opListMove:
			if src, err = decodeTarget(&o, src); err != nil {
				return nil, err
			}
			if src, err = decodeIndex(&o.index, src); err != nil {
				return nil, err
			}
			if src, err = decodeIndex(&o.to, src); err != nil {
				return nil, err
			}
		case opListClear:
			if src, err = decodeTarget(&o, src); err != nil {
				return nil, err
			}
		case opCounterAdd:
			if src, err = decodeTarget(&o, src); err != nil {
				return nil, err
			}
			if len(src) < 1 {
				return nil, encoding.ErrBufferTooSmall
			}
			o.vt = FieldType(src[0])
			src = src[1:]
			if o.delta, src, err = encoding.Varint(src); err != nil {
				return nil, err
			}
		case opListCounterAdd:
			if src, err = decodeTarget(&o, src); err != nil {
				return nil, err
			}
			if src, err = decodeIndex(&o.index, src); err != nil {
				return nil, err
			}
			if len(src) < 1 {
				return nil, encoding.ErrBufferTooSmall
			}
			o.vt = FieldType(src[0])
			src = src[1:]
			if o.delta, src, err = encoding.Varint(src); err != nil {
				return nil, err
			}
		case opSetSchemaVersion:
			if o.ver, src, err = encoding.Uvarint(src); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("corestore: unknown op kind %d", o.kind)
		}
		ops = append(ops, o)
	}
	return ops, nil
}

func decodeTarget(o *op, src []byte) ([]byte, error) {
	var err error
	if o.typ, src, err = encoding.String(src); err != nil {
		return nil, err
	}
	if o.id, src, err = encoding.Uvarint(src); err != nil {
		return nil, err
	}
	if o.field, src, err = encoding.String(src); err != nil {
		return nil, err
	}
	return src, nil
}

func decodeIndex(dst *int, src []byte) ([]byte, error) {
	v, src, err := encoding.Uvarint(src)
	if err != nil {
		return nil, err
	}
	*dst = int(v)
	return src, nil
}

// -----------------------------------------------------------------------------
// Value encoding
// -----------------------------------------------------------------------------

func encodeValue(dst []byte, v Value) []byte {
	dst = append(dst, byte(v.kind))
	if v.null {
		return append(dst, 1)
	}
	dst = append(dst, 0)
	switch v.kind {
	case FieldBool:
		if v.b {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	case FieldInt8, FieldInt16, FieldInt32, FieldInt64, FieldByte, FieldChar:
		dst = encoding.PutVarint(dst, v.i)
	case FieldFloat, FieldDouble:
		dst = encoding.PutFloat64(dst, v.f)
	case FieldDate:
		dst = encoding.PutVarint(dst, v.t.Unix())
		dst = encoding.PutUvarint(dst, uint64(v.t.Nanosecond()))
	case FieldString:
		dst = encoding.PutString(dst, v.s)
	case FieldData:
		dst = encoding.PutBytes(dst, v.d)
	}
	return dst
}

func decodeValue(src []byte) (Value, []byte, error) {
	if len(src) < 2 {
		return Value{}, nil, encoding.ErrBufferTooSmall
	}
	v := Value{kind: FieldType(src[0]), null: src[1] == 1}
	src = src[2:]
	if v.null {
		return v, src, nil
	}
	var err error
	switch v.kind {
	case FieldBool:
		if len(src) < 1 {
			return Value{}, nil, encoding.ErrBufferTooSmall
		}
		v.b = src[0] == 1
		src = src[1:]
	case FieldInt8, FieldInt16, FieldInt32, FieldInt64, FieldByte, FieldChar:
		if v.i, src, err = encoding.Varint(src); err != nil {
			return Value{}, nil, err
		}
	case FieldFloat, FieldDouble:
		if v.f, src, err = encoding.Float64(src); err != nil {
			return Value{}, nil, err
		}
	case FieldDate:
		var sec int64
		var nsec uint64
		if sec, src, err = encoding.Varint(src); err != nil {
			return Value{}, nil, err
		}
		if nsec, src, err = encoding.Uvarint(src); err != nil {
			return Value{}, nil, err
		}
		v.t = time.Unix(sec, int64(nsec)).UTC()
	case FieldString:
		if v.s, src, err = encoding.String(src); err != nil {
			return Value{}, nil, err
		}
	case FieldData:
		var b []byte
		if b, src, err = encoding.Bytes(src); err != nil {
			return Value{}, nil, err
		}
		v.d = append([]byte(nil), b...)
	default:
		return Value{}, nil, fmt.Errorf("corestore: unknown value type %d", v.kind)
	}
	return v, src, nil
}

// -----------------------------------------------------------------------------
// Application
// -----------------------------------------------------------------------------

// apply mutates the working state with one op. Mutation APIs validate
// before calling apply; replay trusts the journal, so structural
// impossibilities here indicate corruption and are reported as errors.
func (ws *workingState) apply(o *op) error {
	switch o.kind {
	case opCreate:
		t := ws.mutableTable(o.typ)
		if _, exists := t.objects[o.id]; exists {
			return fmt.Errorf("corestore: replay: duplicate object %s/%d", o.typ, o.id)
		}
		t.objects[o.id] = &record{
			id:     o.id,
			typ:    o.typ,
			fields: make(map[string]Value),
			lists:  make(map[string]*listState),
		}
		t.order = append(t.order, o.id)
		if o.id >= ws.gen.nextID {
			ws.gen.nextID = o.id + 1
		}

	case opSetField:
		rec := ws.mutableRecord(o.typ, o.id)
		if rec == nil {
			return fmt.Errorf("corestore: replay: set on missing object %s/%d", o.typ, o.id)
		}
		rec.fields[o.field] = o.val

	case opRemoveObject:
		t := ws.mutableTable(o.typ)
		if _, exists := t.objects[o.id]; !exists {
			return fmt.Errorf("corestore: replay: remove of missing object %s/%d", o.typ, o.id)
		}
		delete(t.objects, o.id)
		for i, id := range t.order {
			if id == o.id {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}

	case opListInsert:
		ls := ws.mutableList(o.typ, o.id, o.field)
		if ls == nil {
			return fmt.Errorf("corestore: replay: list op on missing object %s/%d", o.typ, o.id)
		}
		if o.index < 0 || o.index > len(ls.ids) {
			return fmt.Errorf("corestore: replay: list insert index %d out of range", o.index)
		}
		ls.ids = append(ls.ids[:o.index], append([]uint64{o.slot}, ls.ids[o.index:]...)...)
		ls.vals = append(ls.vals[:o.index], append([]Value{o.val}, ls.vals[o.index:]...)...)
		if o.slot >= ws.gen.nextID {
			ws.gen.nextID = o.slot + 1
		}

	case opListSet:
		ls := ws.mutableList(o.typ, o.id, o.field)
		if ls == nil || o.index < 0 || o.index >= len(ls.ids) {
			return fmt.Errorf("corestore: replay: list set out of range")
		}
		ls.vals[o.index] = o.val

	case opListRemoveAt:
		ls := ws.mutableList(o.typ, o.id, o.field)
		if ls == nil || o.index < 0 || o.index >= len(ls.ids) {
			return fmt.Errorf("corestore: replay: list remove out of range")
		}
		ls.ids = append(ls.ids[:o.index], ls.ids[o.index+1:]...)
		ls.vals = append(ls.vals[:o.index], ls.vals[o.index+1:]...)

	case opListMove:
		ls := ws.mutableList(o.typ, o.id, o.field)
		if ls == nil || o.index < 0 || o.index >= len(ls.ids) || o.to < 0 || o.to >= len(ls.ids) {
			return fmt.Errorf("corestore: replay: list move out of range")
		}
		id := ls.ids[o.index]
		val := ls.vals[o.index]
		ls.ids = append(ls.ids[:o.index], ls.ids[o.index+1:]...)
		ls.vals = append(ls.vals[:o.index], ls.vals[o.index+1:]...)
		ls.ids = append(ls.ids[:o.to], append([]uint64{id}, ls.ids[o.to:]...)...)
		ls.vals = append(ls.vals[:o.to], append([]Value{val}, ls.vals[o.to:]...)...)

	case opListClear:
		ls := ws.mutableList(o.typ, o.id, o.field)
		if ls == nil {
			return fmt.Errorf("corestore: replay: list clear on missing object %s/%d", o.typ, o.id)
		}
		ls.ids = nil
		ls.vals = nil

	case opCounterAdd:
		rec := ws.mutableRecord(o.typ, o.id)
		if rec == nil {
			return fmt.Errorf("corestore: replay: counter add on missing object %s/%d", o.typ, o.id)
		}
		rec.fields[o.field] = counterAdd(rec.fields[o.field], o.delta, o.vt)

	case opListCounterAdd:
		ls := ws.mutableList(o.typ, o.id, o.field)
		if ls == nil || o.index < 0 || o.index >= len(ls.ids) {
			return fmt.Errorf("corestore: replay: list counter add out of range")
		}
		ls.vals[o.index] = counterAdd(ls.vals[o.index], o.delta, o.vt)

	case opSetSchemaVersion:
		ws.gen.schemaVersion = o.ver

	default:
		return fmt.Errorf("corestore: unknown op kind %d", o.kind)
	}
	return nil
}

// counterAdd accumulates delta into an integer value. Incrementing a null
// or never-written counter treats it as zero of the declared type.
func counterAdd(v Value, delta int64, vt FieldType) Value {
	if v.kind == 0 {
		v.kind = vt
	}
	if v.null {
		v.null = false
		v.i = 0
	}
	v.i += delta
	return v
}
