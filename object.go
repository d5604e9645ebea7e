package corestore

// object.go implements live object handles.
//
// A managed handle holds the owning store handle plus the object's stable
// identity; it has no data of its own. Reads resolve against the store's
// current state (the active write transaction's overlay, when one exists),
// which is what gives two handles to the same object instant visibility of
// each other's uncommitted mutations. An unmanaged handle owns a private
// record until it is attached with Tx.Add.

import (
	"fmt"
	"sort"
)

// Object is a handle to one typed object, managed (store-resident) or
// unmanaged (in-memory, not yet attached).
type Object struct {
	store *Store // nil when unmanaged
	typ   string
	id    uint64

	// Unmanaged state.
	local  *record
	schema *ObjectSchema
}

// NewObject returns an unmanaged object of the given type. Its fields and
// lists can be freely mutated without a transaction until it is attached
// to a store with Tx.Add.
func NewObject(schema *ObjectSchema) *Object {
	return &Object{
		typ:    schema.Name,
		schema: schema,
		local: &record{
			fields: make(map[string]Value),
			lists:  make(map[string]*listState),
		},
	}
}

// Type returns the object's type name.
func (o *Object) Type() string { return o.typ }

// IsManaged reports whether the object is attached to a store.
func (o *Object) IsManaged() bool { return o.store != nil }

// IsValid reports whether the handle still refers to a live object.
// Unmanaged objects are always valid; a managed handle becomes invalid
// once the object is removed, as seen by the owning handle's snapshot.
func (o *Object) IsValid() bool {
	if o.store == nil {
		return true
	}
	return o.store.currentGen().lookup(o.typ, o.id) != nil
}

// Same reports identity equality: both handles refer to the same
// underlying stored object. Unmanaged handles are only the same as
// themselves.
func (o *Object) Same(other *Object) bool {
	if o == nil || other == nil {
		return false
	}
	if o.store == nil || other.store == nil {
		return o == other
	}
	return o.store.shared == other.store.shared && o.typ == other.typ && o.id == other.id
}

// Get returns the value of the named scalar field. A field that has never
// been written reads as the declared type's default: null when nullable,
// the zero value otherwise.
func (o *Object) Get(field string) (Value, error) {
	fs, err := o.fieldSchema(field)
	if err != nil {
		return Value{}, err
	}
	if fs != nil && fs.List {
		return Value{}, fmt.Errorf("%w: %q is a list field", ErrTypeMismatch, field)
	}

	rec, err := o.resolve()
	if err != nil {
		return Value{}, err
	}
	if v, ok := rec.fields[field]; ok {
		return v, nil
	}
	if fs == nil {
		return Value{}, nil
	}
	return defaultValue(fs), nil
}

// Set writes the named scalar field. Managed objects require an active
// write transaction on the owning handle.
func (o *Object) Set(field string, v Value) error {
	fs, err := o.fieldSchema(field)
	if err != nil {
		return err
	}
	if fs != nil {
		if fs.List {
			return fmt.Errorf("%w: %q is a list field", ErrTypeMismatch, field)
		}
		if !v.matchesField(fs) {
			return fmt.Errorf("%w: field %q is %s", ErrTypeMismatch, field, fs.Type)
		}
	}

	if o.store == nil {
		o.local.fields[field] = v
		return nil
	}
	tx := o.store.tx
	if tx == nil {
		return ErrOutsideTransaction
	}
	if tx.ws.gen.lookup(o.typ, o.id) == nil {
		return ErrInvalidated
	}
	return tx.push(op{kind: opSetField, typ: o.typ, id: o.id, field: field, val: v})
}

// Increment accumulates delta into a counter field. Unlike Set, concurrent
// increments from different commits merge additively rather than
// overwriting each other.
func (o *Object) Increment(field string, delta int64) error {
	fs, err := o.fieldSchema(field)
	if err != nil {
		return err
	}
	if fs == nil || !fs.Counter || fs.List {
		return fmt.Errorf("%w: %q is not a counter field", ErrTypeMismatch, field)
	}

	if o.store == nil {
		o.local.fields[field] = counterAdd(o.local.fields[field], delta, fs.Type)
		return nil
	}
	tx := o.store.tx
	if tx == nil {
		return ErrOutsideTransaction
	}
	if tx.ws.gen.lookup(o.typ, o.id) == nil {
		return ErrInvalidated
	}
	return tx.push(op{kind: opCounterAdd, typ: o.typ, id: o.id, field: field, delta: delta, vt: fs.Type})
}

// List returns a handle to the named list field.
func (o *Object) List(field string) (*List, error) {
	fs, err := o.fieldSchema(field)
	if err != nil {
		return nil, err
	}
	if fs != nil && !fs.List {
		return nil, fmt.Errorf("%w: %q is not a list field", ErrTypeMismatch, field)
	}
	return &List{owner: o, field: field, elem: fs}, nil
}

// Fields returns the sorted names of scalar fields that have been written
// on this object.
func (o *Object) Fields() ([]string, error) {
	rec, err := o.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rec.fields))
	for name := range rec.fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// ListFields returns the sorted names of list fields that have been
// written on this object.
func (o *Object) ListFields() ([]string, error) {
	rec, err := o.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rec.lists))
	for name := range rec.lists {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// resolve returns the record backing this handle as seen by the owning
// context's current state.
func (o *Object) resolve() (*record, error) {
	if o.store == nil {
		return o.local, nil
	}
	rec := o.store.currentGen().lookup(o.typ, o.id)
	if rec == nil {
		return nil, ErrInvalidated
	}
	return rec, nil
}

// fieldSchema returns the declaration of the named field. A nil, nil
// return means the handle has no schema to validate against.
func (o *Object) fieldSchema(name string) (*FieldSchema, error) {
	var os *ObjectSchema
	if o.store != nil {
		if o.store.cfg.Schema != nil {
			os = o.store.cfg.Schema.Object(o.typ)
		}
	} else {
		os = o.schema
	}
	if os == nil {
		return nil, nil
	}
	fs := os.Field(name)
	if fs == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, o.typ, name)
	}
	return fs, nil
}

// defaultValue is what an unwritten field reads as.
func defaultValue(fs *FieldSchema) Value {
	if fs.Nullable {
		return Null(fs.Type)
	}
	switch fs.Type {
	case FieldDate:
		return Date(unixEpoch)
	case FieldString:
		return String("")
	case FieldData:
		return Data(nil)
	default:
		return Value{kind: fs.Type}
	}
}

// currentGen is the state a handle reads through: the active write
// transaction's overlay when one exists, else the pinned read snapshot.
func (s *Store) currentGen() *generation {
	if s.tx != nil {
		return s.tx.ws.gen
	}
	return s.readGen
}
