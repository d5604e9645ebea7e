package corestore

// list.go implements ordered list fields.
//
// A List is a handle bound to one field of one object; like Object handles
// it holds no element data itself. Unmanaged lists (fields of an unmanaged
// object) mutate freely; once the owner is attached, every mutation
// requires an active write transaction on the owning handle and fails with
// ErrOutsideTransaction otherwise. Index arguments outside the valid bounds
// fail with ErrIndexOutOfRange and leave the list untouched.

import "fmt"

// List is a handle to an ordered list field of primitive values.
type List struct {
	owner *Object
	field string
	elem  *FieldSchema // nil when the handle has no schema to validate against
}

// Len returns the number of elements.
func (l *List) Len() (int, error) {
	ls, err := l.state()
	if err != nil {
		return 0, err
	}
	return len(ls.vals), nil
}

// Get returns the element at index i.
func (l *List) Get(i int) (Value, error) {
	ls, err := l.state()
	if err != nil {
		return Value{}, err
	}
	if i < 0 || i >= len(ls.vals) {
		return Value{}, fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, len(ls.vals))
	}
	return ls.vals[i], nil
}

// Values returns a copy of the elements in order.
func (l *List) Values() ([]Value, error) {
	ls, err := l.state()
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(ls.vals))
	copy(out, ls.vals)
	return out, nil
}

// IndexOf returns the index of the first element equal to v, or -1.
func (l *List) IndexOf(v Value) (int, error) {
	ls, err := l.state()
	if err != nil {
		return -1, err
	}
	for i := range ls.vals {
		if ls.vals[i].Equal(v) {
			return i, nil
		}
	}
	return -1, nil
}

// Add appends v.
func (l *List) Add(v Value) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	return l.Insert(n, v)
}

// Insert places v at index i, shifting later elements. Valid indices are
// [0, Len].
func (l *List) Insert(i int, v Value) error {
	if err := l.checkElem(v); err != nil {
		return err
	}
	tx, err := l.beginMutate()
	if err != nil {
		return err
	}
	if tx == nil {
		ls := l.unmanagedState()
		if i < 0 || i > len(ls.vals) {
			return fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, len(ls.vals))
		}
		ls.ids = append(ls.ids[:i], append([]uint64{0}, ls.ids[i:]...)...)
		ls.vals = append(ls.vals[:i], append([]Value{v}, ls.vals[i:]...)...)
		return nil
	}

	n := l.managedLen(tx)
	if i < 0 || i > n {
		return fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, n)
	}
	o := op{
		kind:  opListInsert,
		typ:   l.owner.typ,
		id:    l.owner.id,
		field: l.field,
		index: i,
		slot:  tx.ws.allocID(),
		val:   v,
	}
	return tx.push(o)
}

// Set overwrites the element at index i. The slot keeps its identity, so
// subscribers see a modification, not a delete+insert. On counter lists
// Set stores the absolute value, exactly as on the plain variant.
func (l *List) Set(i int, v Value) error {
	if err := l.checkElem(v); err != nil {
		return err
	}
	tx, err := l.beginMutate()
	if err != nil {
		return err
	}
	if tx == nil {
		ls := l.unmanagedState()
		if i < 0 || i >= len(ls.vals) {
			return fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, len(ls.vals))
		}
		ls.vals[i] = v
		return nil
	}

	if n := l.managedLen(tx); i < 0 || i >= n {
		return fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, n)
	}
	return tx.push(op{kind: opListSet, typ: l.owner.typ, id: l.owner.id, field: l.field, index: i, val: v})
}

// RemoveAt deletes the element at index i.
func (l *List) RemoveAt(i int) error {
	tx, err := l.beginMutate()
	if err != nil {
		return err
	}
	if tx == nil {
		ls := l.unmanagedState()
		if i < 0 || i >= len(ls.vals) {
			return fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, len(ls.vals))
		}
		ls.ids = append(ls.ids[:i], ls.ids[i+1:]...)
		ls.vals = append(ls.vals[:i], ls.vals[i+1:]...)
		return nil
	}

	if n := l.managedLen(tx); i < 0 || i >= n {
		return fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, n)
	}
	return tx.push(op{kind: opListRemoveAt, typ: l.owner.typ, id: l.owner.id, field: l.field, index: i})
}

// Remove deletes the first element equal to v. Removing an absent value is
// a no-op, not an error.
func (l *List) Remove(v Value) error {
	if _, err := l.beginMutate(); err != nil {
		return err
	}
	i, err := l.IndexOf(v)
	if err != nil {
		return err
	}
	if i < 0 {
		return nil
	}
	return l.RemoveAt(i)
}

// Move relocates the element at from to index to, preserving Len.
// Subscribers see a single move record, not a delete+insert pair.
func (l *List) Move(from, to int) error {
	tx, err := l.beginMutate()
	if err != nil {
		return err
	}
	if tx == nil {
		ls := l.unmanagedState()
		if from < 0 || from >= len(ls.vals) || to < 0 || to >= len(ls.vals) {
			return fmt.Errorf("%w: move %d -> %d, len %d", ErrIndexOutOfRange, from, to, len(ls.vals))
		}
		v := ls.vals[from]
		ls.vals = append(ls.vals[:from], ls.vals[from+1:]...)
		ls.vals = append(ls.vals[:to], append([]Value{v}, ls.vals[to:]...)...)
		return nil
	}

	if n := l.managedLen(tx); from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d, len %d", ErrIndexOutOfRange, from, to, n)
	}
	return tx.push(op{kind: opListMove, typ: l.owner.typ, id: l.owner.id, field: l.field, index: from, to: to})
}

// Clear removes every element. Clearing an empty list is a no-op.
func (l *List) Clear() error {
	tx, err := l.beginMutate()
	if err != nil {
		return err
	}
	if tx == nil {
		ls := l.unmanagedState()
		ls.ids = nil
		ls.vals = nil
		return nil
	}
	return tx.push(op{kind: opListClear, typ: l.owner.typ, id: l.owner.id, field: l.field})
}

// Increment accumulates delta into the counter element at index i.
func (l *List) Increment(i int, delta int64) error {
	if l.elem == nil || !l.elem.Counter {
		return fmt.Errorf("%w: %q is not a counter list", ErrTypeMismatch, l.field)
	}
	tx, err := l.beginMutate()
	if err != nil {
		return err
	}
	if tx == nil {
		ls := l.unmanagedState()
		if i < 0 || i >= len(ls.vals) {
			return fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, len(ls.vals))
		}
		ls.vals[i] = counterAdd(ls.vals[i], delta, l.elem.Type)
		return nil
	}

	if n := l.managedLen(tx); i < 0 || i >= n {
		return fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, n)
	}
	o := op{
		kind:  opListCounterAdd,
		typ:   l.owner.typ,
		id:    l.owner.id,
		field: l.field,
		index: i,
		delta: delta,
		vt:    l.elem.Type,
	}
	return tx.push(o)
}

// state resolves the list's current contents through the owning context.
func (l *List) state() (*listState, error) {
	rec, err := l.owner.resolve()
	if err != nil {
		return nil, err
	}
	ls := rec.lists[l.field]
	if ls == nil {
		return &listState{}, nil
	}
	return ls, nil
}

// beginMutate gates a mutation: (nil, nil) means the list is unmanaged and
// the caller mutates local state directly; otherwise the active write
// transaction is returned.
func (l *List) beginMutate() (*Tx, error) {
	if l.owner.store == nil {
		return nil, nil
	}
	tx := l.owner.store.tx
	if tx == nil {
		return nil, ErrOutsideTransaction
	}
	if tx.ws.gen.lookup(l.owner.typ, l.owner.id) == nil {
		return nil, ErrInvalidated
	}
	return tx, nil
}

// unmanagedState returns the local mutable list state, creating it on
// first use.
func (l *List) unmanagedState() *listState {
	ls := l.owner.local.lists[l.field]
	if ls == nil {
		ls = &listState{}
		l.owner.local.lists[l.field] = ls
	}
	return ls
}

// managedLen is the list length inside the transaction overlay.
func (l *List) managedLen(tx *Tx) int {
	rec := tx.ws.gen.lookup(l.owner.typ, l.owner.id)
	if rec == nil {
		return 0
	}
	if ls := rec.lists[l.field]; ls != nil {
		return len(ls.vals)
	}
	return 0
}

// checkElem validates an element value against the declared element type.
func (l *List) checkElem(v Value) error {
	if l.elem == nil {
		return nil
	}
	if v.kind != l.elem.Type || (v.null && !l.elem.Nullable) {
		return fmt.Errorf("%w: list %q holds %s", ErrTypeMismatch, l.field, l.elem.Type)
	}
	return nil
}
