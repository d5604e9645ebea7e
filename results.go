package corestore

// results.go implements lazy, snapshot-bound query sequences.
//
// A Results is pinned to the generation current when it was created:
// re-iterating re-scans that same snapshot and never observes a concurrent
// writer's in-progress changes. The handles it yields are live, so reading
// through them reflects the owning context's current state.

import "fmt"

// FilterOp is a comparison operator for Results.Filter.
type FilterOp int

const (
	// OpEqual matches values equal to the operand.
	OpEqual FilterOp = iota
	// OpNotEqual matches values not equal to the operand.
	OpNotEqual
	// OpLess matches values ordered before the operand.
	OpLess
	// OpLessEqual matches values ordered before or equal to the operand.
	OpLessEqual
	// OpGreater matches values ordered after the operand.
	OpGreater
	// OpGreaterEqual matches values ordered after or equal to the operand.
	OpGreaterEqual
)

type filter struct {
	field string
	op    FilterOp
	val   Value
}

// Results is a restartable sequence of the objects of one type, in
// creation order, optionally narrowed by filters.
type Results struct {
	store   *Store
	typ     string
	gen     *generation
	filters []filter
}

// All returns the objects of the named type as seen by this handle's
// current snapshot.
func (s *Store) All(typeName string) (*Results, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if err := s.checkType(typeName); err != nil {
		return nil, err
	}
	return &Results{store: s, typ: typeName, gen: s.currentGen()}, nil
}

// Filter returns a narrowed sequence keeping objects whose field compares
// to val under op. Comparisons follow each type's standard total order;
// float and double equality is bitwise.
func (r *Results) Filter(field string, op FilterOp, val Value) *Results {
	nr := &Results{
		store:   r.store,
		typ:     r.typ,
		gen:     r.gen,
		filters: append(append([]filter(nil), r.filters...), filter{field: field, op: op, val: val}),
	}
	return nr
}

// Count returns the number of matching objects.
func (r *Results) Count() int {
	return len(r.ids())
}

// Each calls fn for each matching object in order until fn returns false.
// Each may be called repeatedly; every pass re-scans the same snapshot.
func (r *Results) Each(fn func(*Object) bool) {
	for _, id := range r.ids() {
		if !fn(&Object{store: r.store, typ: r.typ, id: id}) {
			return
		}
	}
}

// First returns the first matching object, or nil if there are none.
func (r *Results) First() *Object {
	ids := r.ids()
	if len(ids) == 0 {
		return nil
	}
	return &Object{store: r.store, typ: r.typ, id: ids[0]}
}

// At returns the matching object at position i.
func (r *Results) At(i int) (*Object, error) {
	ids := r.ids()
	if i < 0 || i >= len(ids) {
		return nil, fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, len(ids))
	}
	return &Object{store: r.store, typ: r.typ, id: ids[i]}, nil
}

// ids materializes the matching object IDs from the pinned snapshot.
func (r *Results) ids() []uint64 {
	t := r.gen.tables[r.typ]
	if t == nil {
		return nil
	}
	if len(r.filters) == 0 {
		return t.order
	}
	var out []uint64
	for _, id := range t.order {
		if r.matches(t.objects[id]) {
			out = append(out, id)
		}
	}
	return out
}

func (r *Results) matches(rec *record) bool {
	for _, f := range r.filters {
		v, ok := rec.fields[f.field]
		if !ok {
			if fs := r.fieldDecl(f.field); fs != nil {
				v = defaultValue(fs)
			}
		}
		switch f.op {
		case OpEqual:
			if !v.Equal(f.val) {
				return false
			}
		case OpNotEqual:
			if v.Equal(f.val) {
				return false
			}
		case OpLess:
			if v.Compare(f.val) >= 0 {
				return false
			}
		case OpLessEqual:
			if v.Compare(f.val) > 0 {
				return false
			}
		case OpGreater:
			if v.Compare(f.val) <= 0 {
				return false
			}
		case OpGreaterEqual:
			if v.Compare(f.val) < 0 {
				return false
			}
		}
	}
	return true
}

func (r *Results) fieldDecl(name string) *FieldSchema {
	if r.store.cfg.Schema == nil {
		return nil
	}
	os := r.store.cfg.Schema.Object(r.typ)
	if os == nil {
		return nil
	}
	return os.Field(name)
}
