package corestore

// threadref.go implements cross-context handoff references.
//
// Live handles are bound to one store handle and must not cross execution
// contexts. A ThreadSafeReference captures an entity's identity plus the
// version it was captured at; resolving it against another context's
// handle re-binds to that context's own snapshot, advancing it if it has
// not yet seen the capture version.

import "sync/atomic"

// ThreadSafeReference is a single-use capability for transferring a
// reference to a store entity across execution contexts. Resolving it a
// second time fails with ErrReferenceConsumed; the consumed state flips
// atomically, so concurrent resolvers race for one success.
type ThreadSafeReference struct {
	path    string
	version uint64
	typ     string
	id      uint64
	field   string // non-empty for list references
	list    bool

	consumed atomic.Bool
}

// NewObjectReference captures a reference to a managed object.
func NewObjectReference(o *Object) (*ThreadSafeReference, error) {
	if o == nil {
		return nil, ErrNilObject
	}
	if o.store == nil {
		return nil, ErrUnmanaged
	}
	return &ThreadSafeReference{
		path:    o.store.shared.path,
		version: o.store.currentGen().version,
		typ:     o.typ,
		id:      o.id,
	}, nil
}

// NewListReference captures a reference to a managed list.
func NewListReference(l *List) (*ThreadSafeReference, error) {
	if l == nil {
		return nil, ErrNilObject
	}
	if l.owner.store == nil {
		return nil, ErrUnmanaged
	}
	return &ThreadSafeReference{
		path:    l.owner.store.shared.path,
		version: l.owner.store.currentGen().version,
		typ:     l.owner.typ,
		id:      l.owner.id,
		field:   l.field,
		list:    true,
	}, nil
}

// ResolveObject re-binds a captured object reference to this handle,
// refreshing it if its snapshot predates the capture. A nil, nil return
// means the object has since been removed; that is a legitimate concurrent
// outcome, not an error.
func (s *Store) ResolveObject(ref *ThreadSafeReference) (*Object, error) {
	if err := s.resolveCommon(ref, false); err != nil {
		return nil, err
	}
	if s.currentGen().lookup(ref.typ, ref.id) == nil {
		return nil, nil
	}
	return &Object{store: s, typ: ref.typ, id: ref.id}, nil
}

// ResolveList re-binds a captured list reference to this handle. A nil,
// nil return means the owning object has since been removed.
func (s *Store) ResolveList(ref *ThreadSafeReference) (*List, error) {
	if err := s.resolveCommon(ref, true); err != nil {
		return nil, err
	}
	if s.currentGen().lookup(ref.typ, ref.id) == nil {
		return nil, nil
	}
	obj := &Object{store: s, typ: ref.typ, id: ref.id}
	return obj.List(ref.field)
}

func (s *Store) resolveCommon(ref *ThreadSafeReference, wantList bool) error {
	if s.closed {
		return ErrClosed
	}
	if ref == nil {
		return ErrNilObject
	}
	if ref.path != s.shared.path {
		return ErrForeignStore
	}
	if ref.list != wantList {
		return ErrTypeMismatch
	}
	if !ref.consumed.CompareAndSwap(false, true) {
		return ErrReferenceConsumed
	}
	if s.currentGen().version < ref.version {
		return s.Refresh()
	}
	return nil
}
