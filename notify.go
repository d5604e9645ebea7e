package corestore

// notify.go implements change subscriptions and delivery.
//
// Subscriptions are scoped to one Store handle; there is no global
// registry and no background dispatch thread. Delivery happens
// synchronously whenever the handle's snapshot advances (Refresh,
// BeginWrite's implicit refresh, or the handle's own Commit), and each
// delivery carries exactly one change set per subscription covering the
// whole version range crossed — the edit script between the two
// snapshots, not a replay of the writer's actions.

import (
	"sort"

	"github.com/aalhour/corestore/internal/diff"
)

// Move records a list element relocation within one change set. For
// adjacent slots the reported orientation may be either {a,b} or {b,a};
// consumers must treat the two as equivalent.
type Move struct {
	From int
	To   int
}

// ChangeSet is the minimal edit script between two observed versions of a
// collection. Deletions index the old version, Insertions and
// Modifications the new one. Index slices are sorted ascending.
type ChangeSet struct {
	Insertions    []int
	Deletions     []int
	Modifications []int
	Moves         []Move
}

// ObjectChange describes what happened to a subscribed object between two
// observed versions.
type ObjectChange struct {
	// Deleted is set when the object was removed; Fields is empty then.
	Deleted bool

	// Fields names the scalar and list fields whose values changed, sorted.
	Fields []string
}

// Token represents an active subscription. Closing it deregisters the
// callback; no invocation happens after Close returns.
type Token struct {
	store *Store
	id    uint64
}

// Close cancels the subscription. Idempotent.
func (t *Token) Close() {
	delete(t.store.subs.lists, t.id)
	delete(t.store.subs.objects, t.id)
	delete(t.store.subs.results, t.id)
}

type listSub struct {
	typ   string
	objID uint64
	field string
	fn    func(ChangeSet)
}

type objectSub struct {
	typ   string
	objID uint64
	fn    func(ObjectChange)
}

type resultsSub struct {
	typ string
	fn  func(ChangeSet)
}

// subscriberSet holds one handle's registrations.
type subscriberSet struct {
	nextID  uint64
	lists   map[uint64]*listSub
	objects map[uint64]*objectSub
	results map[uint64]*resultsSub
}

func (ss *subscriberSet) alloc() uint64 {
	if ss.lists == nil {
		ss.lists = make(map[uint64]*listSub)
		ss.objects = make(map[uint64]*objectSub)
		ss.results = make(map[uint64]*resultsSub)
	}
	ss.nextID++
	return ss.nextID
}

// Subscribe registers a callback for changes to this list. The owning
// object must be managed.
func (l *List) Subscribe(fn func(ChangeSet)) (*Token, error) {
	if l.owner.store == nil {
		return nil, ErrUnmanaged
	}
	s := l.owner.store
	if s.closed {
		return nil, ErrClosed
	}
	id := s.subs.alloc()
	s.subs.lists[id] = &listSub{typ: l.owner.typ, objID: l.owner.id, field: l.field, fn: fn}
	return &Token{store: s, id: id}, nil
}

// Subscribe registers a callback for changes to this object.
func (o *Object) Subscribe(fn func(ObjectChange)) (*Token, error) {
	if o.store == nil {
		return nil, ErrUnmanaged
	}
	if o.store.closed {
		return nil, ErrClosed
	}
	id := o.store.subs.alloc()
	o.store.subs.objects[id] = &objectSub{typ: o.typ, objID: o.id, fn: fn}
	return &Token{store: o.store, id: id}, nil
}

// Subscribe registers a callback for membership and element changes in the
// sequence of all objects of this type.
func (r *Results) Subscribe(fn func(ChangeSet)) (*Token, error) {
	if r.store.closed {
		return nil, ErrClosed
	}
	id := r.store.subs.alloc()
	r.store.subs.results[id] = &resultsSub{typ: r.typ, fn: fn}
	return &Token{store: r.store, id: id}, nil
}

// runDiff converts a slot-ID diff into the public ChangeSet form.
func runDiff(before, after []uint64, modified func(uint64) bool) (ChangeSet, bool) {
	res := diff.Sequences(before, after, modified)
	if res.Empty() {
		return ChangeSet{}, false
	}
	cs := ChangeSet{
		Insertions:    res.Insertions,
		Deletions:     res.Deletions,
		Modifications: res.Modifications,
	}
	for _, m := range res.Moves {
		cs.Moves = append(cs.Moves, Move{From: m.From, To: m.To})
	}
	return cs, true
}

// deliver runs every subscription's diff between the two generations and
// invokes callbacks for non-empty change sets. Callbacks run synchronously
// on the caller's goroutine and may close their own token.
func (s *Store) deliver(old, next *generation) {
	for _, sub := range snapshotSubs(s.subs.lists) {
		cs, ok := diffList(old, next, sub.typ, sub.objID, sub.field)
		if ok {
			sub.fn(cs)
		}
	}
	for _, sub := range snapshotSubs(s.subs.objects) {
		oc, ok := diffObject(old, next, sub.typ, sub.objID)
		if ok {
			sub.fn(oc)
		}
	}
	for _, sub := range snapshotSubs(s.subs.results) {
		cs, ok := diffTable(old, next, sub.typ)
		if ok {
			sub.fn(cs)
		}
	}
}

// snapshotSubs copies the subscription list so callbacks can subscribe or
// unsubscribe during delivery without invalidating the iteration.
func snapshotSubs[T any](m map[uint64]*T) []*T {
	out := make([]*T, 0, len(m))
	for _, sub := range m {
		out = append(out, sub)
	}
	return out
}

// listSlots extracts a list's slot IDs and per-slot values at one
// generation. A missing owner or never-written field reads as empty.
func listSlots(g *generation, typ string, objID uint64, field string) ([]uint64, map[uint64]Value) {
	rec := g.lookup(typ, objID)
	if rec == nil {
		return nil, nil
	}
	ls := rec.lists[field]
	if ls == nil {
		return nil, nil
	}
	byID := make(map[uint64]Value, len(ls.ids))
	for i, id := range ls.ids {
		byID[id] = ls.vals[i]
	}
	return ls.ids, byID
}

func diffList(old, next *generation, typ string, objID uint64, field string) (ChangeSet, bool) {
	beforeIDs, beforeVals := listSlots(old, typ, objID, field)
	afterIDs, afterVals := listSlots(next, typ, objID, field)
	return runDiff(beforeIDs, afterIDs, func(id uint64) bool {
		return !beforeVals[id].Equal(afterVals[id])
	})
}

func diffTable(old, next *generation, typ string) (ChangeSet, bool) {
	var beforeIDs, afterIDs []uint64
	if t := old.tables[typ]; t != nil {
		beforeIDs = t.order
	}
	if t := next.tables[typ]; t != nil {
		afterIDs = t.order
	}
	return runDiff(beforeIDs, afterIDs, func(id uint64) bool {
		return len(changedFields(old.lookup(typ, id), next.lookup(typ, id))) > 0
	})
}

func diffObject(old, next *generation, typ string, objID uint64) (ObjectChange, bool) {
	before := old.lookup(typ, objID)
	after := next.lookup(typ, objID)
	switch {
	case before == nil:
		// Not yet visible at the old snapshot; creation is observed by
		// Results subscribers, not object ones.
		return ObjectChange{}, false
	case after == nil:
		return ObjectChange{Deleted: true}, true
	}
	fields := changedFields(before, after)
	if len(fields) == 0 {
		return ObjectChange{}, false
	}
	return ObjectChange{Fields: fields}, true
}

// changedFields compares two versions of a record and returns the sorted
// names of fields whose values differ.
func changedFields(before, after *record) []string {
	if before == nil || after == nil || before == after {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	note := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for name, v := range after.fields {
		if bv, ok := before.fields[name]; !ok || !bv.Equal(v) {
			note(name)
		}
	}
	for name := range before.fields {
		if _, ok := after.fields[name]; !ok {
			note(name)
		}
	}
	for name, als := range after.lists {
		bls := before.lists[name]
		if !sameListState(bls, als) {
			note(name)
		}
	}
	for name := range before.lists {
		if _, ok := after.lists[name]; !ok {
			note(name)
		}
	}
	sort.Strings(out)
	return out
}

func sameListState(a, b *listState) bool {
	if a == b {
		return true
	}
	if a == nil {
		return len(b.vals) == 0
	}
	if b == nil {
		return len(a.vals) == 0
	}
	if len(a.vals) != len(b.vals) {
		return false
	}
	for i := range a.vals {
		if a.ids[i] != b.ids[i] || !a.vals[i].Equal(b.vals[i]) {
			return false
		}
	}
	return true
}
