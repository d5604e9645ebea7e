package corestore

// generation.go implements the versioned in-memory state of a store.
//
// A generation is an immutable snapshot of all committed objects at one
// store version. Records are shared between generations; a write
// transaction clones only the tables and records it touches, then publishes
// the resulting generation atomically at commit. Readers hold a generation
// pointer and are isolated from concurrent publishes until refreshed.

import "slices"

// record is the stored form of one object: scalar fields plus list states.
// Records in a committed generation are immutable.
type record struct {
	id     uint64
	typ    string
	fields map[string]Value
	lists  map[string]*listState
}

// listState is the stored form of one list field. Each slot carries a
// stable ID alongside its value; the ID survives in-place sets and moves,
// which is what lets the notification engine tell a move from a
// delete+insert.
type listState struct {
	ids  []uint64
	vals []Value
}

func (ls *listState) clone() *listState {
	return &listState{
		ids:  slices.Clone(ls.ids),
		vals: slices.Clone(ls.vals),
	}
}

// table holds all objects of one type, in creation order.
type table struct {
	order   []uint64
	objects map[uint64]*record
}

// generation is one immutable committed snapshot.
type generation struct {
	version       uint64
	schemaVersion uint64 // SchemaVersionUnset until stamped
	nextID        uint64 // next object/slot ID to allocate
	tables        map[string]*table
}

func newGeneration() *generation {
	return &generation{
		schemaVersion: SchemaVersionUnset,
		nextID:        1,
		tables:        make(map[string]*table),
	}
}

// lookup returns the record for (typ, id), or nil.
func (g *generation) lookup(typ string, id uint64) *record {
	t := g.tables[typ]
	if t == nil {
		return nil
	}
	return t.objects[id]
}

// empty reports whether the generation holds no objects.
func (g *generation) empty() bool {
	for _, t := range g.tables {
		if len(t.order) > 0 {
			return false
		}
	}
	return true
}

// workingState is a mutable copy-on-write overlay over a base generation,
// owned by exactly one write transaction.
type workingState struct {
	gen          *generation
	dirtyTables  map[string]bool
	dirtyRecords map[recordKey]bool
}

type recordKey struct {
	typ string
	id  uint64
}

func newWorkingState(base *generation) *workingState {
	tables := make(map[string]*table, len(base.tables))
	for name, t := range base.tables {
		tables[name] = t
	}
	return &workingState{
		gen: &generation{
			version:       base.version,
			schemaVersion: base.schemaVersion,
			nextID:        base.nextID,
			tables:        tables,
		},
		dirtyTables:  make(map[string]bool),
		dirtyRecords: make(map[recordKey]bool),
	}
}

// allocID hands out the next object or slot ID.
func (ws *workingState) allocID() uint64 {
	id := ws.gen.nextID
	ws.gen.nextID++
	return id
}

// mutableTable returns the named table, cloning it into this overlay on
// first touch and creating it if absent.
func (ws *workingState) mutableTable(typ string) *table {
	t := ws.gen.tables[typ]
	if t == nil {
		t = &table{objects: make(map[uint64]*record)}
		ws.gen.tables[typ] = t
		ws.dirtyTables[typ] = true
		return t
	}
	if ws.dirtyTables[typ] {
		return t
	}
	clone := &table{
		order:   slices.Clone(t.order),
		objects: make(map[uint64]*record, len(t.objects)),
	}
	for id, rec := range t.objects {
		clone.objects[id] = rec
	}
	ws.gen.tables[typ] = clone
	ws.dirtyTables[typ] = true
	return clone
}

// mutableRecord returns the record for (typ, id) with this overlay owning
// it, deep-cloning on first touch. Returns nil if the object does not
// exist.
func (ws *workingState) mutableRecord(typ string, id uint64) *record {
	t := ws.mutableTable(typ)
	rec := t.objects[id]
	if rec == nil {
		return nil
	}
	key := recordKey{typ: typ, id: id}
	if ws.dirtyRecords[key] {
		return rec
	}
	clone := &record{
		id:     rec.id,
		typ:    rec.typ,
		fields: make(map[string]Value, len(rec.fields)),
		lists:  make(map[string]*listState, len(rec.lists)),
	}
	for name, v := range rec.fields {
		clone.fields[name] = v
	}
	for name, ls := range rec.lists {
		clone.lists[name] = ls.clone()
	}
	t.objects[id] = clone
	ws.dirtyRecords[key] = true
	return clone
}

// mutableList returns the named list of (typ, id), creating the empty list
// state if the field has never been written. Returns nil if the object does
// not exist.
func (ws *workingState) mutableList(typ string, id uint64, field string) *listState {
	rec := ws.mutableRecord(typ, id)
	if rec == nil {
		return nil
	}
	ls := rec.lists[field]
	if ls == nil {
		ls = &listState{}
		rec.lists[field] = ls
	}
	return ls
}
