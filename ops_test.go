package corestore

// ops_test.go implements tests for the logical operation log.

import (
	"testing"
	"time"
)

func TestOpsEncodeDecodeRoundTrip(t *testing.T) {
	when := time.Date(2021, 3, 14, 1, 59, 26, 535897932, time.UTC)
	ops := []op{
		{kind: opCreate, typ: "Person", id: 1},
		{kind: opSetField, typ: "Person", id: 1, field: "name", val: String("ada")},
		{kind: opSetField, typ: "Person", id: 1, field: "born", val: Date(when)},
		{kind: opSetField, typ: "Person", id: 1, field: "nickname", val: Null(FieldString)},
		{kind: opSetField, typ: "Person", id: 1, field: "avatar", val: Data([]byte{0, 1, 2})},
		{kind: opListInsert, typ: "Person", id: 1, field: "tags", index: 0, slot: 2, val: String("x")},
		{kind: opListSet, typ: "Person", id: 1, field: "tags", index: 0, val: String("y")},
		{kind: opListMove, typ: "Person", id: 1, field: "tags", index: 0, to: 0},
		{kind: opListRemoveAt, typ: "Person", id: 1, field: "tags", index: 0},
		{kind: opListClear, typ: "Person", id: 1, field: "tags"},
		{kind: opCounterAdd, typ: "Person", id: 1, field: "hits", delta: -5, vt: FieldInt64},
		{kind: opListCounterAdd, typ: "Person", id: 1, field: "scores", index: 0, delta: 3, vt: FieldInt32},
		{kind: opRemoveObject, typ: "Person", id: 1},
		{kind: opSetSchemaVersion, ver: 9},
	}

	decoded, err := decodeOps(encodeOps(ops))
	if err != nil {
		t.Fatalf("decodeOps failed: %v", err)
	}
	if len(decoded) != len(ops) {
		t.Fatalf("decoded %d ops, want %d", len(decoded), len(ops))
	}
	for i := range ops {
		want, got := ops[i], decoded[i]
		if got.kind != want.kind || got.typ != want.typ || got.id != want.id ||
			got.field != want.field || got.index != want.index || got.to != want.to ||
			got.slot != want.slot || got.delta != want.delta || got.vt != want.vt ||
			got.ver != want.ver {
			t.Fatalf("op %d: got %+v, want %+v", i, got, want)
		}
		if !got.val.Equal(want.val) && want.val.kind != 0 {
			t.Fatalf("op %d value: got %v, want %v", i, got.val.Interface(), want.val.Interface())
		}
	}
}

func TestDecodeOpsRejectsGarbage(t *testing.T) {
	if _, err := decodeOps([]byte{0x02, 0xff}); err == nil {
		t.Fatal("decodeOps accepted an unknown op kind")
	}
	if _, err := decodeOps([]byte{0x05}); err == nil {
		t.Fatal("decodeOps accepted a truncated payload")
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	ops := []op{
		{kind: opCreate, typ: "T", id: 1},
		{kind: opSetField, typ: "T", id: 1, field: "a", val: Int64(7)},
		{kind: opListInsert, typ: "T", id: 1, field: "l", index: 0, slot: 2, val: String("x")},
		{kind: opListInsert, typ: "T", id: 1, field: "l", index: 1, slot: 3, val: String("y")},
		{kind: opListMove, typ: "T", id: 1, field: "l", index: 0, to: 1},
		{kind: opCounterAdd, typ: "T", id: 1, field: "c", delta: 4, vt: FieldInt64},
	}

	apply := func() *generation {
		ws := newWorkingState(newGeneration())
		for i := range ops {
			if err := ws.apply(&ops[i]); err != nil {
				t.Fatalf("apply failed: %v", err)
			}
		}
		return ws.gen
	}

	a, b := apply(), apply()
	ra, rb := a.lookup("T", 1), b.lookup("T", 1)
	if ra == nil || rb == nil {
		t.Fatal("replayed object missing")
	}
	if !ra.fields["a"].Equal(rb.fields["a"]) || !ra.fields["c"].Equal(rb.fields["c"]) {
		t.Fatal("replayed scalar fields diverge")
	}
	la, lb := ra.lists["l"], rb.lists["l"]
	if len(la.ids) != 2 || la.ids[0] != lb.ids[0] || la.ids[1] != lb.ids[1] {
		t.Fatalf("replayed slot IDs diverge: %v vs %v", la.ids, lb.ids)
	}
	if la.ids[0] != 3 || la.ids[1] != 2 {
		t.Fatalf("moved slot order = %v, want [3 2]", la.ids)
	}
	if a.nextID != 4 {
		t.Fatalf("nextID after replay = %d, want 4", a.nextID)
	}
}

func TestApplyRejectsStructuralCorruption(t *testing.T) {
	ws := newWorkingState(newGeneration())
	bad := []op{
		{kind: opSetField, typ: "T", id: 9, field: "a", val: Int64(1)},
		{kind: opRemoveObject, typ: "T", id: 9},
		{kind: opListSet, typ: "T", id: 9, field: "l", index: 0, val: Int64(1)},
	}
	for i := range bad {
		if err := ws.apply(&bad[i]); err == nil {
			t.Errorf("apply of op on missing object %d succeeded", i)
		}
	}

	if err := ws.apply(&op{kind: opCreate, typ: "T", id: 1}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if err := ws.apply(&op{kind: opCreate, typ: "T", id: 1}); err == nil {
		t.Error("duplicate create accepted")
	}
	if err := ws.apply(&op{kind: opListInsert, typ: "T", id: 1, field: "l", index: 5, slot: 2, val: Int64(1)}); err == nil {
		t.Error("out-of-range replay insert accepted")
	}
}
