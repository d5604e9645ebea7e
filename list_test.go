package corestore

// list_test.go implements tests for ordered list fields.

import (
	"errors"
	"testing"
	"time"
)

// personWithTags commits a Person whose tags list holds the given strings.
func personWithTags(t *testing.T, s *Store, tags ...string) (*Object, *List) {
	t.Helper()
	tx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	obj, err := tx.Create("Person")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	list, err := obj.List("tags")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, tag := range tags {
		if err := list.Add(String(tag)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return obj, list
}

func tagStrings(t *testing.T, l *List) []string {
	t.Helper()
	vals, err := l.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.AsString()
	}
	return out
}

func wantTags(t *testing.T, l *List, want ...string) {
	t.Helper()
	got := tagStrings(t, l)
	if len(got) != len(want) {
		t.Fatalf("list = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("list = %v, want %v", got, want)
		}
	}
}

func TestListBasicOps(t *testing.T) {
	s := openTestStore(t, testPath(t))
	_, list := personWithTags(t, s, "a", "b", "c")

	n, err := list.Len()
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("Len = %d, want 3", n)
	}
	v, err := list.Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.AsString() != "b" {
		t.Fatalf("Get(1) = %q, want %q", v.AsString(), "b")
	}
	i, err := list.IndexOf(String("c"))
	if err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}
	if i != 2 {
		t.Fatalf("IndexOf = %d, want 2", i)
	}
	i, err = list.IndexOf(String("zzz"))
	if err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}
	if i != -1 {
		t.Fatalf("IndexOf of absent = %d, want -1", i)
	}

	tx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	if err := list.Insert(1, String("x")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := list.Set(0, String("A")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := list.RemoveAt(3); err != nil {
		t.Fatalf("RemoveAt failed: %v", err)
	}
	if err := list.Move(0, 2); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	// a,b,c -> a,x,b,c -> A,x,b,c -> A,x,b -> x,b,A
	wantTags(t, list, "x", "b", "A")

	tx, err = s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	if err := list.Remove(String("b")); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := list.Remove(String("never-there")); err != nil {
		t.Fatalf("Remove of absent value: got %v, want nil", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	wantTags(t, list, "x", "A")

	tx, err = s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	if err := list.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := list.Clear(); err != nil {
		t.Fatalf("Clear of empty list: got %v, want nil", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	wantTags(t, list)
}

func TestListBoundsLeaveStateUntouched(t *testing.T) {
	s := openTestStore(t, testPath(t))
	_, list := personWithTags(t, s, "a", "b")

	tx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	defer tx.Cancel()

	cases := []struct {
		name string
		fn   func() error
	}{
		{"GetNegative", func() error { _, err := list.Get(-1); return err }},
		{"GetPastEnd", func() error { _, err := list.Get(2); return err }},
		{"InsertNegative", func() error { return list.Insert(-1, String("x")) }},
		{"InsertPastEnd", func() error { return list.Insert(3, String("x")) }},
		{"SetPastEnd", func() error { return list.Set(2, String("x")) }},
		{"RemoveAtPastEnd", func() error { return list.RemoveAt(2) }},
		{"MoveFromPastEnd", func() error { return list.Move(2, 0) }},
		{"MoveToPastEnd", func() error { return list.Move(0, 2) }},
	}
	for _, tc := range cases {
		if err := tc.fn(); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("%s: got %v, want ErrIndexOutOfRange", tc.name, err)
		}
	}
	wantTags(t, list, "a", "b")
}

func TestListElemTypeMismatch(t *testing.T) {
	s := openTestStore(t, testPath(t))
	_, list := personWithTags(t, s, "a")

	tx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	defer tx.Cancel()

	if err := list.Add(Int64(1)); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Add of wrong element type: got %v, want ErrTypeMismatch", err)
	}
	if err := list.Set(0, Int64(1)); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Set of wrong element type: got %v, want ErrTypeMismatch", err)
	}
	// tags is not nullable.
	if err := list.Add(Null(FieldString)); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("null element on non-nullable list: got %v, want ErrTypeMismatch", err)
	}
}

func TestNullableListElements(t *testing.T) {
	s := openTestStore(t, testPath(t))
	obj := createPerson(t, s, "ada")
	aliases, err := obj.List("aliases")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	tx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	if err := aliases.Add(String("countess")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := aliases.Add(Null(FieldString)); err != nil {
		t.Fatalf("Add of null element failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	vals, err := aliases.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if len(vals) != 2 || vals[0].IsNull() || !vals[1].IsNull() {
		t.Fatalf("nullable list contents wrong: %v", vals)
	}
}

func TestListCounterIncrement(t *testing.T) {
	path := testPath(t)
	s := openTestStore(t, path)
	obj := createPerson(t, s, "ada")
	scores, err := obj.List("scores")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	tx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	if err := scores.Add(Int64(10)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := scores.Increment(0, 5); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	// Indexed assignment still stores the absolute value.
	if err := scores.Set(0, Int64(100)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := scores.Increment(0, -1); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := scores.Increment(5, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("out-of-range Increment: got %v, want ErrIndexOutOfRange", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	v, err := scores.Get(0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.AsInt() != 99 {
		t.Fatalf("counter element = %d, want 99", v.AsInt())
	}

	// Replay reproduces the accumulated element.
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	s2 := openTestStore(t, path)
	all, err := s2.All("Person")
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	scores2, err := all.First().List("scores")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	v, err = scores2.Get(0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.AsInt() != 99 {
		t.Fatalf("replayed counter element = %d, want 99", v.AsInt())
	}
}

func TestListIncrementNonCounter(t *testing.T) {
	s := openTestStore(t, testPath(t))
	_, list := personWithTags(t, s, "a")

	tx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	defer tx.Cancel()

	if err := list.Increment(0, 1); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Increment on plain list: got %v, want ErrTypeMismatch", err)
	}
}

func TestUnmanagedListMutation(t *testing.T) {
	obj := NewObject(testSchema().Object("Person"))
	list, err := obj.List("tags")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	// No transaction needed before the object is attached.
	for _, tag := range []string{"a", "b", "c"} {
		if err := list.Add(String(tag)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if err := list.Move(0, 2); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if err := list.Set(0, String("B")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := list.RemoveAt(1); err != nil {
		t.Fatalf("RemoveAt failed: %v", err)
	}
	wantTags(t, list, "B", "a")

	if err := list.Insert(5, String("x")); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("unmanaged out-of-range insert: got %v, want ErrIndexOutOfRange", err)
	}
}

func TestListElementTypesRoundTrip(t *testing.T) {
	schema := &Schema{Objects: []ObjectSchema{
		{Name: "Sample", Fields: []FieldSchema{
			{Name: "flags", Type: FieldBool, List: true},
			{Name: "tiny", Type: FieldInt8, List: true},
			{Name: "small", Type: FieldInt16, List: true},
			{Name: "medium", Type: FieldInt32, List: true},
			{Name: "large", Type: FieldInt64, List: true},
			{Name: "raw", Type: FieldByte, List: true},
			{Name: "singles", Type: FieldFloat, List: true},
			{Name: "doubles", Type: FieldDouble, List: true},
			{Name: "glyphs", Type: FieldChar, List: true},
			{Name: "stamps", Type: FieldDate, List: true},
			{Name: "words", Type: FieldString, List: true},
			{Name: "blobs", Type: FieldData, List: true},
			{Name: "maybe", Type: FieldString, List: true, Nullable: true},
		}},
	}}

	epoch := time.Date(2021, time.March, 14, 9, 26, 53, 0, time.UTC)
	cases := []struct {
		field string
		vals  []Value
	}{
		{"flags", []Value{Bool(true), Bool(false), Bool(true)}},
		{"tiny", []Value{Int8(-3), Int8(0), Int8(127)}},
		{"small", []Value{Int16(-300), Int16(7), Int16(32767)}},
		{"medium", []Value{Int32(-70000), Int32(1), Int32(1 << 30)}},
		{"large", []Value{Int64(-1 << 40), Int64(42), Int64(1 << 62)}},
		{"raw", []Value{Byte(0), Byte(128), Byte(255)}},
		{"singles", []Value{Float(-1.5), Float(0.25), Float(3.5)}},
		{"doubles", []Value{Double(-2.25), Double(0.5), Double(1e100)}},
		{"glyphs", []Value{Char('a'), Char('β'), Char('中')}},
		{"stamps", []Value{Date(epoch), Date(epoch.Add(time.Hour)), Date(epoch.Add(48 * time.Hour))}},
		{"words", []Value{String("first"), String("second"), String("")}},
		{"blobs", []Value{Data([]byte{1}), Data([]byte{2, 3}), Data([]byte{0xff, 0x00})}},
		{"maybe", []Value{String("x"), Null(FieldString), String("y")}},
	}

	checkLists := func(t *testing.T, obj *Object) {
		t.Helper()
		for _, tc := range cases {
			list, err := obj.List(tc.field)
			if err != nil {
				t.Fatalf("%s: List failed: %v", tc.field, err)
			}
			n, err := list.Len()
			if err != nil {
				t.Fatalf("%s: Len failed: %v", tc.field, err)
			}
			if n != len(tc.vals) {
				t.Fatalf("%s: Len = %d, want %d", tc.field, n, len(tc.vals))
			}
			for i, want := range tc.vals {
				got, err := list.Get(i)
				if err != nil {
					t.Fatalf("%s: Get(%d) failed: %v", tc.field, i, err)
				}
				if !got.Equal(want) {
					t.Errorf("%s: element %d = %v, want %v", tc.field, i, got.Interface(), want.Interface())
				}
			}
			idx, err := list.IndexOf(tc.vals[1])
			if err != nil {
				t.Fatalf("%s: IndexOf failed: %v", tc.field, err)
			}
			if idx != 1 {
				t.Errorf("%s: IndexOf = %d, want 1", tc.field, idx)
			}
		}
	}

	path := testPath(t)
	s, err := Open(Config{Path: path, Schema: schema})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	tx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite failed: %v", err)
	}
	obj, err := tx.Create("Sample")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, tc := range cases {
		list, err := obj.List(tc.field)
		if err != nil {
			t.Fatalf("%s: List failed: %v", tc.field, err)
		}
		for _, v := range tc.vals {
			if err := list.Add(v); err != nil {
				t.Fatalf("%s: Add failed: %v", tc.field, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	checkLists(t, obj)

	// Replay reproduces every element type.
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	s2, err := Open(Config{Path: path, Schema: schema})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	t.Cleanup(func() { _ = s2.Close() })
	all, err := s2.All("Sample")
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	checkLists(t, all.First())
}

func TestListPersistence(t *testing.T) {
	path := testPath(t)
	s := openTestStore(t, path)
	personWithTags(t, s, "a", "b", "c")
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2 := openTestStore(t, path)
	all, err := s2.All("Person")
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	list, err := all.First().List("tags")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	wantTags(t, list, "a", "b", "c")
}
