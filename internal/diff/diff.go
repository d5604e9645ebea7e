// Package diff computes the minimal edit script between two observed
// versions of a collection.
//
// Collections are diffed as sequences of stable slot IDs: a slot keeps its
// ID across in-place overwrites and moves, and gets a fresh ID when
// inserted. Diffing ID sequences (rather than replaying the writer's
// actions) coalesces arbitrarily many operations between two observed
// versions into one script — a slot inserted and removed between the two
// versions appears in neither side and produces no edits.
package diff

import "sort"

// Move records a slot relocation. From indexes the before sequence, To the
// after sequence. For adjacent slots the orientation is unspecified;
// consumers must treat {a,b} and {b,a} as equivalent in that case.
type Move struct {
	From int
	To   int
}

// Result is the edit script between two versions of a collection.
//
// Deletions index the before sequence; Insertions and Modifications index
// the after sequence. All index slices are sorted ascending.
type Result struct {
	Deletions     []int
	Insertions    []int
	Modifications []int
	Moves         []Move
}

// Empty reports whether the script contains no edits.
func (r *Result) Empty() bool {
	return len(r.Deletions) == 0 && len(r.Insertions) == 0 &&
		len(r.Modifications) == 0 && len(r.Moves) == 0
}

// Sequences diffs two slot-ID sequences. IDs must be unique within each
// sequence. modified reports whether a surviving slot's value changed
// between the two versions; it may be nil.
func Sequences(before, after []uint64, modified func(id uint64) bool) Result {
	posBefore := make(map[uint64]int, len(before))
	for i, id := range before {
		posBefore[id] = i
	}
	posAfter := make(map[uint64]int, len(after))
	for i, id := range after {
		posAfter[id] = i
	}

	var res Result

	for i, id := range before {
		if _, ok := posAfter[id]; !ok {
			res.Deletions = append(res.Deletions, i)
		}
	}

	// Survivors in after order, as indices into before. Slots whose
	// before-indices form an increasing run kept their relative order;
	// the rest moved.
	var survivors []survivor
	for i, id := range after {
		if j, ok := posBefore[id]; ok {
			survivors = append(survivors, survivor{id: id, beforeIdx: j, afterIdx: i})
		} else {
			res.Insertions = append(res.Insertions, i)
		}
	}

	anchored := longestIncreasingRun(survivors)
	for k, s := range survivors {
		if anchored[k] {
			if modified != nil && modified(s.id) {
				res.Modifications = append(res.Modifications, s.afterIdx)
			}
			continue
		}
		res.Moves = append(res.Moves, Move{From: s.beforeIdx, To: s.afterIdx})
	}

	sort.Ints(res.Modifications)
	sort.Slice(res.Moves, func(i, j int) bool { return res.Moves[i].To < res.Moves[j].To })
	return res
}

type survivor struct {
	id        uint64
	beforeIdx int
	afterIdx  int
}

// longestIncreasingRun marks the survivors belonging to a longest strictly
// increasing subsequence of before-indices. Everything off that subsequence
// is a move; anchoring the longest run keeps the move set minimal.
func longestIncreasingRun(s []survivor) []bool {
	anchored := make([]bool, len(s))
	if len(s) == 0 {
		return anchored
	}

	// Patience sorting: tails[k] holds the index into s of the smallest
	// before-index terminating an increasing subsequence of length k+1.
	tails := make([]int, 0, len(s))
	prev := make([]int, len(s))
	for i := range s {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if s[tails[mid]].beforeIdx < s[i].beforeIdx {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		anchored[i] = true
	}
	return anchored
}
