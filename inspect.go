package corestore

// inspect.go implements read-only journal inspection for tooling.

import (
	"errors"
	"io"
	"sort"

	"github.com/aalhour/corestore/internal/journal"
)

// FrameInfo summarizes one journal frame for inspection tools.
type FrameInfo struct {
	// Offset is the frame's position in the journal file.
	Offset int64

	// Version is the store version the frame's commit published.
	Version uint64

	// Codec is the compression the payload was stored with.
	Codec Compression

	// Ops is the number of logical operations in the frame.
	Ops int
}

// InspectJournal walks the journal at path from the given offset (0 for
// the first frame), calling fn for each complete frame until fn returns
// false. It returns the offset past the last complete frame, suitable for
// resuming after the journal grows.
func InspectJournal(path string, from int64, fn func(FrameInfo) bool) (int64, error) {
	r, err := journal.Open(path, from)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Close() }()

	for {
		offset := r.Offset()
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			return r.Offset(), nil
		}
		if err != nil {
			return offset, err
		}
		ops, err := decodeOps(frame.Payload)
		if err != nil {
			return offset, err
		}
		info := FrameInfo{
			Offset:  offset,
			Version: frame.Version,
			Codec:   frame.Codec,
			Ops:     len(ops),
		}
		if !fn(info) {
			return r.Offset(), nil
		}
	}
}

// Types returns the names of object types holding at least one object at
// this handle's snapshot, sorted.
func (s *Store) Types() []string {
	var out []string
	for name, t := range s.currentGen().tables {
		if len(t.order) > 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
