// reader.go implements journal frame reading and replay.
package journal

import (
	"errors"
	"io"
	"os"

	"github.com/zeebo/xxh3"

	"github.com/aalhour/corestore/internal/compress"
	"github.com/aalhour/corestore/internal/encoding"
)

var (
	// ErrBadMagic is returned when a file is not a corestore journal.
	ErrBadMagic = errors.New("journal: bad magic")

	// ErrBadFormat is returned for an unknown journal format revision.
	ErrBadFormat = errors.New("journal: unsupported format version")

	// ErrCorrupt is returned when a complete frame fails its checksum.
	// A truncated tail frame is reported as io.EOF, not ErrCorrupt.
	ErrCorrupt = errors.New("journal: corrupt frame")
)

// Frame is one decoded journal frame.
type Frame struct {
	// Version is the store version this frame's commit published.
	Version uint64

	// Codec is the compression the payload was stored with.
	Codec compress.Codec

	// Payload is the decompressed frame payload.
	Payload []byte
}

// Reader reads frames from a journal file sequentially.
//
// A Reader is not safe for concurrent use. Re-reading a growing journal is
// done by opening a new Reader at the previous end offset.
type Reader struct {
	f      *os.File
	offset int64
}

// Open opens the journal at path and validates the file header.
// If from > 0 the reader starts at that offset instead of the first frame;
// from must be a frame boundary previously returned by Offset or Append.
func Open(path string, from int64) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	hdr := make([]byte, FileHeaderSize)
	if _, err := io.ReadFull(f, hdr); err != nil {
		_ = f.Close()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrBadMagic
		}
		return nil, err
	}
	if encoding.DecodeFixed32(hdr) != Magic {
		_ = f.Close()
		return nil, ErrBadMagic
	}
	if encoding.DecodeFixed32(hdr[4:]) != FormatVersion {
		_ = f.Close()
		return nil, ErrBadFormat
	}

	r := &Reader{f: f, offset: FileHeaderSize}
	if from > FileHeaderSize {
		if _, err := f.Seek(from, io.SeekStart); err != nil {
			_ = f.Close()
			return nil, err
		}
		r.offset = from
	}
	return r, nil
}

// Offset returns the file offset of the next unread frame. Stable across
// Close; pass it to Open to resume where a previous reader stopped.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Next reads the next frame. It returns io.EOF at the end of the journal,
// including at a truncated trailing frame left by a crashed writer.
func (r *Reader) Next() (*Frame, error) {
	raw := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r.f, raw); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	storedLen := int(encoding.DecodeFixed32(raw))
	if storedLen > MaxFramePayload {
		return nil, ErrCorrupt
	}
	version := encoding.DecodeFixed64(raw[4:])
	codec := compress.Codec(raw[12])

	body := make([]byte, storedLen+TrailerSize)
	if _, err := io.ReadFull(r.f, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// Torn tail frame: the writer crashed mid-append.
			return nil, io.EOF
		}
		return nil, err
	}

	sum := xxh3.Hash(append(raw, body[:storedLen]...))
	if sum != encoding.DecodeFixed64(body[storedLen:]) {
		return nil, ErrCorrupt
	}

	payload, err := compress.Decompress(codec, body[:storedLen])
	if err != nil {
		return nil, ErrCorrupt
	}

	r.offset += int64(FrameHeaderSize + storedLen + TrailerSize)
	return &Frame{Version: version, Codec: codec, Payload: payload}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
