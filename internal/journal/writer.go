// writer.go implements journal frame writing.
package journal

import (
	"errors"
	"fmt"
	"os"

	"github.com/zeebo/xxh3"

	"github.com/aalhour/corestore/internal/compress"
	"github.com/aalhour/corestore/internal/encoding"
	"github.com/aalhour/corestore/internal/vfs"
)

// ErrFrameTooLarge is returned when a commit payload exceeds MaxFramePayload.
var ErrFrameTooLarge = errors.New("journal: frame payload too large")

// Create initializes an empty journal file at path, writing the file header
// and syncing the containing directory. It fails if path already exists.
func Create(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	hdr := make([]byte, 0, FileHeaderSize)
	hdr = encoding.PutFixed32(hdr, Magic)
	hdr = encoding.PutFixed32(hdr, FormatVersion)
	hdr = append(hdr, make([]byte, 8)...)
	if _, err := f.Write(hdr); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return vfs.SyncDir(path)
}

// Append encodes one frame and writes it durably at offset at, which must
// be the boundary after the last complete frame. A torn partial frame left
// past that boundary by a crashed writer is truncated away first, so frames
// written after a crash stay reachable by replay. Callers serialize appends
// through the store's write lock. Append returns the file size after the
// write, which is the reader offset of the next frame.
func Append(path string, at int64, version uint64, codec compress.Codec, payload []byte) (int64, error) {
	stored, err := compress.Compress(codec, payload)
	if err != nil {
		return 0, fmt.Errorf("journal: compress frame: %w", err)
	}
	if len(stored) > MaxFramePayload {
		return 0, ErrFrameTooLarge
	}

	buf := make([]byte, 0, FrameHeaderSize+len(stored)+TrailerSize)
	buf = encoding.PutFixed32(buf, uint32(len(stored)))
	buf = encoding.PutFixed64(buf, version)
	buf = append(buf, byte(codec))
	buf = append(buf, stored...)
	sum := xxh3.Hash(buf)
	buf = encoding.PutFixed64(buf, sum)

	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return 0, err
	}
	if err := f.Truncate(at); err != nil {
		_ = f.Close()
		return 0, err
	}
	if _, err := f.WriteAt(buf, at); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return 0, err
	}
	return at + int64(len(buf)), f.Close()
}
