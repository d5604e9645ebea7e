// Package compress provides payload compression for corestore journal frames.
//
// Each frame header carries a 1-byte codec indicator followed by the
// compressed (or uncompressed) payload. The codec values are embedded in the
// on-disk format and MUST NOT change.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies a compression algorithm.
type Codec uint8

const (
	// None stores the payload uncompressed.
	None Codec = 0x0

	// Snappy uses Google Snappy block compression.
	Snappy Codec = 0x1

	// LZ4 uses LZ4 frame compression at the fast level.
	LZ4 Codec = 0x2

	// Zstd uses Zstandard at the default level.
	Zstd Codec = 0x3
)

// String returns the human-readable name of the codec.
func (c Codec) String() string {
	switch c {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// IsSupported reports whether the codec is one this build can encode and
// decode.
func (c Codec) IsSupported() bool {
	switch c {
	case None, Snappy, LZ4, Zstd:
		return true
	default:
		return false
	}
}

// Compress compresses payload using the given codec.
func Compress(c Codec, payload []byte) ([]byte, error) {
	switch c {
	case None:
		return payload, nil

	case Snappy:
		return snappy.Encode(nil, payload), nil

	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			return nil, fmt.Errorf("lz4 write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 close: %w", err)
		}
		return buf.Bytes(), nil

	case Zstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		defer func() { _ = enc.Close() }()
		return enc.EncodeAll(payload, nil), nil

	default:
		return nil, fmt.Errorf("unsupported codec: %s", c)
	}
}

// Decompress decompresses payload using the given codec.
func Decompress(c Codec, payload []byte) ([]byte, error) {
	switch c {
	case None:
		return payload, nil

	case Snappy:
		return snappy.Decode(nil, payload)

	case LZ4:
		r := lz4.NewReader(bytes.NewReader(payload))
		return io.ReadAll(r)

	case Zstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer dec.Close()
		return dec.DecodeAll(payload, nil)

	default:
		return nil, fmt.Errorf("unsupported codec: %s", c)
	}
}
