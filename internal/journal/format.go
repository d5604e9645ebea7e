// Package journal provides the corestore commit journal reader and writer.
//
// File Format:
// A journal holds a fixed-size file header followed by a sequence of frames,
// one frame per committed write transaction. Frames are appended and synced
// in commit order; the frame's version is the store version it publishes.
//
// File Header (16 bytes):
//
//	+------------+--------------+---------------+
//	| Magic (4B) | Format (4B)  | Reserved (8B) |
//	+------------+--------------+---------------+
//
// Frame:
//
//	+---------+-------------+-----------+---------+-----------+
//	| Len(4B) | Version(8B) | Codec(1B) | Payload | XXH3 (8B) |
//	+---------+-------------+-----------+---------+-----------+
//
// Len is the stored (possibly compressed) payload length. The XXH3-64
// trailer covers the frame header and the stored payload. A truncated
// trailing frame is not an error: replay stops at the last complete frame,
// which is what makes a crashed writer invisible to subsequent opens. The
// next append truncates the torn tail and writes at that boundary.
package journal

// Magic identifies a corestore journal file.
const Magic uint32 = 0x4a534332 // "2CSJ" little-endian

// FormatVersion is the current journal format revision.
// This value is embedded in the on-disk format and MUST NOT change
// without a reader-side compatibility path.
const FormatVersion uint32 = 1

// FileHeaderSize is the size of the journal file header.
const FileHeaderSize = 16

// FrameHeaderSize is the size of a frame header:
// length (4) + version (8) + codec (1) = 13 bytes.
const FrameHeaderSize = 13

// TrailerSize is the size of the per-frame checksum trailer.
const TrailerSize = 8

// MaxFramePayload bounds a single frame's stored payload. A commit larger
// than this fails rather than writing an unreadable frame.
const MaxFramePayload = 1 << 30
