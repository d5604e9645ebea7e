// Package encoding provides the binary encoding primitives used by the
// corestore journal format.
//
// All multi-byte integers are little-endian. Variable-length integers use
// 7-bit encoding with MSB continuation; signed values are zigzag-encoded.
// Strings and byte slices are length-prefixed with a varint.
package encoding

import (
	"encoding/binary"
	"errors"
	"math"
)

// MaxVarint64Length is the maximum number of bytes a varint64 can occupy.
const MaxVarint64Length = 10

var (
	// ErrBufferTooSmall is returned when a decode runs off the end of the buffer.
	ErrBufferTooSmall = errors.New("encoding: buffer too small")

	// ErrVarintTermination is returned when a varint does not terminate properly.
	ErrVarintTermination = errors.New("encoding: varint not terminated")
)

// -----------------------------------------------------------------------------
// Fixed-width encoding (little-endian)
// -----------------------------------------------------------------------------

// PutFixed32 appends a uint32 to dst in little-endian order.
func PutFixed32(dst []byte, value uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, value)
}

// DecodeFixed32 decodes a uint32 from a little-endian buffer.
// REQUIRES: src has at least 4 bytes.
func DecodeFixed32(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src)
}

// PutFixed64 appends a uint64 to dst in little-endian order.
func PutFixed64(dst []byte, value uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, value)
}

// DecodeFixed64 decodes a uint64 from a little-endian buffer.
// REQUIRES: src has at least 8 bytes.
func DecodeFixed64(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}

// EncodeFixed32 encodes a uint32 into dst[0:4].
// REQUIRES: dst has at least 4 bytes.
func EncodeFixed32(dst []byte, value uint32) {
	binary.LittleEndian.PutUint32(dst, value)
}

// EncodeFixed64 encodes a uint64 into dst[0:8].
// REQUIRES: dst has at least 8 bytes.
func EncodeFixed64(dst []byte, value uint64) {
	binary.LittleEndian.PutUint64(dst, value)
}

// -----------------------------------------------------------------------------
// Varint encoding
// -----------------------------------------------------------------------------

// PutUvarint appends value to dst as a varint64.
func PutUvarint(dst []byte, value uint64) []byte {
	return binary.AppendUvarint(dst, value)
}

// Uvarint decodes a varint64 from src, returning the value and the remaining
// buffer.
func Uvarint(src []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(src)
	if n <= 0 {
		return 0, nil, ErrVarintTermination
	}
	return v, src[n:], nil
}

// PutVarint appends a signed value to dst using zigzag encoding.
func PutVarint(dst []byte, value int64) []byte {
	return binary.AppendUvarint(dst, zigzag(value))
}

// Varint decodes a zigzag-encoded signed value from src.
func Varint(src []byte) (int64, []byte, error) {
	v, rest, err := Uvarint(src)
	if err != nil {
		return 0, nil, err
	}
	return unzigzag(v), rest, nil
}

func zigzag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func unzigzag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// -----------------------------------------------------------------------------
// Length-prefixed byte slices and strings
// -----------------------------------------------------------------------------

// PutBytes appends a varint length prefix followed by value.
func PutBytes(dst []byte, value []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(value)))
	return append(dst, value...)
}

// Bytes decodes a length-prefixed byte slice from src. The returned slice
// aliases src; callers that retain it across buffer reuse must copy.
func Bytes(src []byte) ([]byte, []byte, error) {
	n, rest, err := Uvarint(src)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(rest)) < n {
		return nil, nil, ErrBufferTooSmall
	}
	return rest[:n], rest[n:], nil
}

// PutString appends a varint length prefix followed by value.
func PutString(dst []byte, value string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(value)))
	return append(dst, value...)
}

// String decodes a length-prefixed string from src.
func String(src []byte) (string, []byte, error) {
	b, rest, err := Bytes(src)
	if err != nil {
		return "", nil, err
	}
	return string(b), rest, nil
}

// -----------------------------------------------------------------------------
// Floating point
// -----------------------------------------------------------------------------

// PutFloat64 appends the IEEE-754 bits of value to dst.
func PutFloat64(dst []byte, value float64) []byte {
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(value))
}

// Float64 decodes an IEEE-754 double from src.
func Float64(src []byte) (float64, []byte, error) {
	if len(src) < 8 {
		return 0, nil, ErrBufferTooSmall
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(src)), src[8:], nil
}
