package encoding

// coding_test.go implements tests for the binary encoding primitives.

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestFixedRoundTrip(t *testing.T) {
	var buf []byte
	buf = PutFixed32(buf, 0xdeadbeef)
	buf = PutFixed64(buf, 0x0123456789abcdef)

	if got := DecodeFixed32(buf); got != 0xdeadbeef {
		t.Fatalf("DecodeFixed32 = %#x", got)
	}
	if got := DecodeFixed64(buf[4:]); got != 0x0123456789abcdef {
		t.Fatalf("DecodeFixed64 = %#x", got)
	}

	dst := make([]byte, 12)
	EncodeFixed32(dst, 7)
	EncodeFixed64(dst[4:], 9)
	if DecodeFixed32(dst) != 7 || DecodeFixed64(dst[4:]) != 9 {
		t.Fatal("in-place fixed encoding round trip failed")
	}
}

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16383, 16384, math.MaxUint64}
	var buf []byte
	for _, v := range values {
		buf = PutUvarint(buf, v)
	}
	rest := buf
	for _, want := range values {
		var got uint64
		var err error
		got, rest, err = Uvarint(rest)
		if err != nil {
			t.Fatalf("Uvarint(%d) failed: %v", want, err)
		}
		if got != want {
			t.Fatalf("Uvarint = %d, want %d", got, want)
		}
	}
	if len(rest) != 0 {
		t.Fatalf("%d bytes left over", len(rest))
	}
}

func TestVarintRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 300, -300, math.MaxInt64, math.MinInt64}
	for _, want := range values {
		buf := PutVarint(nil, want)
		got, rest, err := Varint(buf)
		if err != nil {
			t.Fatalf("Varint(%d) failed: %v", want, err)
		}
		if got != want || len(rest) != 0 {
			t.Fatalf("Varint = %d (rest %d), want %d", got, len(rest), want)
		}
	}
}

func TestZigzagSmallMagnitudesStaySmall(t *testing.T) {
	// Zigzag keeps small negative values in one byte.
	if n := len(PutVarint(nil, -1)); n != 1 {
		t.Fatalf("-1 encodes to %d bytes, want 1", n)
	}
}

func TestBytesAndStringRoundTrip(t *testing.T) {
	var buf []byte
	buf = PutBytes(buf, []byte{1, 2, 3})
	buf = PutString(buf, "hello")
	buf = PutBytes(buf, nil)

	b, rest, err := Bytes(buf)
	if err != nil || !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Fatalf("Bytes = %v, %v", b, err)
	}
	s, rest, err := String(rest)
	if err != nil || s != "hello" {
		t.Fatalf("String = %q, %v", s, err)
	}
	b, rest, err = Bytes(rest)
	if err != nil || len(b) != 0 {
		t.Fatalf("empty Bytes = %v, %v", b, err)
	}
	if len(rest) != 0 {
		t.Fatalf("%d bytes left over", len(rest))
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	values := []float64{0, -0.5, 3.14159, math.Inf(1), math.SmallestNonzeroFloat64}
	for _, want := range values {
		got, rest, err := Float64(PutFloat64(nil, want))
		if err != nil || got != want || len(rest) != 0 {
			t.Fatalf("Float64(%v) = %v, %v", want, got, err)
		}
	}
	// NaN survives by bit pattern.
	got, _, err := Float64(PutFloat64(nil, math.NaN()))
	if err != nil || !math.IsNaN(got) {
		t.Fatalf("NaN round trip = %v, %v", got, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, err := Uvarint(nil); !errors.Is(err, ErrVarintTermination) {
		t.Fatalf("Uvarint(nil): got %v, want ErrVarintTermination", err)
	}
	if _, _, err := Uvarint([]byte{0x80, 0x80}); !errors.Is(err, ErrVarintTermination) {
		t.Fatalf("unterminated varint: got %v, want ErrVarintTermination", err)
	}
	if _, _, err := Bytes([]byte{0x05, 0x01}); !errors.Is(err, ErrBufferTooSmall) {
		t.Fatalf("short Bytes: got %v, want ErrBufferTooSmall", err)
	}
	if _, _, err := Float64([]byte{1, 2, 3}); !errors.Is(err, ErrBufferTooSmall) {
		t.Fatalf("short Float64: got %v, want ErrBufferTooSmall", err)
	}
}
