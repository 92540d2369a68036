package protocol

import (
	"math"
	"testing"
)

func TestUvarint_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1 << 32, math.MaxUint64}
	for _, v := range values {
		buf := AppendUvarint(nil, v)
		got, n := Uvarint(buf)
		if n != len(buf) {
			t.Fatalf("Uvarint(%d) consumed %d of %d bytes", v, n, len(buf))
		}
		if got != v {
			t.Fatalf("Uvarint round trip = %d, want %d", got, v)
		}
	}
}

func TestUvarint_Errors(t *testing.T) {
	if _, n := Uvarint(nil); n != -1 {
		t.Fatalf("empty buffer n = %d, want -1", n)
	}
	if _, n := Uvarint([]byte{0x80, 0x80}); n != -1 {
		t.Fatalf("truncated varint n = %d, want -1", n)
	}
	over := make([]byte, 11)
	for i := range over {
		over[i] = 0x80
	}
	if _, n := Uvarint(over); n != -2 {
		t.Fatalf("oversized varint n = %d, want -2", n)
	}
}

func TestSvarint_RoundTrip(t *testing.T) {
	values := []int64{0, -1, 1, -2, 63, -64, 1024, -1024, math.MaxInt64, math.MinInt64}
	for _, v := range values {
		buf := AppendSvarint(nil, v)
		got, n := Svarint(buf)
		if n != len(buf) || got != v {
			t.Fatalf("Svarint(%d) = (%d, %d)", v, got, n)
		}
	}
}

func TestSvarint_SmallMagnitudeStaysSmall(t *testing.T) {
	// ZigZag keeps small negatives short; -1 must not blow up to 10 bytes.
	if buf := AppendSvarint(nil, -1); len(buf) != 1 {
		t.Fatalf("svarint(-1) = %d bytes, want 1", len(buf))
	}
}

func TestString_RoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "#add-button", "héllo ▲"} {
		buf := AppendString(nil, s)
		got, n := String(buf)
		if n != len(buf) || got != s {
			t.Fatalf("String(%q) = (%q, %d)", s, got, n)
		}
	}
}

func TestString_ShortBuffer(t *testing.T) {
	buf := AppendString(nil, "truncated")
	if _, n := String(buf[:3]); n >= 0 {
		t.Fatalf("short buffer n = %d, want negative", n)
	}
}
