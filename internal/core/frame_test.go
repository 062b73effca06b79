package core

import "testing"

func TestEncodeDecodeLengthRoundTrip(t *testing.T) {
	cases := []int{0, 1, 64, 1514, 4096, 65535}
	buf := make([]byte, LengthSize)
	for _, n := range cases {
		EncodeLength(buf, n)
		got := DecodeLength(buf)
		if got != n {
			t.Fatalf("round trip mismatch: encoded %d, decoded %d", n, got)
		}
	}
}

func TestSessionIDOffset(t *testing.T) {
	frame := make([]byte, 12)
	// Bytes before the session id field must not affect extraction.
	frame[0], frame[1], frame[2], frame[3] = 0xAA, 0xBB, 0xCC, 0xDD
	EncodeLength(frame[4:], 0) // placeholder, overwritten below
	frame[4], frame[5], frame[6], frame[7] = 0x00, 0x00, 0x01, 0x02

	got := SessionID(frame)
	want := uint32(0x00000102)
	if got != want {
		t.Fatalf("expected session id 0x%08X, got 0x%08X", want, got)
	}
}
