package core

import (
	"os"
	"testing"
)

func TestRingEmptyFullInvariants(t *testing.T) {
	var r Ring
	if err := r.Setup(8); err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer r.Release()

	if !r.Empty() {
		t.Fatalf("expected empty ring on setup")
	}
	if r.Full() {
		t.Fatalf("did not expect full ring on setup")
	}
	if r.Available() != 8 {
		t.Fatalf("expected 8 bytes available, got %d", r.Available())
	}

	r.WriteU8(1)
	r.WriteU8(2)
	if r.Level() != 2 {
		t.Fatalf("expected level 2, got %d", r.Level())
	}
	if !r.HasRoom(6) {
		t.Fatalf("expected room for 6 more bytes")
	}
	if r.HasRoom(7) {
		t.Fatalf("did not expect room for 7 more bytes")
	}

	for r.Available() > 0 {
		r.WriteU8(0xff)
	}
	if !r.Full() {
		t.Fatalf("expected full ring")
	}
	if r.Level() != 8 {
		t.Fatalf("expected level == capacity, got %d", r.Level())
	}
}

func TestRingPeekU16BEAcrossWrap(t *testing.T) {
	var r Ring
	if err := r.Setup(4); err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer r.Release()

	// Fill 3 bytes then consume them via Pass so flushPos sits at index 3,
	// one byte before the end of a 4-byte ring: the next WriteU16BE wraps.
	r.WriteU8(0xAA)
	r.WriteU8(0xBB)
	r.WriteU8(0xCC)
	r.Pass(3)
	if !r.Empty() {
		t.Fatalf("expected empty ring after passing all bytes")
	}

	r.WriteU16BE(0xBEEF)
	got := r.PeekU16BE()
	if got != 0xBEEF {
		t.Fatalf("expected 0xBEEF, got 0x%04X", got)
	}
}

func TestRingFillFlushRoundTrip(t *testing.T) {
	rp, wp, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer rp.Close()
	defer wp.Close()

	payload := []byte("hello ring buffer")
	if _, err := wp.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	var r Ring
	if err := r.Setup(64); err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer r.Release()

	if _, err := r.Fill(int(rp.Fd())); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if r.Level() != len(payload) {
		t.Fatalf("expected level %d, got %d", len(payload), r.Level())
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer outR.Close()
	defer outW.Close()

	if err := r.Flush(r.Level(), int(outW.Fd())); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !r.Empty() {
		t.Fatalf("expected empty ring after flushing everything")
	}

	got := make([]byte, len(payload))
	if _, err := outR.Read(got); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, payload)
	}
}
