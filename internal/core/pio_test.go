package core

import (
	"io"
	"os"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

func TestFullReadWriteRoundTrip(t *testing.T) {
	rp, wp, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer rp.Close()
	defer wp.Close()

	payload := []byte("a somewhat long payload that will not fit in one pipe write burst maybe")

	done := make(chan error, 1)
	go func() {
		done <- FullWrite(int(wp.Fd()), payload)
	}()

	got := make([]byte, len(payload))
	if err := FullRead(int(rp.Fd()), got); err != nil {
		t.Fatalf("FullRead: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("FullWrite: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("mismatch: got %q, want %q", got, payload)
	}
}

func TestFullReadShortReadError(t *testing.T) {
	rp, wp, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer rp.Close()

	wp.Write([]byte("ab"))
	wp.Close() // EOF after 2 bytes

	buf := make([]byte, 4)
	if err := FullRead(int(rp.Fd()), buf); err == nil {
		t.Fatalf("expected short read error, got nil")
	}
}

func iovecBytes(iov unix.Iovec) []byte {
	return unsafe.Slice(iov.Base, int(iov.Len))
}

// fakeIovOp simulates a readv/writev-like syscall that transfers at most
// maxPerCall bytes per invocation, split arbitrarily across the iovec
// entries it's given. It records everything it "read" into got, so the
// test can check that fullIovWork's recursive adjust/restore logic
// eventually transfers the exact byte sequence regardless of how the
// underlying op chops it up.
func fakeIovOp(maxPerCall int, got *[]byte) func([]unix.Iovec) (int, error) {
	return func(iovs []unix.Iovec) (int, error) {
		remaining := maxPerCall
		total := 0
		for i := range iovs {
			if remaining <= 0 {
				break
			}
			b := iovecBytes(iovs[i])
			n := len(b)
			if n > remaining {
				n = remaining
			}
			if n == 0 {
				continue
			}
			*got = append(*got, b[:n]...)
			total += n
			remaining -= n
		}
		if total == 0 {
			return 0, io.EOF
		}
		return total, nil
	}
}

func TestFullIovWorkPartialTransfers(t *testing.T) {
	a := []byte("abcdef")
	b := []byte("0123456789")
	c := []byte("XYZ")

	iovs := []unix.Iovec{mkIovec(a), mkIovec(b), mkIovec(c)}
	expected := len(a) + len(b) + len(c)

	var got []byte
	op := fakeIovOp(4, &got) // forces many partial transfers

	origBases := make([]*byte, len(iovs))
	origLens := make([]uint64, len(iovs))
	for i, iov := range iovs {
		origBases[i] = iov.Base
		origLens[i] = iov.Len
	}

	if err := fullIovWork(op, iovs, expected); err != nil {
		t.Fatalf("fullIovWork: %v", err)
	}

	want := string(a) + string(b) + string(c)
	if string(got) != want {
		t.Fatalf("transferred bytes mismatch: got %q, want %q", got, want)
	}

	for i, iov := range iovs {
		if iov.Base != origBases[i] || iov.Len != origLens[i] {
			t.Fatalf("iovec %d not restored: base/len changed", i)
		}
	}
}

func TestFullIovWorkZeroExpected(t *testing.T) {
	if err := fullIovWork(func(iovs []unix.Iovec) (int, error) {
		t.Fatalf("op should not be called when expected is 0")
		return 0, nil
	}, nil, 0); err != nil {
		t.Fatalf("expected nil error for zero-length transfer, got %v", err)
	}
}
