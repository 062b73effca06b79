package core

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrEmptyRead is a read() returning 0 during a ring fill, a distinct,
// logged failure from a negative (errno) result.
var ErrEmptyRead = errors.New("core: empty read on ring fill")

// Ring is a bounded byte ring with split-segment fill/flush via
// scatter-gather I/O.
//
// level is the distance from flushPos to fillPos modulo cap. Reads only
// occur at flushPos; writes only at fillPos. Fill and flush may happen in
// the same driving-loop iteration but never concurrently — the ring has no
// internal locking.
type Ring struct {
	cap       int
	level     int
	buf       []byte
	fillPos   int
	flushPos  int
}

// Setup allocates a ring of the given capacity.
func (r *Ring) Setup(size int) error {
	if size <= 0 {
		return errors.New("core: ring size must be positive")
	}
	r.cap = size
	r.level = 0
	r.buf = make([]byte, size)
	r.fillPos = 0
	r.flushPos = 0
	return nil
}

// Release drops the backing store. Safe to call on a zero-value Ring.
func (r *Ring) Release() {
	r.buf = nil
	r.cap = 0
	r.level = 0
	r.fillPos = 0
	r.flushPos = 0
}

func (r *Ring) Level() int     { return r.level }
func (r *Ring) Cap() int       { return r.cap }
func (r *Ring) Empty() bool    { return r.level == 0 }
func (r *Ring) Full() bool     { return r.level == r.cap }
func (r *Ring) Available() int { return r.cap - r.level }
func (r *Ring) HasRoom(k int) bool { return r.Available() >= k }

// Fill reads from fd into the free region of the ring, via a single read
// when the free region is contiguous or a two-segment readv otherwise.
func (r *Ring) Fill(fd int) (int, error) {
	var iovs [2]unix.Iovec
	n := 0

	if r.fillPos < r.flushPos {
		iovs[n] = mkIovec(r.buf[r.fillPos:r.flushPos])
		n++
	} else {
		if r.fillPos < r.cap {
			iovs[n] = mkIovec(r.buf[r.fillPos:r.cap])
			n++
		}
		if r.flushPos > 0 {
			iovs[n] = mkIovec(r.buf[0:r.flushPos])
			n++
		}
	}

	if n == 0 || r.level == r.cap {
		// Ring is full; nothing to read into.
		return 0, nil
	}

	read, err := unix.Readv(fd, iovs[:n])
	if err != nil {
		return 0, err
	}
	if read == 0 {
		return 0, ErrEmptyRead
	}

	r.fillPos += read
	if r.fillPos >= r.cap {
		r.fillPos -= r.cap
	}
	r.level += read
	return read, nil
}

// Flush writes exactly up to n bytes starting at flushPos, via a single
// write when the data is contiguous or a two-segment writev otherwise.
// On success it advances flushPos and shrinks level by the bytes
// actually written; when level reaches 0 both pointers reset to the
// base for cache locality (not an invariant callers should rely on).
func (r *Ring) Flush(n int, fd int) error {
	iovs, _ := r.buildFlushIovecs(n)
	written, err := unix.Writev(fd, iovs)
	if err != nil {
		return err
	}
	r.advanceFlush(written)
	return nil
}

// FlushBuildIovecs does not perform I/O. It fills an iovec slice
// describing the n bytes at flushPos (one or two segments) and advances
// flushPos/level as if the data will be sent — the caller must then send
// exactly those bytes (used by the batched sendmmsg path).
func (r *Ring) FlushBuildIovecs(n int) []unix.Iovec {
	iovs, total := r.buildFlushIovecs(n)
	r.advanceFlush(total)
	return iovs
}

func (r *Ring) buildFlushIovecs(n int) ([]unix.Iovec, int) {
	var iovs []unix.Iovec
	total := 0

	if r.fillPos > r.flushPos {
		iovs = append(iovs, mkIovec(r.buf[r.flushPos:r.flushPos+n]))
		total = n
	} else {
		first := r.cap - r.flushPos
		if n <= first {
			first = n
		}
		iovs = append(iovs, mkIovec(r.buf[r.flushPos:r.flushPos+first]))
		total = first
		remaining := n - first
		if remaining > 0 {
			iovs = append(iovs, mkIovec(r.buf[0:remaining]))
			total += remaining
		}
	}
	return iovs, total
}

func (r *Ring) advanceFlush(n int) {
	r.flushPos += n
	if r.flushPos >= r.cap {
		r.flushPos -= r.cap
	}
	r.level -= n
	if r.level == 0 {
		r.fillPos = 0
		r.flushPos = 0
	}
}

// Pass advances flushPos by k without I/O, used to consume a length
// prefix once its value has been peeked.
func (r *Ring) Pass(k int) {
	r.flushPos += k
	if r.flushPos >= r.cap {
		r.flushPos -= r.cap
	}
	r.level -= k
}

// PeekU16BE reads the two bytes at flushPos without consuming them,
// handling the wrap edge case.
func (r *Ring) PeekU16BE() uint16 {
	hi := r.buf[r.flushPos]
	var lo byte
	if r.flushPos+1 == r.cap {
		lo = r.buf[0]
	} else {
		lo = r.buf[r.flushPos+1]
	}
	return uint16(hi)<<8 | uint16(lo)
}

// WriteU8 appends one byte at fillPos with wrap.
func (r *Ring) WriteU8(b byte) {
	r.buf[r.fillPos] = b
	r.fillPos++
	if r.fillPos >= r.cap {
		r.fillPos = 0
	}
	r.level++
}

// WriteU16BE appends a big-endian uint16 at fillPos with wrap.
func (r *Ring) WriteU16BE(v uint16) {
	r.WriteU8(byte(v >> 8))
	r.WriteU8(byte(v))
}

func mkIovec(b []byte) unix.Iovec {
	var iov unix.Iovec
	if len(b) > 0 {
		iov.Base = &b[0]
	}
	iov.SetLen(len(b))
	return iov
}
