package core

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrShortRead is returned by FullRead when read() returns 0 before the
// requested byte count was reached.
var ErrShortRead = errors.New("core: short read")

// FullRead reads exactly len(buf) bytes from fd, retrying on short reads,
// since a pipe's reader side routinely returns less than requested
// without that meaning end-of-stream.
func FullRead(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := unix.Read(fd, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrShortRead
		}
		buf = buf[n:]
	}
	return nil
}

// FullWrite writes exactly len(buf) bytes to fd, retrying on short writes.
func FullWrite(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := unix.Write(fd, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrShortRead
		}
		buf = buf[n:]
	}
	return nil
}

// FullReadv performs readv(fd, iovs) repeatedly until exactly expected
// bytes have been transferred in total: on a short transfer it advances
// past fully-consumed iovec entries, shrinks the iovec at which the
// short transfer stopped, recurses on the remainder, and restores that
// iovec's original base/length on return so the caller can reuse the
// array unchanged.
func FullReadv(fd int, iovs []unix.Iovec, expected int) error {
	return fullIovWork(func(iov []unix.Iovec) (int, error) {
		return unix.Readv(fd, iov)
	}, iovs, expected)
}

// FullWritev is FullReadv's writev counterpart.
func FullWritev(fd int, iovs []unix.Iovec, expected int) error {
	return fullIovWork(func(iov []unix.Iovec) (int, error) {
		return unix.Writev(fd, iov)
	}, iovs, expected)
}

func fullIovWork(op func([]unix.Iovec) (int, error), iovs []unix.Iovec, expected int) error {
	if expected == 0 {
		return nil
	}

	n, err := op(iovs)
	if err != nil {
		return err
	}
	if n == expected {
		return nil
	}
	if n == 0 {
		return ErrShortRead
	}

	// Find how many whole iovec entries the transfer consumed, and where
	// within the following entry it stopped.
	remaining := n
	idx := 0
	for idx < len(iovs) && remaining >= iovLen(iovs[idx]) {
		remaining -= iovLen(iovs[idx])
		idx++
	}

	if idx == len(iovs) {
		// Transferred exactly the sum of all entries but less than
		// expected — caller asked for more than iovs describes.
		return ErrShortRead
	}

	origBase := iovs[idx].Base
	origLen := iovLen(iovs[idx])

	// Shrink the partially-consumed entry to its untransferred remainder.
	advanced := advanceIovec(&iovs[idx], remaining)
	defer func() {
		iovs[idx].Base = origBase
		iovs[idx].SetLen(origLen)
	}()
	_ = advanced

	if err := fullIovWork(op, iovs[idx:], expected-n); err != nil {
		return err
	}
	return nil
}

func iovLen(iov unix.Iovec) int {
	return int(iov.Len)
}

// advanceIovec moves iov's base forward by n bytes and shrinks its length
// by the same amount, in place.
func advanceIovec(iov *unix.Iovec, n int) int {
	if n == 0 {
		return 0
	}
	base := unsafeAdd(iov.Base, n)
	iov.Base = base
	iov.SetLen(iovLen(*iov) - n)
	return n
}
