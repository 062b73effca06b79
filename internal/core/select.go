package core

import "golang.org/x/sys/unix"

// fdSet is a small wrapper over unix.FdSet giving it FD_ZERO/FD_SET/
// FD_ISSET-style operations. A modern edge- or level-triggered
// multiplexer would scale to more descriptors, but the protocol itself
// does not depend on select-specific semantics, so select is kept here
// for a small, readable readiness wait.
type fdSet struct {
	set unix.FdSet
}

func (s *fdSet) zero() {
	s.set = unix.FdSet{}
}

func (s *fdSet) add(fd int) {
	s.set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func (s *fdSet) clear(fd int) {
	s.set.Bits[fd/64] &^= 1 << (uint(fd) % 64)
}

func (s *fdSet) isSet(fd int) bool {
	return s.set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}

// copyFrom snapshots persistent into s, exactly like the C loop's
// `fds = init_fds;` before each select() call.
func (s *fdSet) copyFrom(other *fdSet) {
	s.set = other.set
}

// selectWait blocks until one of the fds registered in ready is readable,
// or an error occurs. maxFD must be the highest fd registered, per
// select(2) semantics.
func selectWait(maxFD int, ready *fdSet) error {
	n, err := unix.Select(maxFD+1, &ready.set, nil, nil, nil)
	if err != nil {
		return err
	}
	if n < 1 {
		return errSelectNone
	}
	return nil
}

var errSelectNone = selectNoneError{}

type selectNoneError struct{}

func (selectNoneError) Error() string { return "core: select returned no ready descriptors" }
