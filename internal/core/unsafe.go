package core

import "unsafe"

// unsafeAdd returns base+n as a *byte, used to shrink an iovec's base
// pointer in place when a readv/writev call only partially consumes it
// (FullReadv/FullWritev in pio.go). base is always non-nil here since it
// points into a live Go slice's backing array.
func unsafeAdd(base *byte, n int) *byte {
	return (*byte)(unsafe.Add(unsafe.Pointer(base), n))
}
