package core

import "golang.org/x/sys/unix"

// recvBatch receives up to len(buffers) datagrams from fd in one
// recvmmsg(2) call, non-blocking. On return, buffers[i] for i in [0, n)
// has been re-sliced by the kernel to the length actually received for
// that datagram. buffers themselves must be sized to MaxPayload on
// entry; RecvmmsgBuffers shrinks, never grows, the slices it is given.
func recvBatch(fd int, buffers [][]byte) (int, error) {
	return unix.RecvmmsgBuffers(fd, buffers, unix.MSG_DONTWAIT, nil)
}

// sendBatch sends len(buffers) datagrams on fd in one sendmmsg(2) call.
// A return value less than len(buffers) is a short send, treated as
// fatal by callers since sendmmsg is not expected to partially fail
// under normal operation.
func sendBatch(fd int, buffers [][]byte) (int, error) {
	return unix.SendmmsgBuffers(fd, buffers, 0)
}
