package core

import (
	"golang.org/x/sys/unix"
)

// ClientChannels names the five file descriptors the client transmission
// loop moves frames between: the lengths and packets halves of the
// byte-stream channel to the remote shell, and the local socket (TAP
// device or L2TP UDP socket).
type ClientChannels struct {
	LengthsStdin  int
	LengthsStdout int
	PacketsStdin  int
	PacketsStdout int
	Sock          int
}

// ClientTransmissionLoop is the batched, two-channel client loop: it
// pumps frames between the local socket and the remote shell's lengths
// and packets streams until it must stop. It returns true if the caller
// should rebuild the channel (ShouldReinit) and false if the caller
// should abort (ShouldAbort, e.g. on SIGINT).
func ClientTransmissionLoop(ch ClientChannels) bool {
	status := NewLoopStatus()
	teardown := InstallSigint(status)
	defer teardown()

	bufs := NewIOBuffers(PacketBatchSize, MaxPayload)
	lengthsBuf := make([]byte, LengthSize*PacketBatchSize)

	ready := &fdSet{}
	ready.add(ch.Sock)
	ready.add(ch.LengthsStdout)
	maxFD := ch.Sock
	if ch.LengthsStdout > maxFD {
		maxFD = ch.LengthsStdout
	}

	cur := &fdSet{}
	for status.Running() {
		cur.copyFrom(ready)
		if err := selectWait(maxFD, cur); err != nil {
			status.Store(ShouldReinit)
			writeStderr("client select error\n")
			break
		}

		if cur.isSet(ch.Sock) {
			if !clientSockToStreams(ch, bufs, lengthsBuf) {
				status.Store(ShouldReinit)
				break
			}
			continue
		}

		if cur.isSet(ch.LengthsStdout) {
			if !clientStreamsToSock(ch, bufs, lengthsBuf, status) {
				break
			}
		}
	}

	return status.Load() == ShouldReinit
}

// clientSockToStreams drains a batch of datagrams off the local socket in
// one non-blocking receive, then forwards them to the remote shell as one
// stream write of the concatenated lengths followed by one exact writev
// of the concatenated payloads.
func clientSockToStreams(ch ClientChannels, bufs *IOBuffers, lengthsBuf []byte) bool {
	n, err := recvBatch(ch.Sock, bufs.Payloads)
	if err != nil || n == 0 {
		writeStderr("client sock recv error\n")
		return false
	}

	for i := 0; i < n; i++ {
		EncodeLength(lengthsBuf[i*LengthSize:], len(bufs.Payloads[i]))
	}

	if err := FullWrite(ch.LengthsStdin, lengthsBuf[:n*LengthSize]); err != nil {
		writeStderr("client lengths write error\n")
		return false
	}

	iovs := make([]unix.Iovec, n)
	total := 0
	for i := 0; i < n; i++ {
		iovs[i] = mkIovec(bufs.Payloads[i])
		total += len(bufs.Payloads[i])
	}
	if err := FullWritev(ch.PacketsStdin, iovs, total); err != nil {
		writeStderr("client packets write error\n")
		return false
	}
	return true
}

// clientStreamsToSock reads a batch of lengths from the remote shell,
// reads the matching payloads exactly, and sends them in one batched
// send onto the local socket. Returns false and updates status when the
// loop must stop.
func clientStreamsToSock(ch ClientChannels, bufs *IOBuffers, lengthsBuf []byte, status *LoopStatus) bool {
	total, err := readLengthsBatch(ch.LengthsStdout, lengthsBuf)
	if err != nil {
		status.Store(ShouldReinit)
		writeStderr("client lengths read error\n")
		return false
	}

	frameCount := total / LengthSize
	if frameCount == 0 {
		return true
	}

	iovs := make([]unix.Iovec, frameCount)
	sendBufs := make([][]byte, frameCount)
	expected := 0
	for i := 0; i < frameCount; i++ {
		length := DecodeLength(lengthsBuf[i*LengthSize:])
		payload := bufs.Payloads[i][:length]
		sendBufs[i] = payload
		iovs[i] = mkIovec(payload)
		expected += length
	}

	if err := FullReadv(ch.PacketsStdout, iovs, expected); err != nil {
		status.Store(ShouldReinit)
		writeStderr("client packets read error\n")
		return false
	}

	sent, err := sendBatch(ch.Sock, sendBufs)
	if err != nil || sent < frameCount {
		status.Store(ShouldAbort)
		writeStderr("client sendmmsg short\n")
		return false
	}

	return true
}

// readLengthsBatch performs a blocking read that returns at least enough
// bytes to describe some whole number of frames. A read returning a byte
// count not on a length boundary is unusual but not fatal: the loop just
// keeps reading one byte at a time until it lands back on a boundary.
func readLengthsBatch(fd int, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrShortRead
	}
	total := n
	for total%LengthSize != 0 {
		m, err := unix.Read(fd, buf[total:total+1])
		if err != nil {
			return 0, err
		}
		if m == 0 {
			return 0, ErrShortRead
		}
		total += m
	}
	return total, nil
}

// writeStderr writes a short fixed diagnostic string with no allocation
// on the error path.
func writeStderr(msg string) {
	_ = FullWrite(2, []byte(msg))
}
