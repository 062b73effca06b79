package core

import "golang.org/x/sys/unix"

// endpointBufSize matches the ring capacity used elsewhere in the
// package.
const endpointBufSize = 1 << 16

// EndpointTransmissionLoop is the simplest of the three loops: a
// symmetric, unframed byte pump between sockFd (the TAP device on the
// server-side shell host) and the process's own stdin (0) / stdout (1),
// which carry the already-framed stream to/from the client. No framing
// is performed here — the client end is responsible for interpreting
// the length-prefixed stream.
func EndpointTransmissionLoop(sockFd int) {
	status := NewLoopStatus()
	teardown := InstallSigint(status)
	defer teardown()

	const stdin, stdout = 0, 1

	buf := make([]byte, endpointBufSize)

	ready := &fdSet{}
	ready.add(sockFd)
	ready.add(stdin)
	maxFD := sockFd
	if stdin > maxFD {
		maxFD = stdin
	}

	cur := &fdSet{}
	for status.Running() {
		cur.copyFrom(ready)
		if err := selectWait(maxFD, cur); err != nil {
			status.Store(ShouldAbort)
			writeStderr("endpoint select error\n")
			break
		}

		if cur.isSet(sockFd) {
			n, err := unix.Read(sockFd, buf)
			if err != nil || n == 0 {
				status.Store(ShouldAbort)
				writeStderr("endpoint sock read error\n")
				break
			}
			if err := FullWrite(stdout, buf[:n]); err != nil {
				status.Store(ShouldAbort)
				writeStderr("endpoint stdout write error\n")
				break
			}
		}

		if cur.isSet(stdin) {
			n, err := unix.Read(stdin, buf)
			if err != nil || n == 0 {
				status.Store(ShouldAbort)
				writeStderr("endpoint stdin read error\n")
				break
			}
			if err := FullWrite(sockFd, buf[:n]); err != nil {
				status.Store(ShouldAbort)
				writeStderr("endpoint sock write error\n")
				break
			}
		}
	}
}

// RingTransferLoop is the earlier, single-stream, ring-buffered revision
// of the client/endpoint transfer: it reads whole frames off tapFd one
// read() per packet, length-prefixes them onto streamWriteFd, and parses
// the length-prefixed byte stream arriving on streamReadFd back into
// whole frames written to tapFd. Kept for a client built against a
// single combined stream rather than the split lengths/packets channels.
//
// Returns true if the caller should reinit, false if it should abort.
func RingTransferLoop(streamReadFd, streamWriteFd, tapFd int) bool {
	status := NewLoopStatus()
	teardown := InstallSigint(status)
	defer teardown()

	frameBuf := make([]byte, LengthSize+MaxPayload)

	var ring Ring
	if err := ring.Setup(endpointBufSize); err != nil {
		return true
	}
	defer ring.Release()

	ready := &fdSet{}
	ready.add(streamReadFd)
	ready.add(tapFd)
	maxFD := streamReadFd
	if tapFd > maxFD {
		maxFD = tapFd
	}

	cur := &fdSet{}
	for status.Running() {
		cur.copyFrom(ready)
		if err := selectWait(maxFD, cur); err != nil {
			status.Store(ShouldReinit)
			writeStderr("ring select error\n")
			break
		}

		if cur.isSet(tapFd) {
			n, err := unix.Read(tapFd, frameBuf[LengthSize:])
			if err != nil || n == 0 {
				status.Store(ShouldAbort)
				writeStderr("short read on tap\n")
				break
			}
			EncodeLength(frameBuf, n)
			if err := FullWrite(streamWriteFd, frameBuf[:LengthSize+n]); err != nil {
				status.Store(ShouldReinit)
				writeStderr("ssh channel write error\n")
				break
			}
			continue
		}

		// Streams carry a continuous flow that may not land on packet
		// boundaries; buffer it and drain whole frames.
		if _, err := ring.Fill(streamReadFd); err != nil {
			status.Store(ShouldReinit)
			writeStderr("failure while reading ssh channel\n")
			break
		}

		for ring.Level() >= LengthSize {
			packetLen := int(ring.PeekU16BE())
			if ring.Level() < LengthSize+packetLen {
				break
			}
			ring.Pass(LengthSize)
			if err := ring.Flush(packetLen, tapFd); err != nil {
				status.Store(ShouldAbort)
				writeStderr("tap write error\n")
				break
			}
		}
	}

	return status.Load() == ShouldReinit
}
