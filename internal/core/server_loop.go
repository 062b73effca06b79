package core

import "golang.org/x/sys/unix"

// Well-known server-side file descriptors. The orchestrator (out of
// scope for this package) arranges for these to be open before
// ServerTransmissionLoop is called.
const (
	ServerSockFD = 3 // AF_UNIX listener for new shell channels
	L2TPSockFD   = 4 // shared L2TP UDP socket
)

// SessionFDs is the block of four file descriptors the orchestrator
// allocates per client, at fixed offsets +0, +1, +3, +4 from the session
// base. The session id equals LengthsRead.
type SessionFDs struct {
	LengthsRead   int
	LengthsWrite  int
	PacketsRead   int
	PacketsWrite  int
}

func sessionFromBase(base int) SessionFDs {
	return SessionFDs{
		LengthsRead:  base + 0,
		LengthsWrite: base + 1,
		PacketsRead:  base + 3,
		PacketsWrite: base + 4,
	}
}

// Upcalls is the host capability object the server loop calls into for
// connection lifecycle events it cannot itself decide.
type Upcalls interface {
	// OnConnect returns the new session's base fd, 0 if only the first
	// half of a channel pair has arrived so far, or -1 on fatal error.
	OnConnect() int32
	// OnDisconnect tears the session down and returns the new max fd to
	// watch, or -1 on fatal error.
	OnDisconnect(sessionID uint32) int32
}

// serverState carries the loop's two readiness sets: persistent is
// rebuilt into current at the top of every iteration, and both are
// mutated by the disconnect path so that a client dropped partway
// through one scan is not revisited later in that same scan.
type serverState struct {
	persistent fdSet
	current    fdSet
	maxFD      int
	sessions   map[uint32]SessionFDs
	status     *LoopStatus
}

// ServerTransmissionLoop is the L2TP-dispatching server loop. It runs
// until a SIGINT or a fatal upcall/syscall failure.
func ServerTransmissionLoop(up Upcalls) {
	status := NewLoopStatus()
	teardown := InstallSigint(status)
	defer teardown()

	st := &serverState{
		maxFD:    L2TPSockFD,
		sessions: make(map[uint32]SessionFDs),
		status:   status,
	}
	st.persistent.add(ServerSockFD)
	st.persistent.add(L2TPSockFD)

	bufs := NewIOBuffers(PacketBatchSize, MaxPayload)
	lengthsBuf := make([]byte, LengthSize*PacketBatchSize)

	for status.Running() {
		st.current.copyFrom(&st.persistent)
		if err := selectWait(st.maxFD, &st.current); err != nil {
			status.Store(ShouldAbort)
			writeStderr("server select error\n")
			break
		}

		if st.current.isSet(ServerSockFD) {
			if !st.handleAccept(up) {
				status.Store(ShouldAbort)
				break
			}
		}

		if st.current.isSet(L2TPSockFD) {
			st.handleL2TP(up, bufs)
		}

		st.handleClientStreams(up, lengthsBuf)
	}
}

func (st *serverState) handleAccept(up Upcalls) bool {
	base := up.OnConnect()
	if base == -1 {
		writeStderr("on_connect fatal\n")
		return false
	}
	if base == 0 {
		// First half of a channel pair arrived; orchestrator awaits the
		// second half before a session exists.
		return true
	}

	sess := sessionFromBase(int(base))
	sid := uint32(sess.LengthsRead)
	st.sessions[sid] = sess
	st.persistent.add(sess.LengthsRead)
	if sess.PacketsWrite > st.maxFD {
		st.maxFD = sess.PacketsWrite
	}
	return true
}

// handleL2TP is the L2TP datagram path: a batched receive followed by
// dispatch into consecutive same-session sub-batches.
func (st *serverState) handleL2TP(up Upcalls, bufs *IOBuffers) {
	n, err := recvBatch(L2TPSockFD, bufs.Payloads)
	if err != nil || n == 0 {
		return
	}

	i := 0
	for i < n {
		sid := SessionID(bufs.Payloads[i])
		j := i + 1
		for j < n && SessionID(bufs.Payloads[j]) == sid {
			j++
		}
		st.dispatchSubBatch(up, sid, bufs.Payloads[i:j])
		i = j
	}
}

// dispatchSubBatch writes one run of consecutive same-session datagrams
// to that session's lengths/packets write fds. A session disconnected
// earlier in the same batch (no longer in the persistent readiness set)
// is silently skipped.
func (st *serverState) dispatchSubBatch(up Upcalls, sid uint32, datagrams [][]byte) {
	sess, ok := st.sessions[sid]
	if !ok || !st.persistent.isSet(sess.LengthsRead) {
		return
	}

	lengthsBuf := make([]byte, LengthSize*len(datagrams))
	for k, dg := range datagrams {
		EncodeLength(lengthsBuf[k*LengthSize:], len(dg))
	}

	if err := FullWrite(sess.LengthsWrite, lengthsBuf); err != nil {
		st.disconnect(up, sid)
		return
	}

	iovs := make([]unix.Iovec, len(datagrams))
	total := 0
	for k, dg := range datagrams {
		iovs[k] = mkIovec(dg)
		total += len(dg)
	}
	if err := FullWritev(sess.PacketsWrite, iovs, total); err != nil {
		st.disconnect(up, sid)
	}
}

// handleClientStreams handles any ready fd that is exactly some
// session's lengths_read: it carries a batch of frames to forward onto
// the shared L2TP socket.
func (st *serverState) handleClientStreams(up Upcalls, lengthsBuf []byte) {
	for sid, sess := range st.sessions {
		if sess.LengthsRead == ServerSockFD || sess.LengthsRead == L2TPSockFD {
			continue
		}
		if !st.current.isSet(sess.LengthsRead) {
			continue
		}

		total, err := readLengthsBatch(sess.LengthsRead, lengthsBuf)
		if err != nil {
			st.disconnect(up, sid)
			continue
		}

		frameCount := total / LengthSize
		if frameCount == 0 {
			continue
		}

		bufs := make([][]byte, frameCount)
		iovs := make([]unix.Iovec, frameCount)
		expected := 0
		for i := 0; i < frameCount; i++ {
			length := DecodeLength(lengthsBuf[i*LengthSize:])
			bufs[i] = make([]byte, length)
			iovs[i] = mkIovec(bufs[i])
			expected += length
		}

		if err := FullReadv(sess.PacketsRead, iovs, expected); err != nil {
			st.disconnect(up, sid)
			continue
		}

		sent, err := sendBatch(L2TPSockFD, bufs)
		if err != nil || sent < frameCount {
			st.disconnect(up, sid)
		}
	}
}

// disconnect clears session_id+0 from both the persistent set and the
// current iteration's snapshot, so a client dropped mid-scan is not
// revisited in the same pass, then calls OnDisconnect to learn the new
// max fd to watch.
func (st *serverState) disconnect(up Upcalls, sid uint32) {
	sess, ok := st.sessions[sid]
	if !ok {
		return
	}
	st.persistent.clear(sess.LengthsRead)
	st.current.clear(sess.LengthsRead)
	delete(st.sessions, sid)

	newMax := up.OnDisconnect(sid)
	if newMax == -1 {
		st.status.Store(ShouldAbort)
		writeStderr("on_disconnect fatal\n")
		return
	}
	st.maxFD = int(newMax)
}
