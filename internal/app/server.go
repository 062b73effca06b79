package app

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"walt/internal/conf"
	"walt/internal/core"
	"walt/internal/flog"
)

// sessionBlockSize is the length of the contiguous run of descriptors
// allocated per client, of which core.SessionFDs uses only offsets +0,
// +1, +3, +4.
const sessionBlockSize = 8

// firstSessionBase is the first fd block handed out, kept well clear of
// core.ServerSockFD/core.L2TPSockFD and the process's own stdio.
const firstSessionBase = 16

// serverOrchestrator implements core.Upcalls by owning the AF_UNIX
// control listener new shell channels announce themselves on: each
// connection passes its 4 session fds (lengths read/write, packets
// read/write) via SCM_RIGHTS, which the orchestrator dup2's into the next
// free contiguous block so core's fixed-offset convention holds.
type serverOrchestrator struct {
	mu       sync.Mutex
	nextBase int
	sessions map[uint32]sessionFds
}

type sessionFds struct {
	lengthsRead, lengthsWrite, packetsRead, packetsWrite int
}

// RunServer binds the control socket and the shared L2TP UDP socket, dup2's
// them onto the fixed fd numbers internal/core expects, and runs
// core.ServerTransmissionLoop until SIGINT or a fatal upcall failure.
func RunServer(cfg *conf.Conf) error {
	if err := bindFixedSockets(cfg.Server); err != nil {
		return err
	}

	orch := &serverOrchestrator{
		nextBase: firstSessionBase,
		sessions: make(map[uint32]sessionFds),
	}

	flog.Infof("app: server loop starting, control=%s l2tp=%s", cfg.Server.ControlSocket, cfg.Server.L2TPAddr)
	core.ServerTransmissionLoop(orch)
	return nil
}

// bindFixedSockets creates the control and L2TP sockets and dup2's them
// onto core.ServerSockFD/core.L2TPSockFD, the fixed fd numbers the
// orchestrator is expected to provide to the core loop.
func bindFixedSockets(cfg conf.Server) error {
	os.Remove(cfg.ControlSocket)

	ctrlFd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("app: control socket: %w", err)
	}
	if err := unix.Bind(ctrlFd, &unix.SockaddrUnix{Name: cfg.ControlSocket}); err != nil {
		return fmt.Errorf("app: bind control socket: %w", err)
	}
	if err := unix.Listen(ctrlFd, 16); err != nil {
		return fmt.Errorf("app: listen control socket: %w", err)
	}
	if err := dup2Close(ctrlFd, core.ServerSockFD); err != nil {
		return err
	}

	udpAddr, err := net4SockaddrFromString(cfg.L2TPAddr)
	if err != nil {
		return fmt.Errorf("app: l2tp addr: %w", err)
	}
	udpFd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return fmt.Errorf("app: l2tp socket: %w", err)
	}
	if err := unix.Bind(udpFd, udpAddr); err != nil {
		return fmt.Errorf("app: bind l2tp socket: %w", err)
	}
	return dup2Close(udpFd, core.L2TPSockFD)
}

func dup2Close(fd, target int) error {
	if fd == target {
		return nil
	}
	if err := unix.Dup2(fd, target); err != nil {
		return fmt.Errorf("app: dup2 %d -> %d: %w", fd, target, err)
	}
	unix.Close(fd)
	return nil
}

// OnConnect accepts one pending control connection and receives its 4
// session fds via SCM_RIGHTS, dup2'ing them into the next free block.
func (o *serverOrchestrator) OnConnect() int32 {
	o.mu.Lock()
	defer o.mu.Unlock()

	connFd, _, err := unix.Accept(core.ServerSockFD)
	if err != nil {
		flog.Errorf("app: accept control connection: %v", err)
		return -1
	}
	defer unix.Close(connFd)

	buf := make([]byte, 1)
	oob := make([]byte, unix.CmsgSpace(4*4))
	_, oobn, _, _, err := unix.Recvmsg(connFd, buf, oob, 0)
	if err != nil {
		flog.Errorf("app: recvmsg on control connection: %v", err)
		return -1
	}

	scms, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil || len(scms) == 0 {
		flog.Errorf("app: parsing control message: %v", err)
		return -1
	}
	fds, err := unix.ParseUnixRights(&scms[0])
	if err != nil || len(fds) != 4 {
		flog.Errorf("app: expected 4 passed fds, got %d: %v", len(fds), err)
		return -1
	}

	base := o.nextBase
	o.nextBase += sessionBlockSize

	sess := sessionFds{
		lengthsRead:  base + 0,
		lengthsWrite: base + 1,
		packetsRead:  base + 3,
		packetsWrite: base + 4,
	}
	slots := []int{sess.lengthsRead, sess.lengthsWrite, sess.packetsRead, sess.packetsWrite}
	for i, fd := range fds {
		if err := dup2Close(fd, slots[i]); err != nil {
			flog.Errorf("app: placing session fd: %v", err)
			return -1
		}
	}

	o.sessions[uint32(base)] = sess
	flog.Infof("app: session %d connected (base fd %d)", base, base)
	return int32(base)
}

// OnDisconnect closes a session's fds and reports the new high-water mark
// among remaining sessions' descriptors.
func (o *serverOrchestrator) OnDisconnect(sessionID uint32) int32 {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, ok := o.sessions[sessionID]
	if !ok {
		return int32(o.maxFDLocked())
	}
	unix.Close(sess.lengthsRead)
	unix.Close(sess.lengthsWrite)
	unix.Close(sess.packetsRead)
	unix.Close(sess.packetsWrite)
	delete(o.sessions, sessionID)
	flog.Infof("app: session %d disconnected", sessionID)

	return int32(o.maxFDLocked())
}

func (o *serverOrchestrator) maxFDLocked() int {
	max := core.L2TPSockFD
	for _, sess := range o.sessions {
		if sess.packetsWrite > max {
			max = sess.packetsWrite
		}
	}
	return max
}
