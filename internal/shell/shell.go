// Package shell establishes the authenticated interactive shell session
// the core engine multiplexes L2 frames over, and bridges its
// io.Reader/io.Writer channel API onto the raw file descriptors
// internal/core operates on via readv/writev/select.
package shell

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"walt/internal/conf"
	"walt/internal/core"
	"walt/internal/flog"
)

const dialTimeout = 10 * time.Second

// Dial opens the SSH connection a client's shell channels are carved out
// of. The server's host key is not verified: the client config uses
// ssh.InsecureIgnoreHostKey, and conf.SSH has no host key setting.
func Dial(cfg *conf.SSH) (*ssh.Client, error) {
	key, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("shell: reading private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("shell: parsing private key: %w", err)
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	}

	client, err := ssh.Dial("tcp", cfg.Addr(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("shell: dial %s: %w", cfg.Addr(), err)
	}
	flog.Infof("shell: connected to %s as %s", cfg.Addr(), cfg.User)
	return client, nil
}

// Channel is one exec session's stdio, bridged onto a pair of raw file
// descriptors via os.Pipe so internal/core can treat it exactly like any
// other fd in its select loop.
type Channel struct {
	session *ssh.Session
	ReadFd  int // core reads frames arriving from the remote here
	WriteFd int // core writes frames destined for the remote here
	closers []io.Closer
}

// Open starts cfg.RemoteCommand with the given argument (identifying which
// logical sub-channel this is, e.g. "lengths" or "packets" for the
// two-channel variant) and returns its bridged stdio.
func Open(client *ssh.Client, cfg *conf.SSH, arg string) (*Channel, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("shell: new session: %w", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("shell: stdin pipe: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("shell: stdout pipe: %w", err)
	}

	command := cfg.RemoteCommand
	if arg != "" {
		command = fmt.Sprintf("%s %s", cfg.RemoteCommand, arg)
	}
	if err := session.Start(command); err != nil {
		session.Close()
		return nil, fmt.Errorf("shell: start %q: %w", command, err)
	}

	inR, inW, err := os.Pipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("shell: pipe: %w", err)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		session.Close()
		inR.Close()
		inW.Close()
		return nil, fmt.Errorf("shell: pipe: %w", err)
	}

	go copyAndClose(stdin, inR, "stdin")
	go copyAndClose(outW, stdout, "stdout")

	return &Channel{
		session: session,
		ReadFd:  int(outR.Fd()),
		WriteFd: int(inW.Fd()),
		closers: []io.Closer{inR, inW, outR, outW},
	}, nil
}

func copyAndClose(dst io.Writer, src io.Reader, label string) {
	if _, err := io.Copy(dst, src); err != nil {
		flog.Debugf("shell: %s bridge ended: %v", label, err)
	}
	if c, ok := dst.(io.Closer); ok {
		c.Close()
	}
}

// Close tears down the bridge pipes and the underlying session.
func (c *Channel) Close() {
	for _, closer := range c.closers {
		closer.Close()
	}
	c.session.Close()
}

// OpenClientChannels opens either one ring-buffered channel or the split
// lengths/packets pair, per cfg.Channels, and returns them wired into
// core.ClientChannels alongside sockFd (the local TAP or L2TP socket fd
// the caller already has open).
func OpenClientChannels(client *ssh.Client, cfg *conf.SSH, sockFd int) (core.ClientChannels, []*Channel, error) {
	if cfg.Channels == 1 {
		ch, err := Open(client, cfg, "")
		if err != nil {
			return core.ClientChannels{}, nil, err
		}
		return core.ClientChannels{
			LengthsStdin:  ch.WriteFd,
			LengthsStdout: ch.ReadFd,
			PacketsStdin:  ch.WriteFd,
			PacketsStdout: ch.ReadFd,
			Sock:          sockFd,
		}, []*Channel{ch}, nil
	}

	lengths, err := Open(client, cfg, "lengths")
	if err != nil {
		return core.ClientChannels{}, nil, err
	}
	packets, err := Open(client, cfg, "packets")
	if err != nil {
		lengths.Close()
		return core.ClientChannels{}, nil, err
	}

	return core.ClientChannels{
		LengthsStdin:  lengths.WriteFd,
		LengthsStdout: lengths.ReadFd,
		PacketsStdin:  packets.WriteFd,
		PacketsStdout: packets.ReadFd,
		Sock:          sockFd,
	}, []*Channel{lengths, packets}, nil
}
