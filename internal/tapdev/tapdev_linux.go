//go:build linux

package tapdev

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"walt/internal/flog"
)

const (
	clonePath = "/dev/net/tun"

	iffTap    = 0x0002
	iffNoPI   = 0x1000
	tunSetIff = 0x400454ca // TUNSETIFF, arch-independent on Linux
)

// ifreq mirrors struct ifreq's name+flags prefix (net/if.h), the only part
// TUNSETIFF reads or writes.
type ifreq struct {
	name  [unix.IFNAMSIZ]byte
	flags uint16
	_     [22]byte // pad to sizeof(struct ifreq)
}

// Open creates (or attaches to, if it already exists) an IFF_TAP device
// named name. It does not set the persistent flag (TUNSETPERSIST). A TAP device carries whole Ethernet frames
// rather than routed L3 packets, which is why this package talks
// directly to /dev/net/tun instead of reusing a TUN-only library.
func Open(name string) (*Device, error) {
	f, err := os.OpenFile(clonePath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("tapdev: open %s: %w", clonePath, err)
	}

	var req ifreq
	copy(req.name[:], name)
	req.flags = iffTap | iffNoPI

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(tunSetIff), uintptr(unsafe.Pointer(&req))); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("tapdev: TUNSETIFF on %s: %w", name, errno)
	}

	actualName := string(req.name[:])
	if i := indexByte(actualName, 0); i >= 0 {
		actualName = actualName[:i]
	}

	flog.Infof("tapdev: opened %s (requested %s)", actualName, name)
	return &Device{file: f, name: actualName}, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
