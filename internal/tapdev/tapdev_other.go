//go:build !linux

package tapdev

import (
	"fmt"
	"runtime"
)

// Open is unsupported outside Linux: the TAP devices this engine
// bridges whole Ethernet frames onto are a Linux IFF_TAP concept.
func Open(name string) (*Device, error) {
	return nil, fmt.Errorf("tapdev: unsupported on %s", runtime.GOOS)
}
