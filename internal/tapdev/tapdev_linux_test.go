//go:build linux

package tapdev

import (
	"os"
	"testing"
)

func skipIfNotRoot(t *testing.T) {
	t.Helper()
	if os.Getuid() != 0 {
		t.Skip("skipping: requires root privileges to open /dev/net/tun")
	}
}

func TestOpenAndClose(t *testing.T) {
	skipIfNotRoot(t)

	dev, err := Open("waltt0")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	if dev.Name() == "" {
		t.Errorf("expected a non-empty assigned interface name")
	}
	if dev.Fd() < 0 {
		t.Errorf("expected a valid file descriptor")
	}

	if err := dev.Up(1500); err != nil {
		t.Errorf("Up: %v", err)
	}
}
