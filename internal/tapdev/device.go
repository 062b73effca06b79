// Package tapdev creates and configures Linux IFF_TAP devices: the local
// endpoint the core engine bridges whole Ethernet frames to/from.
package tapdev

import (
	"fmt"
	"os"
	"os/exec"

	"walt/internal/flog"
)

// Device is an open TAP interface. Its file descriptor is what
// core.ClientTransmissionLoop/core.EndpointTransmissionLoop read and write
// whole Ethernet frames on.
type Device struct {
	file *os.File
	name string
}

// Fd returns the raw file descriptor backing the device.
func (d *Device) Fd() int { return int(d.file.Fd()) }

// Name returns the interface name the kernel actually assigned (which may
// differ from the requested name if the kernel had to pick the next free
// index).
func (d *Device) Name() string { return d.name }

func (d *Device) Close() error { return d.file.Close() }

// Up brings the interface up and sets its MTU, shelling out to `ip`
// rather than hand-rolling netlink.
func (d *Device) Up(mtu int) error {
	if err := exec.Command("ip", "link", "set", d.name, "mtu", fmt.Sprint(mtu)).Run(); err != nil {
		return fmt.Errorf("tapdev: set mtu on %s: %w", d.name, err)
	}
	if err := exec.Command("ip", "link", "set", d.name, "up").Run(); err != nil {
		return fmt.Errorf("tapdev: bring up %s: %w", d.name, err)
	}
	flog.Infof("tapdev: %s up, mtu %d", d.name, mtu)
	return nil
}

// SetAddr assigns a CIDR address to the interface. Optional: a TAP device
// used purely as a bridge endpoint may carry no address of its own.
func (d *Device) SetAddr(cidr string) error {
	if cidr == "" {
		return nil
	}
	if err := exec.Command("ip", "addr", "add", cidr, "dev", d.name).Run(); err != nil {
		return fmt.Errorf("tapdev: add address %s to %s: %w", cidr, d.name, err)
	}
	return nil
}
