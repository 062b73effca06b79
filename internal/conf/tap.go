package conf

import (
	"fmt"
	"net/netip"
)

// TAP configures the local L2 Ethernet device the core engine bridges
// frames to (internal/tapdev). There is no DNS/route-exclusion
// configuration here: a TAP device carries whole Ethernet frames and is
// bridged, not routed, so those concerns belong to whatever sits on the
// other side of the bridge.
type TAP struct {
	Name string `yaml:"name"`
	Addr string `yaml:"addr"`
	MTU  int    `yaml:"mtu"`
}

func (t *TAP) setDefaults() {
	if t.Name == "" {
		t.Name = "walt0"
	}
	if t.MTU == 0 {
		t.MTU = 1500
	}
}

func (t *TAP) validate() []error {
	var errors []error

	if len(t.Name) > 15 {
		errors = append(errors, fmt.Errorf("tap.name: too long (max 15 characters): %q", t.Name))
	}
	if t.MTU < 576 || t.MTU > 9000 {
		errors = append(errors, fmt.Errorf("tap.mtu: must be between 576 and 9000, got %d", t.MTU))
	}
	if t.Addr != "" {
		if _, err := netip.ParsePrefix(t.Addr); err != nil {
			errors = append(errors, fmt.Errorf("tap.addr: invalid CIDR %q: %v", t.Addr, err))
		}
	}

	return errors
}
