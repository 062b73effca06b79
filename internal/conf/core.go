package conf

import "fmt"

// Core holds the tunable constants of the packet-forwarding engine.
// Defaults match the values internal/core bakes in as constants. These
// values are defaulted and validated only: internal/core does not read
// them, so changing them does not change the engine's buffer sizes.
type Core struct {
	MaxPayload      int `yaml:"max_payload"`
	RingSize        int `yaml:"ring_size"`
	PacketBatchSize int `yaml:"packet_batch_size"`
}

func (c *Core) setDefaults() {
	if c.MaxPayload == 0 {
		c.MaxPayload = 4096
	}
	if c.RingSize == 0 {
		c.RingSize = 1 << 16
	}
	if c.PacketBatchSize == 0 {
		c.PacketBatchSize = 32
	}
}

func (c *Core) validate() []error {
	var errors []error
	if c.MaxPayload < 576 || c.MaxPayload > 65535 {
		errors = append(errors, fmt.Errorf("core.max_payload: must be between 576 and 65535, got %d", c.MaxPayload))
	}
	if c.RingSize < c.MaxPayload*2 {
		errors = append(errors, fmt.Errorf("core.ring_size: must be at least twice max_payload (%d), got %d", c.MaxPayload*2, c.RingSize))
	}
	if c.PacketBatchSize < 1 || c.PacketBatchSize > 1024 {
		errors = append(errors, fmt.Errorf("core.packet_batch_size: must be between 1 and 1024, got %d", c.PacketBatchSize))
	}
	return errors
}
