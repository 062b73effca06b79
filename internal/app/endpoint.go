package app

import (
	"fmt"

	"walt/internal/conf"
	"walt/internal/core"
	"walt/internal/flog"
	"walt/internal/tapdev"
)

// RunEndpoint is the server-side shell command spawned once per
// connecting client. It opens (or attaches to) the TAP device the
// orchestrator assigned this client and pumps frames between it and the
// process's own stdin/stdout, which carry the framed stream back to the
// client over the SSH channel that invoked this process.
func RunEndpoint(cfg *conf.Conf) error {
	dev, err := tapdev.Open(cfg.TAP.Name)
	if err != nil {
		return fmt.Errorf("app: opening tap device: %w", err)
	}
	defer dev.Close()

	if err := dev.Up(cfg.TAP.MTU); err != nil {
		return err
	}

	flog.Infof("app: endpoint loop starting on tap %s", dev.Name())
	core.EndpointTransmissionLoop(dev.Fd())
	return nil
}
