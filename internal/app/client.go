// Package app is the orchestrator tying configuration, the TAP device,
// the SSH shell channel, and the server's session table to the three
// core transmission loops.
package app

import (
	"fmt"
	"time"

	"walt/internal/conf"
	"walt/internal/core"
	"walt/internal/flog"
	"walt/internal/shell"
	"walt/internal/tapdev"
)

const reinitBackoffCap = 5 * time.Second

// RunClient opens the local TAP device and the SSH shell channel(s), then
// drives core.ClientTransmissionLoop (split lengths/packets pair) or
// core.RingTransferLoop (a single combined stream, cfg.SSH.Channels == 1),
// rebuilding the channel on STOPPED_SHOULD_REINIT and returning once the
// loop reports STOPPED_SHOULD_ABORT.
func RunClient(cfg *conf.Conf) error {
	dev, err := tapdev.Open(cfg.TAP.Name)
	if err != nil {
		return fmt.Errorf("app: opening tap device: %w", err)
	}
	defer dev.Close()

	if err := dev.Up(cfg.TAP.MTU); err != nil {
		return err
	}
	if err := dev.SetAddr(cfg.TAP.Addr); err != nil {
		return err
	}

	attempt := 0
	for {
		client, err := shell.Dial(cfg.SSH)
		if err != nil {
			return fmt.Errorf("app: dialing shell: %w", err)
		}

		channels, bridges, err := shell.OpenClientChannels(client, cfg.SSH, dev.Fd())
		if err != nil {
			client.Close()
			return fmt.Errorf("app: opening shell channels: %w", err)
		}

		flog.Infof("app: client loop starting on tap %s", dev.Name())
		var reinit bool
		if cfg.SSH.Channels == 1 {
			reinit = core.RingTransferLoop(channels.LengthsStdout, channels.LengthsStdin, channels.Sock)
		} else {
			reinit = core.ClientTransmissionLoop(channels)
		}

		for _, b := range bridges {
			b.Close()
		}
		client.Close()

		if !reinit {
			flog.Infof("app: client loop aborted")
			return nil
		}

		flog.Warnf("app: client loop requested reinit (attempt %d)", attempt+1)
		time.Sleep(backoff(attempt))
		attempt++
	}
}

func backoff(attempt int) time.Duration {
	if attempt > 5 {
		attempt = 5
	}
	d := time.Duration(1<<uint(attempt)) * 100 * time.Millisecond
	if d > reinitBackoffCap {
		d = reinitBackoffCap
	}
	return d
}
