package conf

import (
	"fmt"
	"net"
	"os"
)

// SSH configures the client's authenticated shell channel to the VPN
// server (internal/shell). The remote command is fixed by the server's
// forced-command configuration in a real deployment, but a build may
// need to override it for testing against a plain shell.
type SSH struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	PrivateKeyPath string `yaml:"private_key_path"`
	RemoteCommand  string `yaml:"remote_command"`
	Channels       int    `yaml:"channels"`
}

func (s *SSH) setDefaults() {
	if s.Port == 0 {
		s.Port = 22
	}
	if s.RemoteCommand == "" {
		s.RemoteCommand = "walt-vpn-endpoint"
	}
	if s.Channels == 0 {
		// Two-channel variant: one stream for lengths, one for packets.
		s.Channels = 2
	}
}

func (s *SSH) validate() []error {
	var errors []error

	if s.Host == "" {
		errors = append(errors, fmt.Errorf("ssh.host: required"))
	}
	if s.Port < 1 || s.Port > 65535 {
		errors = append(errors, fmt.Errorf("ssh.port: must be between 1 and 65535, got %d", s.Port))
	}
	if s.User == "" {
		errors = append(errors, fmt.Errorf("ssh.user: required"))
	}
	if s.PrivateKeyPath == "" {
		errors = append(errors, fmt.Errorf("ssh.private_key_path: required"))
	} else if _, err := os.Stat(s.PrivateKeyPath); err != nil {
		errors = append(errors, fmt.Errorf("ssh.private_key_path: %v", err))
	}
	if s.Channels != 1 && s.Channels != 2 {
		errors = append(errors, fmt.Errorf("ssh.channels: must be 1 (ring-buffered stream) or 2 (lengths/packets split), got %d", s.Channels))
	}

	return errors
}

// Addr is the host:port dial target.
func (s *SSH) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))
}
