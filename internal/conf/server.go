package conf

import (
	"fmt"
	"net"
)

// Server configures the central VPN server's two well-known sockets
// (internal/core.ServerSockFD/L2TPSockFD): the AF_UNIX control listener
// new shell channels announce themselves on, and the shared L2TP UDP
// socket every session's datagrams multiplex over.
type Server struct {
	ControlSocket string `yaml:"control_socket"`
	L2TPAddr      string `yaml:"l2tp_addr"`
}

func (s *Server) setDefaults() {
	if s.ControlSocket == "" {
		s.ControlSocket = "/run/walt/control.sock"
	}
	if s.L2TPAddr == "" {
		s.L2TPAddr = "0.0.0.0:1701"
	}
}

func (s *Server) validate() []error {
	var errors []error

	if s.ControlSocket == "" {
		errors = append(errors, fmt.Errorf("server.control_socket: required"))
	}
	if _, err := net.ResolveUDPAddr("udp", s.L2TPAddr); err != nil {
		errors = append(errors, fmt.Errorf("server.l2tp_addr: %v", err))
	}

	return errors
}
