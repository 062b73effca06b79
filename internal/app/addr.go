package app

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// net4SockaddrFromString resolves a "host:port" string (IPv4 only) into
// the raw sockaddr bindFixedSockets binds the shared L2TP socket with.
func net4SockaddrFromString(hostport string) (unix.Sockaddr, error) {
	udpAddr, err := net.ResolveUDPAddr("udp4", hostport)
	if err != nil {
		return nil, err
	}
	var addr [4]byte
	ip4 := udpAddr.IP.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("address %s is not IPv4", hostport)
	}
	copy(addr[:], ip4)
	return &unix.SockaddrInet4{Port: udpAddr.Port, Addr: addr}, nil
}
