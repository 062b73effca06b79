package app

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestNet4SockaddrFromString(t *testing.T) {
	sa, err := net4SockaddrFromString("127.0.0.1:1701")
	if err != nil {
		t.Fatalf("net4SockaddrFromString: %v", err)
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		t.Fatalf("expected *unix.SockaddrInet4, got %T", sa)
	}
	if in4.Port != 1701 {
		t.Errorf("expected port 1701, got %d", in4.Port)
	}
	want := [4]byte{127, 0, 0, 1}
	if in4.Addr != want {
		t.Errorf("expected addr %v, got %v", want, in4.Addr)
	}
}

func TestNet4SockaddrFromStringRejectsIPv6(t *testing.T) {
	if _, err := net4SockaddrFromString("[::1]:1701"); err == nil {
		t.Errorf("expected error resolving an IPv6 address on a udp4 network")
	}
}
