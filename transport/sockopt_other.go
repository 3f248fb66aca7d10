//go:build !darwin && !linux

package transport

import (
	"net"
	"syscall"
)

// reuseControl is a no-op where SO_REUSEPORT is unavailable; the bind
// simply proceeds with the platform defaults.
func reuseControl(network, addr string, c syscall.RawConn) error {
	return nil
}

// probeSocketError has no portable equivalent of the SO_ERROR query;
// a handle is trusted until an actual I/O call fails.
func probeSocketError(conn *net.UDPConn) error {
	return nil
}
