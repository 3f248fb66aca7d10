//go:build darwin || linux

package transport

import (
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseControl enables SO_REUSEADDR and SO_REUSEPORT before bind so
// several nodes on one host can share a discovery port, and so a
// restarted node can rebind immediately.
// Uses golang.org/x/sys/unix for SO_REUSEPORT (not in std syscall on
// Linux).
func reuseControl(network, addr string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if opErr != nil {
			return
		}
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}

// probeSocketError queries SO_ERROR on the socket, surfacing pending
// asynchronous faults (e.g. after a network stack reset) that would
// otherwise only appear as failures on later sends.
func probeSocketError(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var soErr int
	var getErr error
	err = raw.Control(func(fd uintptr) {
		soErr, getErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ERROR)
	})
	if err != nil {
		return err
	}
	if getErr != nil {
		return getErr
	}
	if soErr != 0 {
		return fmt.Errorf("pending socket error: %w", unix.Errno(soErr))
	}
	return nil
}
