package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"

	"github.com/opd-ai/dgram/address"
	"github.com/opd-ai/dgram/limits"
)

// SocketManager owns the single UDP socket used by the transport:
// creation, option configuration, bind, multicast membership, health
// validation, and teardown. Exactly one OS handle is owned at a time.
//
// SocketManager must not be copied after first use, and is not safe
// for concurrent use; the transport runs on the caller's goroutine.
type SocketManager struct {
	conn  *net.UDPConn
	mconn *ipv4.PacketConn // non-nil only while a group is joined

	boundPort uint16
	group     address.Address // joined group, Zero when unicast
	groupIf   address.Address // interface used for the join
	started   bool

	timeout time.Duration // receive timeout; 0 selects polling mode
	probe   ReadinessProbe
	clock   Clock

	lastValidate time.Time
	lastHealthy  bool
}

// pollDeadline bounds a single receive attempt in polling mode. Short
// enough that ParsePacket behaves as a non-blocking poll to callers.
const pollDeadline = time.Millisecond

// NewSocketManager creates a manager with no socket. The probe decides
// network readiness before any I/O; nil selects the interface-scan
// default. A nil clock selects the system clock.
func NewSocketManager(probe ReadinessProbe, clock Clock) *SocketManager {
	if probe == nil {
		probe = InterfaceProbe{}
	}
	return &SocketManager{
		probe: probe,
		clock: getClock(clock),
	}
}

// IsNetworkReady delegates to the connectivity probe. Sender and
// receiver short-circuit all I/O while this reports false.
func (s *SocketManager) IsNetworkReady() bool {
	return s.probe.Ready()
}

// InitSocket ensures a socket handle exists, creating one bound to an
// ephemeral port when absent. A valid existing handle makes this a
// no-op success.
func (s *SocketManager) InitSocket() bool {
	if s.conn != nil {
		return true
	}

	conn, err := listenReuse(0)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "SocketManager",
			"error":     err,
		}).Error("Failed to create UDP socket")
		return false
	}

	s.conn = conn
	s.lastValidate = s.clock.Now()
	s.lastHealthy = true
	return s.SetSocketOptions()
}

// SetSocketOptions applies the read-buffer size to the owned socket.
// Address reuse is applied at creation time via the socket control
// hook. Failure leaves the socket usable but without the expected
// buffering, and is reported to the caller.
func (s *SocketManager) SetSocketOptions() bool {
	if s.conn == nil {
		return false
	}
	if err := s.conn.SetReadBuffer(64 * 1024); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "SocketManager",
			"error":     err,
		}).Warn("Failed to set socket read buffer")
		return false
	}
	return true
}

// Begin binds the socket to the given port on the wildcard address.
// Any previously owned handle is closed first; on bind failure no
// handle is leaked and the manager is left not started.
func (s *SocketManager) Begin(port uint16) bool {
	if !s.IsNetworkReady() {
		logrus.WithFields(logrus.Fields{
			"component": "SocketManager",
			"port":      port,
			"error":     ErrNetworkNotReady,
		}).Warn("Network not ready, refusing to bind")
		return false
	}

	s.closeSocket()

	conn, err := listenReuse(port)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "SocketManager",
			"port":      port,
			"error":     err,
		}).Error("Failed to bind UDP socket")
		return false
	}

	s.conn = conn
	s.boundPort = port
	s.group = address.Zero
	s.groupIf = address.Zero
	s.started = true
	s.lastValidate = s.clock.Now()
	s.lastHealthy = true
	s.SetSocketOptions()

	logrus.WithFields(logrus.Fields{
		"component": "SocketManager",
		"port":      port,
	}).Debug("UDP socket bound")
	return true
}

// BeginMulticast binds to the given port and joins the multicast
// group on the interface owning ifaceAddr (Zero selects the OS
// default interface). A failed join closes the socket so the manager
// is left consistently not started rather than half-bound.
func (s *SocketManager) BeginMulticast(port uint16, group, ifaceAddr address.Address) bool {
	if !group.IsMulticast() {
		logrus.WithFields(logrus.Fields{
			"component": "SocketManager",
			"group":     group.String(),
		}).Error("Refusing to join non-multicast address")
		return false
	}

	if !s.Begin(port) {
		return false
	}

	if !s.joinGroup(group, ifaceAddr) {
		s.Stop()
		return false
	}

	logrus.WithFields(logrus.Fields{
		"component": "SocketManager",
		"port":      port,
		"group":     group.String(),
		"interface": ifaceAddr.String(),
	}).Debug("Joined multicast group")
	return true
}

// joinGroup performs the group-membership option on the bound socket.
func (s *SocketManager) joinGroup(group, ifaceAddr address.Address) bool {
	iface, err := interfaceByAddress(ifaceAddr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "SocketManager",
			"interface": ifaceAddr.String(),
			"error":     err,
		}).Error("Failed to resolve multicast interface")
		return false
	}

	mconn := ipv4.NewPacketConn(s.conn)
	if err := mconn.JoinGroup(iface, &net.UDPAddr{IP: group.IP()}); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "SocketManager",
			"group":     group.String(),
			"error":     newTransportError("join", group.String(), fmt.Errorf("%w: %v", ErrJoinFailed, err)),
		}).Error("Failed to join multicast group")
		return false
	}

	s.mconn = mconn
	s.group = group
	s.groupIf = ifaceAddr
	return true
}

// ValidateSocket reports whether the owned handle is still usable.
// Probes are rate-limited to one per limits.ValidateInterval; between
// probes the last result stands. A handle that fails the probe is
// reinitialized (recreated, rebound, group rejoined) immediately, and
// the failure is reported once so callers can observe the fault.
func (s *SocketManager) ValidateSocket() bool {
	if s.conn == nil {
		return false
	}

	now := s.clock.Now()
	if now.Sub(s.lastValidate) < limits.ValidateInterval {
		return s.lastHealthy
	}
	s.lastValidate = now

	if err := probeSocketError(s.conn); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "SocketManager",
			"error":     err,
		}).Warn("Socket error detected, reinitializing")
		// reinit records the fresh handle's health; only this call,
		// the one that observed the fault, reports false.
		s.reinit()
		return false
	}

	s.lastHealthy = true
	return true
}

// reinit recreates the socket and restores the previous bind and
// multicast membership. Called when validation detects a corrupted
// handle, e.g. after a network stack reset.
func (s *SocketManager) reinit() {
	port := s.boundPort
	group := s.group
	groupIf := s.groupIf
	wasStarted := s.started

	s.closeSocket()

	if !wasStarted {
		s.InitSocket()
		return
	}

	conn, err := listenReuse(port)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "SocketManager",
			"port":      port,
			"error":     err,
		}).Error("Reinit failed to rebind")
		return
	}
	s.conn = conn
	s.boundPort = port
	s.started = true
	s.SetSocketOptions()

	if !group.IsZero() {
		s.joinGroup(group, groupIf)
	}

	// The fresh handle is trusted until the next probe interval.
	s.lastHealthy = true
}

// ensureValid is the defensive pre-I/O check used by the sender:
// validate, and fall back to creating a socket when none is owned.
// Returns false only when no usable handle could be obtained.
func (s *SocketManager) ensureValid() bool {
	if s.ValidateSocket() {
		return true
	}
	// Validation either found no socket or already reinitialized a
	// faulted one. Either way a non-nil conn is usable now.
	if s.conn != nil {
		return true
	}
	return s.InitSocket()
}

// SetTimeout selects the receive mode: a positive duration bounds
// ParsePacket by that timeout, zero selects non-blocking polling.
func (s *SocketManager) SetTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.timeout = d
}

// Timeout returns the configured receive timeout (0 = polling mode).
func (s *SocketManager) Timeout() time.Duration {
	return s.timeout
}

// Connected reports whether the manager holds a bound, validated
// socket.
func (s *SocketManager) Connected() bool {
	return s.started && s.conn != nil && s.ValidateSocket()
}

// LocalPort returns the port the socket is bound to, 0 when stopped.
func (s *SocketManager) LocalPort() uint16 {
	if s.conn == nil {
		return 0
	}
	if addr, ok := s.conn.LocalAddr().(*net.UDPAddr); ok {
		return uint16(addr.Port)
	}
	return 0
}

// LocalIP returns the IPv4 address of the first usable local
// interface, or 0.0.0.0 when none is available. The wildcard-bound
// socket itself has no single address, so this mirrors what a peer
// would see as our source address.
func (s *SocketManager) LocalIP() address.Address {
	ip, ok := firstUsableIPv4()
	if !ok {
		return address.Zero
	}
	return ip
}

// Stop closes the handle, resets it to the invalid state, and clears
// the bound-address state. Safe to call multiple times.
func (s *SocketManager) Stop() {
	s.closeSocket()
	s.boundPort = 0
	s.group = address.Zero
	s.groupIf = address.Zero
	s.started = false
}

// closeSocket releases the OS handle if one is owned.
func (s *SocketManager) closeSocket() {
	if s.mconn != nil {
		// Closing the ipv4 wrapper closes the underlying conn too;
		// dropping membership explicitly is redundant at teardown.
		s.mconn = nil
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"component": "SocketManager",
				"error":     err,
			}).Warn("Error closing UDP socket")
		}
		s.conn = nil
	}
}

// readFrom performs one bounded receive attempt into buf, returning
// the byte count and sender address. In polling mode the deadline is
// pollDeadline; otherwise the configured timeout applies.
func (s *SocketManager) readFrom(buf []byte) (int, *net.UDPAddr, error) {
	if s.conn == nil {
		return 0, nil, ErrSocketClosed
	}

	wait := s.timeout
	if wait <= 0 {
		wait = pollDeadline
	}
	if err := s.conn.SetReadDeadline(s.clock.Now().Add(wait)); err != nil {
		return 0, nil, newTransportError("set read deadline", "", err)
	}

	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return 0, nil, err
	}
	return n, addr, nil
}

// writeTo transmits payload as one datagram to dest. A positive
// timeout also bounds the send.
func (s *SocketManager) writeTo(payload []byte, dest *net.UDPAddr) (int, error) {
	if s.conn == nil {
		return 0, ErrSocketClosed
	}

	if s.timeout > 0 {
		if err := s.conn.SetWriteDeadline(s.clock.Now().Add(s.timeout)); err != nil {
			return 0, newTransportError("set write deadline", dest.String(), err)
		}
	}

	return s.conn.WriteToUDP(payload, dest)
}

// listenReuse binds a UDP socket to the wildcard address on the given
// port (0 = ephemeral) with address reuse enabled, so a restarting
// node can rebind its discovery port without waiting out the old
// binding.
func listenReuse(port uint16) (*net.UDPConn, error) {
	lc := net.ListenConfig{Control: reuseControl}
	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, newTransportError("bind", fmt.Sprintf(":%d", port), fmt.Errorf("%w: %v", ErrBindFailed, err))
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, newTransportError("bind", fmt.Sprintf(":%d", port), ErrSocketCreate)
	}
	return conn, nil
}

// isTimeout reports whether err is a would-block or deadline
// condition rather than a hard socket fault.
func isTimeout(err error) bool {
	netErr, ok := err.(net.Error)
	return ok && netErr.Timeout()
}
