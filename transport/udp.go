package transport

import (
	"time"

	"github.com/opd-ai/dgram/address"
	"github.com/opd-ai/dgram/limits"
)

// Config carries the construction-time knobs of a UDP transport.
// The zero value of each field selects the documented default.
type Config struct {
	// BufferSize is the fixed capacity of the send and receive
	// frames. Defaults to limits.MaxDatagramSize.
	BufferSize int

	// DedupWindow is the duplicate-suppression interval. Zero keeps
	// the limits.DefaultDedupWindow; a negative value disables
	// suppression.
	DedupWindow time.Duration

	// Timeout bounds blocking receives and sends. Zero selects
	// non-blocking polling mode.
	Timeout time.Duration

	// Probe supplies the network-readiness signal. Nil selects the
	// interface-scanning default; pass a StaticProbe or an adapter
	// to an external connectivity manager to override.
	Probe ReadinessProbe

	// Clock supplies time for the dedup window and validation rate
	// limiting. Nil selects the system clock.
	Clock Clock
}

// DefaultConfig returns the configuration matching the constants in
// the limits package: full-size frames, the standard dedup window, and
// blocking receives bounded by limits.DefaultTimeout. Callers wanting
// polling mode construct a Config with a zero Timeout instead.
func DefaultConfig() Config {
	return Config{
		BufferSize:  limits.MaxDatagramSize,
		DedupWindow: limits.DefaultDedupWindow,
		Timeout:     limits.DefaultTimeout,
	}
}

// UDP is a packet-oriented datagram endpoint: bind or multicast join,
// begin/write/end framing on the send side, parse/read/peek framing
// with duplicate suppression on the receive side. It composes one
// SocketManager, one Sender, and one Receiver over a single owned
// socket.
//
// UDP runs entirely on the caller's goroutine: no internal goroutines
// are spawned and no operation outlives its call. The object is not
// safe for concurrent use and must not be copied after construction;
// exactly one UDP instance owns the underlying OS handle.
type UDP struct {
	sock     *SocketManager
	sender   *Sender
	receiver *Receiver
}

// New creates a UDP transport from cfg. No socket exists until Begin,
// BeginMulticast, or the first BeginPacket.
func New(cfg Config) *UDP {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = limits.MaxDatagramSize
	}
	window := cfg.DedupWindow
	switch {
	case window == 0:
		window = limits.DefaultDedupWindow
	case window < 0:
		window = 0
	}

	sock := NewSocketManager(cfg.Probe, cfg.Clock)
	sock.SetTimeout(cfg.Timeout)

	return &UDP{
		sock:     sock,
		sender:   NewSender(sock, cfg.BufferSize),
		receiver: NewReceiver(sock, cfg.BufferSize, window, cfg.Clock),
	}
}

// Begin binds the transport to the given port on the wildcard
// address. Returns false on bind failure; the transport is then not
// started and Begin may be retried.
func (u *UDP) Begin(port uint16) bool {
	return u.sock.Begin(port)
}

// BeginMulticast binds to port and joins the multicast group on the
// interface owning ifaceAddr (address.Zero selects the OS default).
// A failed join leaves the transport not started.
func (u *UDP) BeginMulticast(port uint16, group, ifaceAddr address.Address) bool {
	return u.sock.BeginMulticast(port, group, ifaceAddr)
}

// Stop closes the socket and clears bound state. Safe to call
// repeatedly; the transport can be restarted with Begin.
func (u *UDP) Stop() {
	u.sock.Stop()
}

// BeginPacket starts composing a datagram to dest:port.
func (u *UDP) BeginPacket(dest address.Address, port uint16) bool {
	return u.sender.BeginPacket(dest, port)
}

// BeginPacketHost starts composing a datagram to a dotted-decimal
// destination.
func (u *UDP) BeginPacketHost(host string, port uint16) bool {
	return u.sender.BeginPacketHost(host, port)
}

// BeginPacketUint32 starts composing a datagram to a numeric
// destination (high byte = first octet).
func (u *UDP) BeginPacketUint32(dest uint32, port uint16) bool {
	return u.sender.BeginPacketUint32(dest, port)
}

// Write appends p to the outgoing frame, returning the count actually
// appended (truncated at the frame capacity).
func (u *UDP) Write(p []byte) int {
	return u.sender.Write(p)
}

// WriteByteVal appends one byte to the outgoing frame, returning the
// count appended (0 or 1). See Sender.WriteByteVal for the naming.
func (u *UDP) WriteByteVal(b byte) int {
	return u.sender.WriteByteVal(b)
}

// WriteString appends the bytes of str to the outgoing frame.
func (u *UDP) WriteString(str string) int {
	return u.sender.WriteString(str)
}

// EndPacket transmits the composed frame as a single datagram.
func (u *UDP) EndPacket() bool {
	return u.sender.EndPacket()
}

// ParsePacket polls for one pending datagram, returning its length or
// 0 when none is available (including when a duplicate was
// suppressed).
func (u *UDP) ParsePacket() int {
	return u.receiver.ParsePacket()
}

// Available returns the unread byte count of the current frame.
func (u *UDP) Available() int {
	return u.receiver.Available()
}

// ReadByte consumes and returns the next byte, or -1 when none
// remain.
func (u *UDP) ReadByte() int {
	return u.receiver.ReadByte()
}

// Read copies up to len(p) unread bytes into p and returns the count.
func (u *UDP) Read(p []byte) int {
	return u.receiver.Read(p)
}

// Peek returns the next byte without consuming it, or -1 when none
// remain.
func (u *UDP) Peek() int {
	return u.receiver.Peek()
}

// Flush discards the unread remainder of the current frame.
func (u *UDP) Flush() {
	u.receiver.Flush()
}

// RemoteIP returns the sender address of the last accepted datagram.
func (u *UDP) RemoteIP() address.Address {
	return u.receiver.RemoteIP()
}

// RemotePort returns the sender port of the last accepted datagram.
func (u *UDP) RemotePort() uint16 {
	return u.receiver.RemotePort()
}

// LocalPort returns the bound port, 0 when stopped.
func (u *UDP) LocalPort() uint16 {
	return u.sock.LocalPort()
}

// LocalIP returns the primary local IPv4 address, 0.0.0.0 when the
// link is down.
func (u *UDP) LocalIP() address.Address {
	return u.sock.LocalIP()
}

// SetTimeout selects blocking mode with the given bound, or polling
// mode when d is zero.
func (u *UDP) SetTimeout(d time.Duration) {
	u.sock.SetTimeout(d)
}

// Connected reports whether the transport holds a bound, healthy
// socket.
func (u *UDP) Connected() bool {
	return u.sock.Connected()
}
