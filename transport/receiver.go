package transport

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/dgram/address"
	"github.com/opd-ai/dgram/limits"
)

// Receiver accepts inbound datagrams into a fixed-capacity receive
// frame with a byte-wise read cursor, suppressing duplicates within
// the deduplication window.
//
// ParsePacket polls for one datagram and loads the frame; the cursor
// operations (ReadByte, Read, Peek, Skip via Flush) then consume it.
// The sender descriptor of the last accepted datagram is retained
// until the next acceptance.
type Receiver struct {
	sock    *SocketManager
	frame   *Frame
	dedup   *Deduplicator
	scratch []byte

	senderIP   address.Address
	senderPort uint16
}

// NewReceiver creates a receiver over the given socket manager with a
// frame of the given capacity (<= 0 selects limits.MaxDatagramSize)
// and the given dedup window (0 disables suppression, negative
// selects limits.DefaultDedupWindow). A nil clock selects the system
// clock.
func NewReceiver(sock *SocketManager, capacity int, window time.Duration, clock Clock) *Receiver {
	if capacity <= 0 {
		capacity = limits.MaxDatagramSize
	}
	if window < 0 {
		window = limits.DefaultDedupWindow
	}
	return &Receiver{
		sock:    sock,
		frame:   NewFrame(capacity),
		dedup:   NewDeduplicator(window, clock),
		scratch: make([]byte, capacity),
	}
}

// ParsePacket polls for one pending datagram and returns its payload
// length, or 0 when nothing is available. A datagram whose
// fingerprint matches the last accepted one within the dedup window
// is discarded and reported as "no packet available"; the loaded
// frame is left untouched in that case. On acceptance the frame is
// loaded, the cursor rewound, and the sender descriptor updated.
func (r *Receiver) ParsePacket() int {
	if !r.sock.IsNetworkReady() {
		return 0
	}
	// ValidateSocket reinitializes a faulted handle as a side effect;
	// this round still reports "no packet" and the next poll reads
	// from the recovered socket. With no socket at all (Begin never
	// called) there is nothing to poll.
	if !r.sock.ValidateSocket() {
		return 0
	}

	n, from, err := r.sock.readFrom(r.scratch)
	if err != nil {
		if !isTimeout(err) {
			logrus.WithFields(logrus.Fields{
				"component": "Receiver",
				"error":     err,
			}).Debug("Receive error")
		}
		return 0
	}
	if err := limits.ValidateDatagram(r.scratch[:n]); err != nil {
		// Zero-length datagrams are legal UDP but carry nothing this
		// framing can represent.
		logrus.WithFields(logrus.Fields{
			"component": "Receiver",
			"bytes":     n,
			"error":     err,
		}).Trace("Ignoring invalid datagram")
		return 0
	}

	ip, ok := address.FromIP(from.IP)
	if !ok {
		// Non-IPv4 source on an udp4 socket should not happen;
		// treat it as noise.
		return 0
	}
	port := uint16(from.Port)

	if !r.dedup.Observe(r.scratch[:n], ip, port) {
		logrus.WithFields(logrus.Fields{
			"component": "Receiver",
			"sender":    ip.String(),
			"port":      port,
			"bytes":     n,
		}).Trace("Dropping duplicate datagram")
		return 0
	}

	loaded := r.frame.Load(r.scratch[:n])
	r.senderIP = ip
	r.senderPort = port

	logrus.WithFields(logrus.Fields{
		"component": "Receiver",
		"sender":    ip.String(),
		"port":      port,
		"bytes":     loaded,
	}).Trace("Datagram accepted")
	return loaded
}

// Available returns the number of unread bytes in the current frame.
// It is 0 both when no packet is loaded and when a loaded packet has
// been fully consumed; callers distinguish the two via the return of
// ParsePacket.
func (r *Receiver) Available() int {
	return r.frame.Available()
}

// ReadByte returns the byte at the cursor and advances it, or -1 when
// no unread bytes remain.
func (r *Receiver) ReadByte() int {
	b, ok := r.frame.ReadByte()
	if !ok {
		return -1
	}
	return int(b)
}

// Read copies up to len(p) unread bytes into p, advances the cursor
// by the amount copied, and returns that count. It never copies past
// the frame length.
func (r *Receiver) Read(p []byte) int {
	return r.frame.Read(p)
}

// Peek returns the byte at the cursor without advancing it, or -1
// when no unread bytes remain. Repeated calls return the same byte.
func (r *Receiver) Peek() int {
	b, ok := r.frame.Peek()
	if !ok {
		return -1
	}
	return int(b)
}

// Flush discards the remaining unread bytes of the current frame. The
// dedup record is unaffected, so a flushed packet still suppresses
// its duplicates.
func (r *Receiver) Flush() {
	r.frame.Skip()
}

// RemoteIP returns the sender address captured at the last accepted
// datagram. The value is stale (last seen) if no packet has arrived
// since.
func (r *Receiver) RemoteIP() address.Address {
	return r.senderIP
}

// RemotePort returns the sender port captured at the last accepted
// datagram.
func (r *Receiver) RemotePort() uint16 {
	return r.senderPort
}
