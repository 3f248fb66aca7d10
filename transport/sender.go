package transport

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/dgram/address"
	"github.com/opd-ai/dgram/limits"
)

// Sender accumulates outgoing bytes into a fixed-capacity send frame
// and transmits the whole frame as a single datagram on EndPacket.
//
// The composition cycle is Idle -> Composing -> Idle: BeginPacket
// starts composition, Write appends, EndPacket transmits and returns
// to idle. Calling BeginPacket while already composing restarts the
// cycle and discards the unsent bytes; writing while idle is a no-op
// returning 0.
type Sender struct {
	sock  *SocketManager
	frame *Frame

	dest      net.UDPAddr
	composing bool
}

// NewSender creates a sender over the given socket manager with a
// frame of the given capacity (<= 0 selects limits.MaxDatagramSize).
func NewSender(sock *SocketManager, capacity int) *Sender {
	if capacity <= 0 {
		capacity = limits.MaxDatagramSize
	}
	return &Sender{
		sock:  sock,
		frame: NewFrame(capacity),
	}
}

// BeginPacket starts composing a datagram to the given destination.
// The send frame is emptied and the destination recorded; a cycle
// already in progress is restarted. Returns false when no usable
// socket could be obtained.
func (s *Sender) BeginPacket(dest address.Address, port uint16) bool {
	if !s.sock.ensureValid() {
		logrus.WithFields(logrus.Fields{
			"component": "Sender",
			"dest":      dest.String(),
			"port":      port,
		}).Error("No usable socket for packet composition")
		s.composing = false
		return false
	}

	s.dest = net.UDPAddr{IP: dest.IP(), Port: int(port)}
	s.frame.Reset()
	s.composing = true
	return true
}

// BeginPacketHost is BeginPacket taking a dotted-decimal destination.
// A malformed address fails the call without touching sender state.
func (s *Sender) BeginPacketHost(host string, port uint16) bool {
	dest, err := address.Parse(host)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "Sender",
			"host":      host,
			"error":     err,
		}).Error("Invalid destination address")
		return false
	}
	return s.BeginPacket(dest, port)
}

// BeginPacketUint32 is BeginPacket taking the destination as a
// host-order 32-bit value (high byte = first octet).
func (s *Sender) BeginPacketUint32(dest uint32, port uint16) bool {
	return s.BeginPacket(address.FromUint32(dest), port)
}

// Write appends p to the send frame, returning the number of bytes
// actually appended. Bytes beyond the frame capacity are dropped and
// the count reflects the truncation. Returns 0 while idle.
func (s *Sender) Write(p []byte) int {
	if !s.composing {
		return 0
	}
	return s.frame.Append(p)
}

// WriteByteVal appends a single byte, returning 1 on success and 0
// when the frame is full or no packet is being composed. The name
// avoids the io.ByteWriter WriteByte(byte) error signature, which this
// counted, never-erroring surface deliberately does not implement.
func (s *Sender) WriteByteVal(b byte) int {
	if !s.composing {
		return 0
	}
	return s.frame.AppendByte(b)
}

// WriteString appends the bytes of str, returning the count appended.
func (s *Sender) WriteString(str string) int {
	if !s.composing {
		return 0
	}
	return s.frame.Append([]byte(str))
}

// EndPacket transmits the accumulated frame as one datagram to the
// recorded destination and returns to idle. Returns false, discarding
// the frame, when: no packet was being composed, the frame is empty,
// the network is not ready, no usable socket exists, or the transmit
// primitive fails. A short OS-level send counts as failure since UDP
// datagrams are atomic.
func (s *Sender) EndPacket() bool {
	if !s.composing {
		logrus.WithFields(logrus.Fields{
			"component": "Sender",
			"error":     ErrNotComposing,
		}).Debug("EndPacket without composition")
		return false
	}
	s.composing = false
	defer s.frame.Reset()

	if err := limits.ValidatePayloadSize(s.frame.Bytes(), s.frame.Cap()); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "Sender",
			"dest":      s.dest.String(),
			"error":     err,
		}).Warn("Refusing to send invalid frame")
		return false
	}

	if !s.sock.IsNetworkReady() {
		logrus.WithFields(logrus.Fields{
			"component": "Sender",
			"dest":      s.dest.String(),
			"error":     ErrNetworkNotReady,
		}).Warn("Network not ready, discarding packet")
		return false
	}

	if !s.sock.ensureValid() {
		return false
	}

	return s.transmit()
}

// transmit performs the sendto with a bounded retry on would-block
// conditions. Non-blocking sockets on congested links commonly report
// transient EAGAIN; a few short retries ride that out without turning
// the transport into a reliable-delivery layer.
func (s *Sender) transmit() bool {
	payload := s.frame.Bytes()

	for attempt := 1; attempt <= limits.MaxRetries; attempt++ {
		n, err := s.sock.writeTo(payload, &s.dest)
		if err == nil {
			if n != len(payload) {
				logrus.WithFields(logrus.Fields{
					"component": "Sender",
					"dest":      s.dest.String(),
					"sent":      n,
					"expected":  len(payload),
					"error":     newTransportError("send", s.dest.String(), ErrPartialSend),
				}).Error("Partial datagram send")
				return false
			}
			logrus.WithFields(logrus.Fields{
				"component": "Sender",
				"dest":      s.dest.String(),
				"bytes":     n,
			}).Trace("Datagram sent")
			return true
		}

		if isTimeout(err) && attempt < limits.MaxRetries {
			time.Sleep(limits.RetryDelay)
			continue
		}

		logrus.WithFields(logrus.Fields{
			"component": "Sender",
			"dest":      s.dest.String(),
			"attempt":   attempt,
			"error":     err,
		}).Error("Failed to send datagram")
		return false
	}
	return false
}

// Composing reports whether a packet is currently being composed.
func (s *Sender) Composing() bool {
	return s.composing
}
