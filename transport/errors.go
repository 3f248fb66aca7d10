package transport

import (
	"errors"
	"fmt"
)

// Common errors for the datagram transport
var (
	// ErrSocketClosed indicates the socket has been stopped or never started
	ErrSocketClosed = errors.New("socket closed")

	// ErrSocketCreate indicates the underlying socket could not be created
	ErrSocketCreate = errors.New("socket creation failed")

	// ErrBindFailed indicates the socket could not be bound to the requested port
	ErrBindFailed = errors.New("bind failed")

	// ErrJoinFailed indicates the multicast group join failed after a successful bind
	ErrJoinFailed = errors.New("multicast join failed")

	// ErrNetworkNotReady indicates the connectivity probe reported the link down
	ErrNetworkNotReady = errors.New("network not ready")

	// ErrNoInterface indicates no local interface owns the requested address
	ErrNoInterface = errors.New("no interface with address")

	// ErrNotComposing indicates a write or transmit with no packet in composition
	ErrNotComposing = errors.New("no packet in composition")

	// ErrPartialSend indicates the OS accepted fewer bytes than the frame holds
	ErrPartialSend = errors.New("partial send")
)

// TransportError represents an error with additional context
type TransportError struct {
	Op   string // operation that caused the error
	Addr string // address if relevant
	Err  error  // underlying error
}

func (e *TransportError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("dgram %s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("dgram %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// newTransportError creates a new TransportError
func newTransportError(op, addr string, err error) *TransportError {
	return &TransportError{
		Op:   op,
		Addr: addr,
		Err:  err,
	}
}
