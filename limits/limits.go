// Package limits provides centralized size and timing limits for the
// datagram transport. This ensures consistent validation across the
// socket, sender, and receiver components.
package limits

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxDatagramSize is the fixed capacity of one send or receive
	// frame (1024 bytes). A logical packet is exactly one datagram,
	// so this is also the largest payload the transport carries.
	MaxDatagramSize = 1024

	// MaxRetries is the number of transmit attempts made when the
	// socket reports a would-block condition during EndPacket.
	MaxRetries = 3

	// RetryDelay is the pause between transmit retries.
	RetryDelay = 10 * time.Millisecond

	// DefaultDedupWindow is the interval during which a byte-identical
	// datagram from the same sender is dropped as a duplicate.
	DefaultDedupWindow = 100 * time.Millisecond

	// ValidateInterval rate-limits socket health probes. Between
	// probes the last known-good result is trusted, which keeps the
	// per-packet overhead of defensive validation near zero.
	ValidateInterval = 5 * time.Second

	// DefaultTimeout is the receive timeout applied when the socket
	// is configured in blocking mode.
	DefaultTimeout = 1 * time.Second
)

var (
	// ErrPayloadEmpty indicates an empty payload was provided
	ErrPayloadEmpty = errors.New("empty payload")

	// ErrPayloadTooLarge indicates the payload exceeds the frame capacity
	ErrPayloadTooLarge = errors.New("payload too large")
)

// ValidatePayloadSize validates a payload against the specified frame
// capacity. Returns an error with context including the actual and
// maximum sizes.
func ValidatePayloadSize(payload []byte, capacity int) error {
	if len(payload) == 0 {
		return ErrPayloadEmpty
	}
	if len(payload) > capacity {
		return fmt.Errorf("%w: size %d exceeds capacity %d", ErrPayloadTooLarge, len(payload), capacity)
	}
	return nil
}

// ValidateDatagram validates a payload against MaxDatagramSize.
func ValidateDatagram(payload []byte) error {
	return ValidatePayloadSize(payload, MaxDatagramSize)
}
