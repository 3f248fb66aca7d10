// Package limits provides centralized size and timing constants for the
// datagram transport. This package ensures consistent enforcement across
// all components.
//
// # Size Limits
//
//   - MaxDatagramSize (1024 bytes): The fixed capacity of the send and
//     receive frames. One logical packet maps to exactly one UDP
//     datagram, so no payload larger than this is ever carried.
//
// # Timing Constants
//
//   - DefaultDedupWindow (100ms): Interval within which a byte-identical
//     datagram from the same sender is treated as a duplicate and
//     suppressed. Configurable per transport instance; this is the
//     build-time default.
//
//   - MaxRetries / RetryDelay: Transmit retry policy applied when a
//     non-blocking socket reports a would-block condition.
//
//   - ValidateInterval (5s): Minimum interval between socket health
//     probes, keeping defensive validation off the per-packet hot path.
//
//   - DefaultTimeout (1s): Receive timeout for blocking-mode sockets.
//
// # Validation Functions
//
// Each validation function checks for empty payloads and capacity
// violations:
//
//	err := limits.ValidateDatagram(payload)
//	if err != nil {
//	    // ErrPayloadEmpty or ErrPayloadTooLarge
//	}
//
// For custom capacities, use the generic ValidatePayloadSize function.
//
// # Memory Model
//
// The transport allocates its frames once at construction and never
// grows them; MaxDatagramSize is therefore also the worst-case memory
// held per direction for the lifetime of a transport instance.
package limits
