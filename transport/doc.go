// Package transport provides a packet-oriented UDP endpoint for
// device-group synchronization traffic, with duplicate-datagram
// suppression and self-healing socket management.
//
// # Architecture
//
// The core is a single UDP object composed of three collaborators
// over one owned socket:
//
//   - SocketManager: socket lifecycle (create, configure, bind,
//     multicast join, validate, teardown). It defensively re-creates a
//     handle that the OS has invalidated, e.g. after a network stack
//     reset.
//   - Sender: begin/write/end framing into a fixed-capacity send
//     frame, transmitted atomically as one datagram on EndPacket.
//   - Receiver: parse/available/read/peek/flush framing over a
//     fixed-capacity receive frame, with a fingerprint-based
//     deduplicator that drops byte-identical repeats from the same
//     sender inside a 100 ms window.
//
// # Usage
//
//	udp := transport.New(transport.DefaultConfig())
//	if !udp.BeginMulticast(5353, group, ifaceAddr) {
//	    // bind or join failed; retry later
//	}
//
//	udp.BeginPacket(peer, 5353)
//	udp.WriteString("PING")
//	udp.EndPacket()
//
//	if n := udp.ParsePacket(); n > 0 {
//	    buf := make([]byte, n)
//	    udp.Read(buf)
//	}
//
// # Error Model
//
// No operation panics or returns an error value at this surface:
// fallible operations return a boolean success flag, byte-level reads
// return -1 when empty, and bulk operations return achieved counts.
// Internally errors are structured (TransportError with Op/Addr/Err)
// and logged; the boundary keeps the sentinel contract so protocol
// code above stays branch-simple.
//
// # Concurrency
//
// The transport is single-threaded by design: all operations run to
// completion on the caller's goroutine and no internal goroutines
// exist. ParsePacket and EndPacket block for at most the configured
// timeout (SetTimeout), or poll when the timeout is zero. External
// synchronization is the caller's responsibility; the object must not
// be copied or shared between goroutines.
//
// # Memory
//
// Both frames are allocated once at construction and never grow.
// Writes beyond capacity are truncated, with returned counts
// reflecting the truncation.
package transport
