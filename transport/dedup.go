package transport

import (
	"hash/fnv"
	"time"

	"github.com/opd-ai/dgram/address"
)

// Deduplicator suppresses duplicate datagrams within a short time
// window. Device-discovery traffic on multicast segments is frequently
// re-delivered by switches and overlapping group memberships; without
// suppression a single announcement can fan out into a packet storm.
//
// The record holds only the most recent accepted fingerprint, which is
// all the storm pattern requires: duplicates arrive back to back, not
// interleaved with other traffic.
type Deduplicator struct {
	window   time.Duration
	clock    Clock
	lastHash uint32
	lastSeen time.Time
	primed   bool
}

// NewDeduplicator creates a deduplicator with the given suppression
// window. A zero or negative window disables suppression entirely.
// A nil clock selects the system clock.
func NewDeduplicator(window time.Duration, clock Clock) *Deduplicator {
	return &Deduplicator{
		window: window,
		clock:  getClock(clock),
	}
}

// fingerprint hashes the payload together with the sender descriptor
// so the same bytes from two different senders are distinct packets.
func fingerprint(payload []byte, sender address.Address, port uint16) uint32 {
	h := fnv.New32a()
	h.Write(payload)
	h.Write(sender[:])
	h.Write([]byte{byte(port >> 8), byte(port)})
	return h.Sum32()
}

// Observe reports whether a datagram is novel. It returns false when
// the fingerprint matches the stored record and the arrival time is
// within the window of the recorded acceptance; in that case the
// record is left untouched. Novel datagrams update the record and
// return true.
func (d *Deduplicator) Observe(payload []byte, sender address.Address, port uint16) bool {
	now := d.clock.Now()
	hash := fingerprint(payload, sender, port)

	if d.primed && d.window > 0 && hash == d.lastHash && now.Sub(d.lastSeen) < d.window {
		return false
	}

	d.lastHash = hash
	d.lastSeen = now
	d.primed = true
	return true
}

// Window returns the configured suppression window.
func (d *Deduplicator) Window() time.Duration {
	return d.window
}
