// Package address implements the IPv4 address value type used by the
// datagram transport.
//
// Addresses are plain four-byte values with array semantics: they are
// comparable with ==, copyable, and carry no hidden state. The package
// bridges to net.IP where the standard library is involved, but keeps
// the wire-facing representation fixed at four bytes.
package address

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Address is a four-byte IPv4 address in network byte order:
// index 0 is the most significant octet of the dotted form.
type Address [4]byte

// Well-known addresses.
var (
	// Zero is the unspecified address 0.0.0.0.
	Zero = Address{0, 0, 0, 0}

	// Broadcast is the limited broadcast address 255.255.255.255.
	Broadcast = Address{255, 255, 255, 255}
)

// New builds an Address from four octets, most significant first.
func New(a, b, c, d byte) Address {
	return Address{a, b, c, d}
}

// FromUint32 builds an Address from a host-order 32-bit value where
// the high byte is the first octet (0xC0A80101 -> 192.168.1.1).
func FromUint32(v uint32) Address {
	return Address{
		byte(v >> 24),
		byte(v >> 16),
		byte(v >> 8),
		byte(v),
	}
}

// FromIP converts a net.IP to an Address. The second return value is
// false when ip is not representable as IPv4.
func FromIP(ip net.IP) (Address, bool) {
	v4 := ip.To4()
	if v4 == nil {
		return Zero, false
	}
	return Address{v4[0], v4[1], v4[2], v4[3]}, true
}

// Parse converts a dotted-decimal string to an Address. Malformed
// input yields the zero Address and a non-nil error; Parse never
// panics on any input.
func Parse(s string) (Address, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Zero, fmt.Errorf("address: parse %q: expected 4 octets, got %d", s, len(parts))
	}

	var addr Address
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return Zero, fmt.Errorf("address: parse %q: octet %d: %w", s, i, err)
		}
		addr[i] = byte(n)
	}
	return addr, nil
}

// Uint32 returns the address as a host-order 32-bit value with the
// first octet in the high byte. Inverse of FromUint32.
func (a Address) Uint32() uint32 {
	return uint32(a[0])<<24 | uint32(a[1])<<16 | uint32(a[2])<<8 | uint32(a[3])
}

// IP returns the address as a net.IP for use with the standard
// library socket APIs.
func (a Address) IP() net.IP {
	return net.IPv4(a[0], a[1], a[2], a[3])
}

// String returns the dotted-decimal form.
func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3])
}

// Equal reports whether two addresses are byte-wise identical.
// Addresses are also directly comparable with ==.
func (a Address) Equal(other Address) bool {
	return a == other
}

// IsZero reports whether the address is the unspecified 0.0.0.0.
func (a Address) IsZero() bool {
	return a == Zero
}

// IsMulticast reports whether the address is in the IPv4 multicast
// range 224.0.0.0/4.
func (a Address) IsMulticast() bool {
	return a[0]&0xF0 == 0xE0
}
