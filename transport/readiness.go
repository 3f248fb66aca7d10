package transport

import (
	"net"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/dgram/address"
)

// ReadinessProbe reports whether the network link is usable. The
// transport consults the probe before every send and receive attempt
// and short-circuits I/O when the link is down, so a disconnected node
// never burns cycles on doomed syscalls.
type ReadinessProbe interface {
	// Ready returns true when the link is usable for datagram I/O.
	Ready() bool
}

// InterfaceProbe is the default ReadinessProbe. It reports ready when
// at least one non-loopback interface is up and carries a usable IPv4
// address, mirroring the link-manager check an embedded node performs
// against its station interface.
type InterfaceProbe struct{}

// Ready scans the host interfaces for an up, non-loopback IPv4
// address. Enumeration failures are treated as not ready.
func (InterfaceProbe) Ready() bool {
	ip, ok := firstUsableIPv4()
	if !ok {
		logrus.WithFields(logrus.Fields{
			"component": "InterfaceProbe",
		}).Debug("No usable IPv4 interface found")
		return false
	}
	return !ip.IsZero()
}

// StaticProbe is a ReadinessProbe with a fixed answer. It serves tests
// and callers whose readiness comes from an external link-management
// component that pushes state rather than being polled.
type StaticProbe bool

// Ready returns the fixed readiness value.
func (p StaticProbe) Ready() bool {
	return bool(p)
}

// firstUsableIPv4 returns the IPv4 address of the first up,
// non-loopback interface.
func firstUsableIPv4() (address.Address, bool) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return address.Zero, false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if addr, ok := address.FromIP(ipnet.IP); ok && !addr.IsZero() {
				return addr, true
			}
		}
	}
	return address.Zero, false
}

// interfaceByAddress resolves the net.Interface that owns the given
// IPv4 address. A zero address selects no interface (nil), letting the
// OS pick the default for multicast joins.
func interfaceByAddress(addr address.Address) (*net.Interface, error) {
	if addr.IsZero() {
		return nil, nil
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, newTransportError("resolve interface", addr.String(), err)
	}

	for i := range ifaces {
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if got, ok := address.FromIP(ipnet.IP); ok && got == addr {
				return &ifaces[i], nil
			}
		}
	}
	return nil, newTransportError("resolve interface", addr.String(), ErrNoInterface)
}
