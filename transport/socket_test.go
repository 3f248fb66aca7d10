package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/dgram/address"
	"github.com/opd-ai/dgram/limits"
)

// TestInitSocketIdempotent verifies a valid handle makes InitSocket a
// no-op success.
func TestInitSocketIdempotent(t *testing.T) {
	sm := NewSocketManager(StaticProbe(true), nil)
	defer sm.Stop()

	require.True(t, sm.InitSocket())
	first := sm.conn
	require.True(t, sm.InitSocket(), "second InitSocket must succeed")
	assert.Same(t, first, sm.conn, "existing handle must be kept")
}

// TestBeginBindsAndRebinds verifies Begin produces a bound socket and
// a later Begin replaces it without leaking the old handle.
func TestBeginBindsAndRebinds(t *testing.T) {
	sm := NewSocketManager(StaticProbe(true), nil)
	defer sm.Stop()

	require.True(t, sm.Begin(0))
	firstPort := sm.LocalPort()
	assert.NotZero(t, firstPort)
	assert.True(t, sm.Connected())

	require.True(t, sm.Begin(0), "rebinding must succeed")
	assert.NotZero(t, sm.LocalPort())
}

// TestBeginRefusedWhenNotReady verifies the readiness short-circuit.
func TestBeginRefusedWhenNotReady(t *testing.T) {
	sm := NewSocketManager(StaticProbe(false), nil)
	assert.False(t, sm.Begin(0))
	assert.False(t, sm.Connected())
}

// TestSharedPortBinding verifies two managers can bind the same
// discovery port thanks to address reuse.
func TestSharedPortBinding(t *testing.T) {
	a := NewSocketManager(StaticProbe(true), nil)
	defer a.Stop()
	require.True(t, a.Begin(0))
	port := a.LocalPort()

	b := NewSocketManager(StaticProbe(true), nil)
	defer b.Stop()
	assert.True(t, b.Begin(port), "second bind on %d must succeed with reuse enabled", port)
}

// TestBindConflictSurfacesSentinel verifies a bind refused by the OS
// is reported through the bind sentinel. The conflicting socket is
// created without address reuse, so the reuse-enabled bind still
// collides.
func TestBindConflictSurfacesSentinel(t *testing.T) {
	plain, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer plain.Close()
	port := uint16(plain.LocalAddr().(*net.UDPAddr).Port)

	_, err = listenReuse(port)
	require.Error(t, err, "wildcard bind over a non-reuse socket must fail")
	assert.ErrorIs(t, err, ErrBindFailed)
}

// TestValidateSocketRecovery simulates OS handle invalidation and
// verifies the manager reports the fault once, reinitializes itself,
// and then carries traffic without caller intervention.
func TestValidateSocketRecovery(t *testing.T) {
	clock := newFakeClock()
	sm := NewSocketManager(StaticProbe(true), clock)
	defer sm.Stop()

	require.True(t, sm.Begin(0))
	require.True(t, sm.ValidateSocket())

	// Kill the handle behind the manager's back, then step past the
	// probe rate limit so the next validation actually looks.
	sm.conn.Close()
	clock.advance(limits.ValidateInterval + time.Second)

	assert.False(t, sm.ValidateSocket(), "dead handle must be detected")
	assert.True(t, sm.ValidateSocket(), "reinitialized handle must validate")
	assert.True(t, sm.Connected(), "recovered manager must report connected")

	// A send through the recovered socket succeeds with no caller-side
	// repair.
	sender := NewSender(sm, 0)
	require.True(t, sender.BeginPacket(address.New(127, 0, 0, 1), 9))
	sender.WriteString("recovered")
	assert.True(t, sender.EndPacket())
}

// TestValidateSocketRateLimit verifies probes are spaced by
// limits.ValidateInterval and the cached verdict is served between
// them.
func TestValidateSocketRateLimit(t *testing.T) {
	clock := newFakeClock()
	sm := NewSocketManager(StaticProbe(true), clock)
	defer sm.Stop()

	require.True(t, sm.Begin(0))

	// Even with a dead handle, the cached verdict holds until the
	// interval elapses.
	sm.conn.Close()
	clock.advance(time.Second)
	assert.True(t, sm.ValidateSocket(), "within the interval the cached verdict stands")

	clock.advance(limits.ValidateInterval)
	assert.False(t, sm.ValidateSocket(), "past the interval the probe runs and fails")
}

// TestStopClearsState verifies Stop invalidates the handle and
// bound-address state, repeatedly and safely.
func TestStopClearsState(t *testing.T) {
	sm := NewSocketManager(StaticProbe(true), nil)

	require.True(t, sm.Begin(0))
	sm.Stop()
	assert.Nil(t, sm.conn)
	assert.Zero(t, sm.LocalPort())
	assert.False(t, sm.Connected())
	assert.False(t, sm.ValidateSocket())

	sm.Stop() // second Stop is a no-op
	assert.Nil(t, sm.conn)
}

// TestSetTimeoutClamps verifies negative timeouts select polling mode.
func TestSetTimeoutClamps(t *testing.T) {
	sm := NewSocketManager(StaticProbe(true), nil)
	sm.SetTimeout(-time.Second)
	assert.Zero(t, sm.Timeout())
	sm.SetTimeout(200 * time.Millisecond)
	assert.Equal(t, 200*time.Millisecond, sm.Timeout())
}

// TestBeginMulticastRejectsUnicastGroup verifies the group address is
// validated before any socket work happens.
func TestBeginMulticastRejectsUnicastGroup(t *testing.T) {
	sm := NewSocketManager(StaticProbe(true), nil)
	assert.False(t, sm.BeginMulticast(5353, address.New(192, 168, 1, 1), address.Zero))
	assert.False(t, sm.Connected(), "failed join must leave the manager not started")
}

// TestBeginMulticastBadInterface verifies a join failure after a
// successful bind tears the socket down rather than leaving it
// half-bound.
func TestBeginMulticastBadInterface(t *testing.T) {
	sm := NewSocketManager(StaticProbe(true), nil)
	ok := sm.BeginMulticast(0, address.New(239, 1, 2, 3), address.New(198, 51, 100, 77))
	assert.False(t, ok, "join on an interface we do not own must fail")
	assert.Nil(t, sm.conn, "socket must be closed after the failed join")
	assert.False(t, sm.Connected())
}

// TestMulticastLoopbackExchange runs the group scenario end to end:
// join, send to the group, receive with sender capture. Environments
// without multicast routing skip.
func TestMulticastLoopbackExchange(t *testing.T) {
	group := address.New(239, 1, 2, 3)

	rx := New(Config{
		Timeout: 250 * time.Millisecond,
		Probe:   StaticProbe(true),
	})
	if !rx.BeginMulticast(0, group, address.Zero) {
		t.Skip("multicast join unavailable in this environment")
	}
	defer rx.Stop()

	tx := New(Config{Probe: StaticProbe(true)})
	defer tx.Stop()

	require.True(t, tx.BeginPacket(group, rx.LocalPort()))
	require.Equal(t, 4, tx.WriteString("PING"))
	if !tx.EndPacket() {
		t.Skip("multicast send unavailable in this environment")
	}

	n := parseRetry(rx, 30)
	if n == 0 {
		t.Skip("multicast loopback delivery unavailable in this environment")
	}

	require.Equal(t, 4, n)
	buf := make([]byte, 4)
	require.Equal(t, 4, rx.Read(buf))
	assert.Equal(t, "PING", string(buf))
	assert.False(t, rx.RemoteIP().IsZero(), "sender address must be captured")
	assert.Equal(t, tx.LocalPort(), rx.RemotePort())
}
