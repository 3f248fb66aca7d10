package address

import (
	"net"
	"testing"
)

// TestParse tests dotted-decimal parsing including malformed input.
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Address
		wantErr bool
	}{
		{
			name:  "valid private address",
			input: "192.168.1.10",
			want:  Address{192, 168, 1, 10},
		},
		{
			name:  "zero address",
			input: "0.0.0.0",
			want:  Zero,
		},
		{
			name:  "broadcast",
			input: "255.255.255.255",
			want:  Broadcast,
		},
		{
			name:  "multicast group",
			input: "239.1.2.3",
			want:  Address{239, 1, 2, 3},
		},
		{
			name:    "too few octets",
			input:   "10.0.0",
			wantErr: true,
		},
		{
			name:    "too many octets",
			input:   "10.0.0.1.2",
			wantErr: true,
		},
		{
			name:    "octet out of range",
			input:   "10.0.0.256",
			wantErr: true,
		},
		{
			name:    "negative octet",
			input:   "10.-1.0.1",
			wantErr: true,
		},
		{
			name:    "non-numeric",
			input:   "ten.0.0.1",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error, got %v", tt.input, got)
				}
				if got != Zero {
					t.Errorf("Parse(%q) on error should return Zero, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestStringRoundTrip verifies String is the inverse of Parse.
func TestStringRoundTrip(t *testing.T) {
	addrs := []Address{
		{192, 168, 1, 1},
		{10, 0, 0, 255},
		{224, 0, 0, 251},
		Zero,
		Broadcast,
	}

	for _, a := range addrs {
		parsed, err := Parse(a.String())
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", a.String(), err)
			continue
		}
		if parsed != a {
			t.Errorf("round trip %v -> %q -> %v", a, a.String(), parsed)
		}
	}
}

// TestUint32RoundTrip verifies FromUint32 is the inverse of Uint32.
func TestUint32RoundTrip(t *testing.T) {
	tests := []struct {
		value uint32
		want  Address
	}{
		{0xC0A80101, Address{192, 168, 1, 1}},
		{0, Zero},
		{0xFFFFFFFF, Broadcast},
		{0xEF010203, Address{239, 1, 2, 3}},
	}

	for _, tt := range tests {
		got := FromUint32(tt.value)
		if got != tt.want {
			t.Errorf("FromUint32(%#x) = %v, want %v", tt.value, got, tt.want)
		}
		if got.Uint32() != tt.value {
			t.Errorf("%v.Uint32() = %#x, want %#x", got, got.Uint32(), tt.value)
		}
	}
}

// TestFromIP covers IPv4, 4-in-6 mapped, and pure IPv6 inputs.
func TestFromIP(t *testing.T) {
	if got, ok := FromIP(net.ParseIP("172.16.0.9")); !ok || got != New(172, 16, 0, 9) {
		t.Errorf("FromIP(172.16.0.9) = %v, %v", got, ok)
	}
	if got, ok := FromIP(net.ParseIP("::ffff:10.1.2.3")); !ok || got != New(10, 1, 2, 3) {
		t.Errorf("FromIP(::ffff:10.1.2.3) = %v, %v", got, ok)
	}
	if _, ok := FromIP(net.ParseIP("2001:db8::1")); ok {
		t.Error("FromIP should reject pure IPv6 addresses")
	}
	if _, ok := FromIP(nil); ok {
		t.Error("FromIP should reject nil IP")
	}
}

// TestValueSemantics verifies comparability and indexed access.
func TestValueSemantics(t *testing.T) {
	a := New(192, 168, 1, 10)
	b := New(192, 168, 1, 10)
	c := New(192, 168, 1, 11)

	if a != b {
		t.Error("identical addresses should compare equal with ==")
	}
	if !a.Equal(b) {
		t.Error("Equal should report identical addresses as equal")
	}
	if a == c || a.Equal(c) {
		t.Error("distinct addresses should not compare equal")
	}
	if a[0] != 192 || a[3] != 10 {
		t.Errorf("indexed access broken: %v", a)
	}

	// Copies are independent values.
	d := a
	d[0] = 10
	if a[0] != 192 {
		t.Error("mutating a copy must not affect the original")
	}
}

// TestIsMulticast checks the 224.0.0.0/4 range boundaries.
func TestIsMulticast(t *testing.T) {
	tests := []struct {
		addr Address
		want bool
	}{
		{New(223, 255, 255, 255), false},
		{New(224, 0, 0, 0), true},
		{New(239, 255, 255, 255), true},
		{New(240, 0, 0, 0), false},
		{New(192, 168, 1, 1), false},
	}
	for _, tt := range tests {
		if got := tt.addr.IsMulticast(); got != tt.want {
			t.Errorf("%v.IsMulticast() = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
