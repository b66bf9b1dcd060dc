package socket

import (
	"net/netip"
	"testing"
)

func TestAddress_Family(t *testing.T) {
	tests := []struct {
		name     string
		addr     Address
		expected Family
	}{
		{"IPv4 any", AnyIPv4, FamilyIPv4},
		{"IPv6 any", AnyIPv6, FamilyIPv6},
		{"IPv4 loopback", LoopbackIPv4, FamilyIPv4},
		{"IPv6 loopback", LoopbackIPv6, FamilyIPv6},
		{"zero value", Address{}, FamilyUnspec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.Family(); got != tt.expected {
				t.Errorf("Family() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAddress_V4_PanicsOnIPv6(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic reading V4 of an IPv6 address")
		}
	}()
	_ = LoopbackIPv6.V4()
}

func TestAddress_V6_PanicsOnIPv4(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic reading V6 of an IPv4 address")
		}
	}()
	_ = LoopbackIPv4.V6()
}

func TestAddress_V4_ReturnsNetworkOrderBytes(t *testing.T) {
	a := AddressFromIPv4([4]byte{192, 168, 1, 20}, 80)

	if got := a.V4(); got != [4]byte{192, 168, 1, 20} {
		t.Errorf("unexpected host bytes %v", got)
	}
	if a.Port != 80 {
		t.Errorf("expected port 80, got %d", a.Port)
	}
}

func TestAddress_IsAny(t *testing.T) {
	tests := []struct {
		name     string
		addr     Address
		expected bool
	}{
		{"IPv4 any", AnyIPv4, true},
		{"IPv6 any", AnyIPv6, true},
		{"IPv4 any with port", AnyIPv4.WithPort(9000), true},
		{"IPv4 loopback", LoopbackIPv4, false},
		{"IPv6 loopback", LoopbackIPv6, false},
		{"unspec", Address{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.IsAny(); got != tt.expected {
				t.Errorf("IsAny() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAddress_Equal(t *testing.T) {
	a := AddressFromIPv4([4]byte{10, 0, 0, 1}, 5000)

	if !a.Equal(AddressFromIPv4([4]byte{10, 0, 0, 1}, 5000)) {
		t.Error("expected identical addresses to be equal")
	}
	if a.Equal(a.WithPort(5001)) {
		t.Error("expected different ports to be unequal")
	}
	if AnyIPv4.Equal(AnyIPv6) {
		t.Error("expected wildcards of different families to be unequal")
	}

	// The v4-mapped form is a distinct IPv6 address.
	mapped := AddressFromNetIP(netip.MustParseAddr("::ffff:10.0.0.1"), 5000)
	if a.Equal(mapped) {
		t.Error("expected IPv4 and v4-mapped IPv6 to be unequal")
	}
}

func TestAddress_String(t *testing.T) {
	tests := []struct {
		name     string
		addr     Address
		expected string
	}{
		{"IPv4", AddressFromIPv4([4]byte{127, 0, 0, 1}, 8080), "127.0.0.1:8080"},
		{"IPv6", LoopbackIPv6.WithPort(443), "[::1]:443"},
		{"unspec", Address{Port: 7}, "unspec:7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("[2001:db8::1]:9000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Family() != FamilyIPv6 || a.Port != 9000 {
		t.Errorf("unexpected address %v", a)
	}

	if _, err := ParseAddress("not-an-address"); err == nil {
		t.Error("expected error for invalid address")
	}
}

func TestAddressFromNetIP_DropsZone(t *testing.T) {
	a := AddressFromNetIP(netip.MustParseAddr("fe80::1%eth0"), 0)

	if a.Family() != FamilyIPv6 {
		t.Fatalf("expected IPv6, got %v", a.Family())
	}
	if a.NetIP().Zone() != "" {
		t.Errorf("expected zone to be dropped, got %q", a.NetIP().Zone())
	}
}
