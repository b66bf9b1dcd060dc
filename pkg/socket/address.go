package socket

import (
	"fmt"
	"net/netip"
	"strconv"
)

// Family is the address family of an Address.
type Family uint8

const (
	FamilyUnspec Family = iota
	FamilyIPv4
	FamilyIPv6
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	case FamilyUnspec:
		return "unspec"
	default:
		return "family(" + strconv.Itoa(int(f)) + ")"
	}
}

// Address is an IPv4 or IPv6 host plus a port in host byte order.
// The family decides which host value is meaningful; V4 and V6 panic when
// called on the other family.
type Address struct {
	family Family
	v4     [4]byte
	v6     [16]byte
	Port   uint16
}

var (
	// AnyIPv4 is the IPv4 wildcard address 0.0.0.0.
	AnyIPv4 = Address{family: FamilyIPv4}
	// AnyIPv6 is the IPv6 wildcard address ::.
	AnyIPv6 = Address{family: FamilyIPv6}
	// LoopbackIPv4 is 127.0.0.1.
	LoopbackIPv4 = AddressFromIPv4([4]byte{127, 0, 0, 1}, 0)
	// LoopbackIPv6 is ::1.
	LoopbackIPv6 = AddressFromIPv6([16]byte{15: 1}, 0)
)

// AddressFromIPv4 builds an IPv4 address. host is in network byte order.
func AddressFromIPv4(host [4]byte, port uint16) Address {
	return Address{family: FamilyIPv4, v4: host, Port: port}
}

// AddressFromIPv6 builds an IPv6 address.
func AddressFromIPv6(host [16]byte, port uint16) Address {
	return Address{family: FamilyIPv6, v6: host, Port: port}
}

// AddressFromNetIP converts a netip.Addr. IPv4-mapped IPv6 addresses keep
// the IPv6 family; zones are dropped.
func AddressFromNetIP(ip netip.Addr, port uint16) Address {
	switch {
	case ip.Is4():
		return AddressFromIPv4(ip.As4(), port)
	case ip.Is6():
		return AddressFromIPv6(ip.As16(), port)
	default:
		return Address{Port: port}
	}
}

// ParseAddress parses an "ip:port" or "[ipv6]:port" string.
func ParseAddress(s string) (Address, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return AddressFromNetIP(ap.Addr().WithZone(""), ap.Port()), nil
}

func anyAddress(f Family) Address {
	if f == FamilyIPv6 {
		return AnyIPv6
	}
	return AnyIPv4
}

// Family returns the address family.
func (a Address) Family() Family {
	return a.family
}

// V4 returns the IPv4 host in network byte order.
func (a Address) V4() [4]byte {
	if a.family != FamilyIPv4 {
		panic("socket: V4 called on " + a.family.String() + " address")
	}
	return a.v4
}

// V6 returns the IPv6 host bytes.
func (a Address) V6() [16]byte {
	if a.family != FamilyIPv6 {
		panic("socket: V6 called on " + a.family.String() + " address")
	}
	return a.v6
}

// WithPort returns a copy of a using port.
func (a Address) WithPort(port uint16) Address {
	a.Port = port
	return a
}

// IsAny reports whether the host is the all-zero wildcard of its family.
func (a Address) IsAny() bool {
	switch a.family {
	case FamilyIPv4:
		return a.v4 == [4]byte{}
	case FamilyIPv6:
		return a.v6 == [16]byte{}
	default:
		return false
	}
}

// Equal reports whether a and b have the same family, host and port.
func (a Address) Equal(b Address) bool {
	if a.family != b.family || a.Port != b.Port {
		return false
	}
	switch a.family {
	case FamilyIPv4:
		return a.v4 == b.v4
	case FamilyIPv6:
		return a.v6 == b.v6
	default:
		return true
	}
}

// NetIP returns the host as a netip.Addr, or the zero Addr for FamilyUnspec.
func (a Address) NetIP() netip.Addr {
	switch a.family {
	case FamilyIPv4:
		return netip.AddrFrom4(a.v4)
	case FamilyIPv6:
		return netip.AddrFrom16(a.v6)
	default:
		return netip.Addr{}
	}
}

// AddrPort returns the host and port as a netip.AddrPort.
func (a Address) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(a.NetIP(), a.Port)
}

// String formats the address as "host:port".
func (a Address) String() string {
	if a.family != FamilyIPv4 && a.family != FamilyIPv6 {
		return "unspec:" + strconv.Itoa(int(a.Port))
	}
	return a.AddrPort().String()
}

// literal returns the numeric host text.
func (a Address) literal() (string, error) {
	switch a.family {
	case FamilyIPv4, FamilyIPv6:
		return a.NetIP().String(), nil
	default:
		return "", ErrUnknownFamily
	}
}
