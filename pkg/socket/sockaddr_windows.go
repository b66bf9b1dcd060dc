//go:build windows

package socket

import "golang.org/x/sys/windows"

// toSockaddr builds the native socket address; the port is converted to
// network byte order by x/sys.
func toSockaddr(a Address) (sockaddr, error) {
	switch a.family {
	case FamilyIPv4:
		return &windows.SockaddrInet4{Port: int(a.Port), Addr: a.v4}, nil
	case FamilyIPv6:
		return &windows.SockaddrInet6{Port: int(a.Port), Addr: a.v6}, nil
	default:
		return nil, ErrUnknownFamily
	}
}

// fromSockaddr decodes an IPv4 or IPv6 socket address.
func fromSockaddr(sa sockaddr) (Address, error) {
	switch sa := sa.(type) {
	case *windows.SockaddrInet4:
		return AddressFromIPv4(sa.Addr, uint16(sa.Port)), nil
	case *windows.SockaddrInet6:
		return AddressFromIPv6(sa.Addr, uint16(sa.Port)), nil
	default:
		return Address{}, ErrUnknownFamily
	}
}
