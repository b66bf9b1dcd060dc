package socket

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
)

// HostLookup is the subset of *net.Resolver used by Resolver.
type HostLookup interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// Resolver converts between host names or literals and Addresses.
type Resolver struct {
	lookup HostLookup
}

// NewResolver creates a Resolver backed by net.DefaultResolver.
func NewResolver() *Resolver {
	return &Resolver{
		lookup: net.DefaultResolver,
	}
}

// NewResolverWithLookup creates a Resolver backed by the given lookup.
func NewResolverWithLookup(l HostLookup) *Resolver {
	return &Resolver{lookup: l}
}

// Resolve converts name into an Address with port 0.
// IPv4 and IPv6 literals are parsed without a network lookup. Other names
// are looked up and the first IPv4 or IPv6 record is used.
func (r *Resolver) Resolve(ctx context.Context, name string) (Address, error) {
	return r.ResolveFamily(ctx, name, FamilyUnspec)
}

// ResolveFamily is Resolve restricted to one address family. FamilyUnspec
// accepts either.
func (r *Resolver) ResolveFamily(ctx context.Context, name string, family Family) (Address, error) {
	network, err := lookupNetwork(family)
	if err != nil {
		return Address{}, err
	}

	if addr, ok := parseLiteral(name); ok {
		if family != FamilyUnspec && addr.Family() != family {
			return Address{}, fmt.Errorf("%w: %s is not an %s address", ErrNotFound, name, family)
		}
		return addr, nil
	}

	host, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return Address{}, fmt.Errorf("%w: invalid hostname %q: %w", ErrNotFound, name, err)
	}

	ips, err := r.lookup.LookupNetIP(ctx, network, host)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}

	for _, ip := range ips {
		addr := AddressFromNetIP(ip.Unmap().WithZone(""), 0)
		if addr.Family() == FamilyUnspec {
			continue
		}
		if family == FamilyUnspec || addr.Family() == family {
			return addr, nil
		}
	}
	return Address{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func lookupNetwork(family Family) (string, error) {
	switch family {
	case FamilyUnspec:
		return "ip", nil
	case FamilyIPv4:
		return "ip4", nil
	case FamilyIPv6:
		return "ip6", nil
	default:
		return "", ErrUnknownFamily
	}
}

// ReverseLookup writes the host name of addr into buf as a NUL-terminated
// string and returns its length. When no name is found the numeric address
// is written instead. It fails only when the text does not fit.
func (r *Resolver) ReverseLookup(ctx context.Context, addr Address, buf []byte) (int, error) {
	lit, err := addr.literal()
	if err != nil {
		return 0, err
	}

	names, err := r.lookup.LookupAddr(ctx, lit)
	if err != nil || len(names) == 0 {
		return putString(buf, lit)
	}

	name := strings.TrimSuffix(names[0], ".")
	if name == "" {
		return putString(buf, lit)
	}
	return putString(buf, name)
}

// FormatLiteral writes the numeric form of addr into buf as a NUL-terminated
// string and returns its length.
func FormatLiteral(addr Address, buf []byte) (int, error) {
	lit, err := addr.literal()
	if err != nil {
		return 0, err
	}
	return putString(buf, lit)
}

func parseLiteral(name string) (Address, bool) {
	ip, err := netip.ParseAddr(name)
	if err != nil {
		return Address{}, false
	}
	return AddressFromNetIP(ip.WithZone(""), 0), true
}

// putString copies s and a terminating zero byte into buf.
func putString(buf []byte, s string) (int, error) {
	if len(s)+1 > len(buf) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, len(s)+1, len(buf))
	}
	n := copy(buf, s)
	buf[n] = 0
	return n, nil
}
