// Package sourceip maps a local subnet to the outbound IPv4 address
// that probes should bind to.
//
// Interfaces are enumerated in the order returned by the operating
// system, which is not guaranteed to be stable across platforms. When
// several local addresses fall within the same subnet, the first one
// in enumeration order wins.
package sourceip

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"

	"github.com/jheddings/safenet/internal/model"
)

var (
	// ErrInvalidCIDR indicates that we cannot parse a CIDR.
	ErrInvalidCIDR = errors.New("sourceip: invalid CIDR")

	// ErrNoMatchingInterface indicates that no local IPv4 address
	// belongs to the requested subnet.
	ErrNoMatchingInterface = errors.New("sourceip: no matching interface")
)

// Resolver resolves subnets to local IPv4 addresses. The zero value
// is invalid; please, use NewResolver to construct a new instance.
type Resolver struct {
	listAddrs func() ([]netip.Addr, error)
	logger    model.Logger

	mu    sync.Mutex
	cache map[string]netip.Addr
}

// NewResolver creates a new Resolver enumerating the addresses
// of the local network interfaces.
func NewResolver(logger model.Logger) *Resolver {
	return &Resolver{
		listAddrs: interfaceAddrs,
		logger:    model.ValidLoggerOrDefault(logger),
		cache:     make(map[string]netip.Addr),
	}
}

// ListIPv4 returns the IPv4 addresses of all local interfaces in
// enumeration order.
func (r *Resolver) ListIPv4() ([]netip.Addr, error) {
	return r.listAddrs()
}

// ResolveSourceIP returns the first local IPv4 address within cidr.
//
// Host bits in cidr are allowed (e.g., 10.0.1.7/24 means 10.0.1.0/24)
// and a bare address means a single host. Results are memoized for
// the lifetime of the Resolver.
func (r *Resolver) ResolveSourceIP(cidr string) (netip.Addr, error) {
	r.mu.Lock()
	if addr, found := r.cache[cidr]; found {
		r.mu.Unlock()
		return addr, nil
	}
	r.mu.Unlock()

	network, err := ParseCIDR(cidr)
	if err != nil {
		return netip.Addr{}, err
	}
	r.logger.Debugf("find device IP in network: %s", network)
	addrs, err := r.listAddrs()
	if err != nil {
		return netip.Addr{}, err
	}
	for _, addr := range addrs {
		r.logger.Debugf(" -- check IP address: %s", addr)
		if network.Contains(addr) {
			r.mu.Lock()
			r.cache[cidr] = addr
			r.mu.Unlock()
			return addr, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%w: %s", ErrNoMatchingInterface, cidr)
}

// ParseCIDR parses a subnet allowing host bits and bare addresses.
func ParseCIDR(cidr string) (netip.Prefix, error) {
	cidr = strings.TrimSpace(cidr)
	if !strings.Contains(cidr, "/") {
		addr, err := netip.ParseAddr(cidr)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("%w: %s", ErrInvalidCIDR, cidr)
		}
		addr = addr.Unmap()
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}
	network, err := netip.ParsePrefix(cidr)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %s", ErrInvalidCIDR, cidr)
	}
	return network.Masked(), nil
}

// interfaceAddrs returns the IPv4 addresses of the local interfaces.
func interfaceAddrs() ([]netip.Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []netip.Addr
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue // interface went away or is not readable
		}
		out = append(out, filterIPv4(addrs)...)
	}
	return out, nil
}

// filterIPv4 converts addrs keeping only the IPv4 ones.
func filterIPv4(addrs []net.Addr) []netip.Addr {
	var out []netip.Addr
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		default:
			continue
		}
		if ip4 := ip.To4(); ip4 != nil {
			out = append(out, netip.AddrFrom4([4]byte(ip4)))
		}
	}
	return out
}
