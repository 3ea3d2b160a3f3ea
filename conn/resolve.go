package conn

import (
	"errors"
	"fmt"
	"net"
	"net/netip"

	"go.uber.org/zap"
)

var ErrNoIPv4 = errors.New("no ipv4 address")

// Resolve returns the first IPv4 address of name using the system resolver.
// Literal addresses are returned without a lookup.
func Resolve(name string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(name); err == nil {
		if addr.Is4() || addr.Is4In6() {
			return addr.Unmap(), nil
		}
		return netip.Addr{}, fmt.Errorf("%w: %s", ErrNoIPv4, name)
	}
	ips, err := net.LookupIP(name)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("resolve %s: %w", name, err)
	}
	for _, ip := range ips {
		if ipv4 := ip.To4(); ipv4 != nil {
			addr, _ := netip.AddrFromSlice(ipv4)
			logger.Debug("resolved", zap.String("name", name), zap.String("ip", addr.String()))
			return addr, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%w: %s", ErrNoIPv4, name)
}
