package netutil

import (
	"net"
	"strings"
)

// ParseCIDRs parses CIDR strings into networks. A bare IP is treated as a
// single-host network; invalid entries are returned in bad.
func ParseCIDRs(cidrs []string) (out []*net.IPNet, bad []string) {
	for _, s := range cidrs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			if ip := net.ParseIP(s); ip != nil {
				bits := 128
				if ip.To4() != nil {
					ip, bits = ip.To4(), 32
				}
				out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
				continue
			}
		}
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			bad = append(bad, s)
			continue
		}
		out = append(out, n)
	}
	return out, bad
}
