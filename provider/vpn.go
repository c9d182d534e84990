// api/provider/vpn.go
package provider

import (
	"context"
	"fmt"
	"net/netip"
)

// HeuristicVPNDetector classifies an IP as VPN/proxy when it falls in a
// private or otherwise non-routable range, or inside one of the configured
// intel ranges (known VPN exit networks supplied by an external feed).
type HeuristicVPNDetector struct {
	intelRanges []netip.Prefix
}

func NewHeuristicVPNDetector(intelCIDRs []string) (*HeuristicVPNDetector, error) {
	ranges := make([]netip.Prefix, 0, len(intelCIDRs))
	for _, cidr := range intelCIDRs {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid VPN intel range %q: %w", cidr, err)
		}
		ranges = append(ranges, prefix)
	}
	return &HeuristicVPNDetector{intelRanges: ranges}, nil
}

func (d *HeuristicVPNDetector) DetectVPN(ctx context.Context, ipAddress string) (bool, error) {
	addr, err := netip.ParseAddr(ipAddress)
	if err != nil {
		return false, fmt.Errorf("invalid IP address %q: %w", ipAddress, err)
	}

	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsUnspecified() {
		return true, nil
	}

	for _, prefix := range d.intelRanges {
		if prefix.Contains(addr) {
			return true, nil
		}
	}
	return false, nil
}
