package readiness

import (
	"context"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// PortBound is true while the port shows up in the OS socket table for the
// given protocol ("udp" or "tcp"). A TCP port counts only in LISTEN state;
// any bound UDP socket counts.
func PortBound(proto string, port int) Check {
	kind := strings.ToLower(strings.TrimSpace(proto))
	return func(ctx context.Context) (bool, error) {
		conns, err := psnet.ConnectionsWithContext(ctx, kind)
		if err != nil {
			return false, err
		}
		for _, conn := range conns {
			if conn.Laddr.Port != uint32(port) {
				continue
			}
			if kind == "tcp" && conn.Status != "LISTEN" {
				continue
			}
			return true, nil
		}
		return false, nil
	}
}
