package netutil

import (
	"net"

	"github.com/rs/zerolog"
)

// ParseCIDRs parses CIDR strings into []*net.IPNet; invalid entries are logged and skipped.
func ParseCIDRs(cidrs []string, logger zerolog.Logger) (out []*net.IPNet) {
	for _, s := range cidrs {
		_, n, err := net.ParseCIDR(s)
		if err != nil || n == nil {
			logger.Warn().Str("cidr", s).Msg("ignoring invalid admin cidr")
			continue
		}
		out = append(out, n)
	}
	return
}
