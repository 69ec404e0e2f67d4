package middleware

import (
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"tradegate/internal/infra/metrics"
)

// AdminGate serves next only to callers whose remote IP is inside one of the allowed networks.
// Denials are counted and logged with the request id.
func AdminGate(allowed []*net.IPNet, l zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := remoteIP(r); ip != nil && containsIP(allowed, ip) {
			next.ServeHTTP(w, r)
			return
		}
		metrics.AdminDeniedTotal.Inc()
		l.Warn().
			Str("rid", GetRequestID(r.Context())).
			Str("remote", r.RemoteAddr).
			Str("path", r.URL.Path).
			Msg("admin_denied")
		http.Error(w, "forbidden", http.StatusForbidden)
	})
}

func remoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

func containsIP(nets []*net.IPNet, ip net.IP) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
