// internal/requestinfo/middleware.go
//
// Enrich is mounted right after request logging so widgets, templates,
// and the access log all see the same RequestInfo.
package requestinfo

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Enrich attaches a *RequestInfo to the request context and forwards.
func (rs *Resolver) Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := rs.Resolve(r)

		if ce := rs.log.Check(zap.DebugLevel, "request info"); ce != nil {
			ce.Write(
				zap.Stringer("ip", info.Geo.IP),
				zap.String("country", info.Geo.CountryISO),
				zap.String("browser", info.UA.Browser),
				zap.String("device", info.UA.Device),
				zap.Bool("bot", info.UA.IsBot),
				zap.String("path", info.Path),
			)
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), info)))
	})
}

// clientIP returns the peer address.  Behind a trusted proxy the first
// parseable X-Forwarded-For entry wins, then X-Real-Ip.
func (rs *Resolver) clientIP(r *http.Request) net.IP {
	if rs.trustProxy {
		for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-Ip"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
