// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net"
	"net/http"
	"strings"
)

type httpsConfig struct {
	hosts      map[string]bool // nil accepts every host
	trustProxy bool
}

// HTTPSOption configures ForceHTTPS.
type HTTPSOption func(*httpsConfig)

// WithHosts limits redirects to the given host names.  Other hosts are
// served as-is and usually 404 further down.
func WithHosts(hosts ...string) HTTPSOption {
	return func(c *httpsConfig) {
		c.hosts = make(map[string]bool, len(hosts))
		for _, h := range hosts {
			c.hosts[strings.ToLower(h)] = true
		}
	}
}

// WithProxyProto accepts X-Forwarded-Proto: https as proof of TLS.  Only
// enable it behind a proxy that sets the header itself.
func WithProxyProto(on bool) HTTPSOption {
	return func(c *httpsConfig) { c.trustProxy = on }
}

// ForceHTTPS answers plain-HTTP requests with a 308 to the same URL on
// https.  Loopback hosts are never redirected.
func ForceHTTPS(opts ...HTTPSOption) func(http.Handler) http.Handler {
	cfg := &httpsConfig{}
	for _, o := range opts {
		o(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.secure(r) {
				next.ServeHTTP(w, r)
				return
			}
			host := strings.ToLower(hostOnly(r.Host))
			if isLoopback(host) || (cfg.hosts != nil && !cfg.hosts[host]) {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusPermanentRedirect)
		})
	}
}

func (c *httpsConfig) secure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return c.trustProxy && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// hostOnly drops a :port suffix, including from bracketed IPv6 hosts.
func hostOnly(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return strings.Trim(hostport, "[]")
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
