// internal/requestinfo/requestinfo.go
//
// Per-request client metadata: parsed User-Agent, client IP with an
// optional GeoLite2 lookup, request path, and arrival time.
//
// Context
// -------
// Resolver.Enrich attaches a *RequestInfo to every request.  Widgets read
// it through the *http.Request they bind (`requestinfo.FromContext`), and
// the view engine exposes it to templates as browser / os / device / …
// helpers.  The struct is plain data, so RequestInfoWidget serves it as
// JSON unchanged.
package requestinfo

import (
	"context"
	"net"
	"time"
)

// UA holds the parsed user-agent properties.
type UA struct {
	Raw         string `json:"raw"`
	Browser     string `json:"browser"`    // "Chrome", "Firefox", "Safari"
	Version     string `json:"version"`    // "124", "17.4"
	OS          string `json:"os"`         // "macOS", "Windows", "Android"
	OSVersion   string `json:"os_version"` // "14.5", "10"
	Device      string `json:"device"`     // "Desktop", "Phone", "Tablet", "Bot"
	Platform    string `json:"platform"`   // "Mac", "Windows", "iPhone"
	IsBot       bool   `json:"is_bot"`
	PrimaryLang string `json:"lang"` // first Accept-Language tag, lower-case
}

// Geo holds best-effort location hints.  Everything but IP is empty
// without a GeoLite2 database.
type Geo struct {
	IP         net.IP `json:"ip"`
	CountryISO string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
}

// RequestInfo is attached to the request context by Enrich.
type RequestInfo struct {
	UA        UA        `json:"ua"`
	Geo       Geo       `json:"geo"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying info.
func NewContext(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the value stored by Enrich, or nil.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}
