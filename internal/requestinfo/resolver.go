// internal/requestinfo/resolver.go
//
// Resolver owns the GeoLite2 handle and the parsed-UA cache.  One
// instance is built in main() from the request_info config section.
//
// Notes
// -----
//   - A missing geo_db path is not an error; Geo then carries only the IP.
//   - The UA cache is keyed by the raw header.  Bots and crawlers rotate
//     through a small set of strings, so hit rates stay high.
//   - Forwarding headers are honoured only with WithTrustedProxy(true).
package requestinfo

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/yanizio/widgets/internal/cache"
)

const defaultUACacheSize = 4096

// Option configures a Resolver.
type Option func(*Resolver)

// WithGeoDB sets the GeoLite2-City database path.  "" disables lookups.
func WithGeoDB(path string) Option { return func(rs *Resolver) { rs.geoPath = path } }

// WithTrustedProxy makes clientIP read X-Forwarded-For and X-Real-Ip.
func WithTrustedProxy(on bool) Option { return func(rs *Resolver) { rs.trustProxy = on } }

// WithUACacheSize bounds the parsed-UA cache.  n <= 0 keeps the default.
func WithUACacheSize(n int) Option {
	return func(rs *Resolver) {
		if n > 0 {
			rs.cacheSize = n
		}
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *zap.Logger) Option { return func(rs *Resolver) { rs.log = l } }

// Resolver builds RequestInfo values.  Safe for concurrent use.
type Resolver struct {
	geoPath    string
	geo        *geoip2.Reader
	uas        *cache.LRU[string, UA]
	cacheSize  int
	trustProxy bool
	log        *zap.Logger
	now        func() time.Time
}

// New opens the geo database (when configured) and returns a Resolver.
func New(opts ...Option) (*Resolver, error) {
	rs := &Resolver{
		cacheSize: defaultUACacheSize,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(rs)
	}
	rs.uas = cache.New[string, UA](rs.cacheSize)

	if rs.geoPath != "" {
		db, err := geoip2.Open(rs.geoPath)
		if err != nil {
			return nil, fmt.Errorf("requestinfo: open geo db %q: %w", rs.geoPath, err)
		}
		rs.geo = db
	}
	return rs, nil
}

// Close releases the geo database.
func (rs *Resolver) Close() error {
	if rs == nil || rs.geo == nil {
		return nil
	}
	return rs.geo.Close()
}

// CacheStats reports the parsed-UA cache counters.
func (rs *Resolver) CacheStats() cache.Stats { return rs.uas.Stats() }

// Resolve gathers the RequestInfo for r.
func (rs *Resolver) Resolve(r *http.Request) *RequestInfo {
	ua := rs.userAgent(r.UserAgent())
	ua.PrimaryLang = primaryLang(r.Header.Get("Accept-Language"))

	return &RequestInfo{
		UA:        ua,
		Geo:       rs.lookup(rs.clientIP(r)),
		Path:      r.URL.Path,
		Timestamp: rs.now().UTC(),
	}
}

func (rs *Resolver) userAgent(raw string) UA {
	if ua, ok := rs.uas.Get(raw); ok {
		return ua
	}
	ua := parseUA(raw)
	rs.uas.Add(raw, ua)
	return ua
}

// lookup never fails; a lookup error leaves the location fields empty.
func (rs *Resolver) lookup(ip net.IP) Geo {
	g := Geo{IP: ip}
	if rs.geo == nil || ip == nil {
		return g
	}
	rec, err := rs.geo.City(ip)
	if err != nil {
		rs.log.Debug("geo lookup failed", zap.Stringer("ip", ip), zap.Error(err))
		return g
	}
	g.CountryISO = rec.Country.IsoCode
	g.City = rec.City.Names["en"]
	return g
}
