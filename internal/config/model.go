// internal/config/model.go
//
// Typed configuration model for the widget server.
//
// Context
// -------
// The shape of the tree loader.go merges (see its header for the layer
// order).  `vault:` references are resolved before unmarshalling, so these
// structs only ever hold plain values.  Validation errors are reported by
// koanf key, see validator.go.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Durations accept Go syntax ("15s", "2h").

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.  Zero timeouts fall back to the server
// package defaults.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`
	// ShutdownTimeout bounds graceful shutdown after SIGINT / SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host, port,
// or flags without touching Vault.  It carries exactly one `%s` where the
// password goes.  The *secret* (`Password`) is usually a `vault:` reference
// injected at load time, keeping credentials out of flat files and git
// history.  An empty DSN runs the contact sample on an in-memory store.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"omitempty,dsntemplate"`
	Password string `koanf:"password" validate:"required_with=DSN"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0"`
}

//
// Widgets section
//

// Widgets tunes the widget runtime and view engine.
type Widgets struct {
	ViewsDir          string        `koanf:"views_dir"           validate:"required"`
	Theme             string        `koanf:"theme"`
	DevReload         bool          `koanf:"dev_reload"` // reparse templates on every render
	TemplateCacheSize int           `koanf:"template_cache_size" validate:"gte=0"`
	AntiforgeryKey    string        `koanf:"antiforgery_key"` // base64url, ≥32 bytes once decoded
	AntiforgeryMaxAge time.Duration `koanf:"antiforgery_max_age" validate:"gte=0"`
	JSONIndent        string        `koanf:"json_indent"`
}

//
// Request info section
//

// RequestInfo tunes the requestinfo middleware.  GeoDB is optional; without
// it only the client IP is reported.  TrustProxy honours X-Forwarded-For
// and X-Real-IP, which only makes sense behind a proxy that sets them.
type RequestInfo struct {
	GeoDB       string `koanf:"geo_db"`
	TrustProxy  bool   `koanf:"trust_proxy"`
	UACacheSize int    `koanf:"ua_cache_size" validate:"gte=0"`
}

//
// Log section
//

// Log configures the zap logger.
type Log struct {
	Level      string `koanf:"level"        validate:"omitempty,oneof=debug info warn error"`
	Console    bool   `koanf:"console"` // tee colorized output to stdout
	MaxSizeMB  int    `koanf:"max_size_mb"  validate:"gte=0"`
	MaxBackups int    `koanf:"max_backups"  validate:"gte=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"gte=0"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or WIDGETS_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // WIDGETS_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP        `koanf:"http"`
	Database Database    `koanf:"database"`
	Widgets  Widgets     `koanf:"widgets"`
	Request  RequestInfo `koanf:"request_info"`
	Log      Log         `koanf:"log"`
	Paths    Paths       `koanf:"-"` // not loaded from config files
}
