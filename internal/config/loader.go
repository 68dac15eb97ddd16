// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` layers these sources, later ones winning:

  1. `<root>/conf/.env`, when present (fills the process environment).
  2. `<root>/conf/global.yaml`, required.
  3. `<root>/conf/local.yaml`, when present; untracked per-host tweaks.
  4. Environment variables prefixed `WIDGETS_`, where `__` maps to “.”
     (e.g. `WIDGETS_HTTP__LISTEN_ADDR → http.listen_addr`).

`vault:<path>#<key>` strings in the merged tree are then replaced through
the SecretSource, the tree is unmarshalled, defaulted, and validated, and
the result is published through an `atomic.Pointer`.  `Reload()` repeats
the last successful Load and swaps the pointer only on success.

Notes
-----
  • Pass WithLogger to see per-layer DEBUG lines; the default logger is
    zap.L(), which is a no-op until cmd/web installs the file logger.
  • See root.go for how the root is found when WithRoot is not given.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix = "WIDGETS_"
	baseFile  = "global.yaml"
	localFile = "local.yaml"
)

var (
	current  atomic.Pointer[Config]
	lastOpts atomic.Pointer[options]
)

// SecretSource fetches one key of a KV secret.  *vault.Client satisfies it.
type SecretSource interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

type options struct {
	root    string
	secrets SecretSource
	log     *zap.Logger
}

// Option tunes Load.
type Option func(*options)

// WithRoot pins the project root instead of discovering it.
func WithRoot(dir string) Option { return func(o *options) { o.root = dir } }

// WithSecrets enables `vault:` references.
func WithSecrets(s SecretSource) Option { return func(o *options) { o.secrets = s } }

// WithLogger sets the logger used while loading.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

// Get returns the last loaded Config, or nil before the first Load.
func Get() *Config { return current.Load() }

// Load builds, validates, and publishes a Config.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	o := &options{}
	for _, fn := range opts {
		fn(o)
	}
	if o.root == "" {
		o.root = FindRoot()
	}
	log := o.log
	if log == nil {
		log = zap.L()
	}
	log = log.Named("config")

	k, err := readLayers(o.root, log)
	if err != nil {
		return nil, err
	}
	if err := resolveSecrets(ctx, k, o.secrets, log); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	applyDefaults(&cfg)
	cfg.Paths.Root = o.root
	if err := validateStruct(&cfg); err != nil {
		return nil, err
	}

	current.Store(&cfg)
	lastOpts.Store(o)
	log.Info("config loaded",
		zap.String("root", cfg.Paths.Root),
		zap.String("listen_addr", cfg.HTTP.ListenAddr),
		zap.String("theme", cfg.Widgets.Theme),
		zap.Bool("database", cfg.Database.DSN != ""),
	)
	return &cfg, nil
}

// Reload re-runs Load with the options of the last successful call.
func Reload(ctx context.Context) error {
	o := lastOpts.Load()
	if o == nil {
		return errors.New("config: Reload before Load")
	}
	_, err := Load(ctx, WithRoot(o.root), WithSecrets(o.secrets), WithLogger(o.log))
	return err
}

// readLayers merges the .env, YAML, and environment layers.
func readLayers(root string, log *zap.Logger) (*koanf.Koanf, error) {
	conf := filepath.Join(root, "conf")
	if err := godotenv.Load(filepath.Join(conf, ".env")); err == nil {
		log.Debug("dotenv applied", zap.String("dir", conf))
	}

	k := koanf.New(".")
	for _, name := range []string{baseFile, localFile} {
		path := filepath.Join(conf, name)
		err := k.Load(file.Provider(path), yaml.Parser())
		switch {
		case err == nil:
			log.Debug("yaml layer loaded", zap.String("file", path))
		case name == localFile && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("config: env overlay: %w", err)
	}
	return k, nil
}

// envKey maps WIDGETS_HTTP__LISTEN_ADDR to http.listen_addr.
func envKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
}
