// cmd/web/main.go
//
// Widget server – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Connect to Vault when VAULT_ADDR is set, then load config so
//     `vault:` references resolve.
//
//  3. Start daily rotating logger (tees to console when configured).
//
//  4. Build the request-info resolver (GeoLite2 when configured) and open
//     the database.
//
//  5. Build the widget runtime: view engine over <root>/<views_dir>,
//     services, antiforgery signer, and the Prometheus listener.
//
//  6. Boot every registered component (migrations, Init, routes),
//     expose /metrics, and render pages/home for “/”.
//
//  7. Serve until SIGINT or SIGTERM, then shut down gracefully.  SIGHUP
//     reloads config, applies the new log level, and drops parsed
//     templates.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/widgets/internal/antiforgery"
	"github.com/yanizio/widgets/internal/cache"
	"github.com/yanizio/widgets/internal/component"
	"github.com/yanizio/widgets/internal/config"
	"github.com/yanizio/widgets/internal/database"
	"github.com/yanizio/widgets/internal/logger"
	"github.com/yanizio/widgets/internal/metrics"
	"github.com/yanizio/widgets/internal/middleware"
	"github.com/yanizio/widgets/internal/requestinfo"
	"github.com/yanizio/widgets/internal/server"
	"github.com/yanizio/widgets/internal/vault"
	"github.com/yanizio/widgets/internal/view"
	"github.com/yanizio/widgets/internal/widget"

	_ "github.com/yanizio/widgets/components/contact"         // routes + store
	_ "github.com/yanizio/widgets/components/contact/widgets" // widget registrations
)

const serverEnvPath = "/usr/local/etc/widgets/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

func init() { loadEnv() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("widgets: %v", err)
	}
}

func run(ctx context.Context) error {
	//
	// ── 1.  Vault + config ──────────────────────────────────────────────
	//
	var opts []config.Option
	if vault.Enabled() {
		cli, err := vault.New(ctx, vault.WithLogger(zap.L()))
		if err != nil {
			return err
		}
		opts = append(opts, config.WithSecrets(cli))
	}
	cfg, err := config.Load(ctx, opts...)
	if err != nil {
		return err
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	lg, err := logger.New(cfg.Paths.Root, cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Close() }()
	zl := lg.Logger

	//
	// ── 3.  Request info + database ────────────────────────────────────
	//
	riOpts := []requestinfo.Option{
		requestinfo.WithTrustedProxy(cfg.Request.TrustProxy),
		requestinfo.WithUACacheSize(cfg.Request.UACacheSize),
		requestinfo.WithLogger(zl),
	}
	ri, err := requestinfo.New(append(riOpts, requestinfo.WithGeoDB(cfg.Request.GeoDB))...)
	if err != nil {
		zl.Warn("geo lookup disabled", zap.Error(err))
		if ri, err = requestinfo.New(riOpts...); err != nil {
			return err
		}
	}
	defer func() { _ = ri.Close() }()

	var db *sqlx.DB
	if cfg.Database.DSN != "" {
		if db, err = database.FromConfig(ctx, cfg.Database, zl); err != nil {
			return err
		}
		defer db.Close()
	}

	//
	// ── 4.  Widget runtime ──────────────────────────────────────────────
	//
	policy := view.CacheDefault
	if cfg.Widgets.DevReload {
		policy = view.CacheSkip
	}
	engine := view.New(os.DirFS(filepath.Join(cfg.Paths.Root, cfg.Widgets.ViewsDir)),
		view.WithTheme(cfg.Widgets.Theme),
		view.WithCachePolicy(policy),
		view.WithCacheSize(cfg.Widgets.TemplateCacheSize),
		view.WithLogger(zl),
	)

	go reloadOnHUP(ctx, lg, engine)

	for name, stats := range map[string]func() cache.Stats{
		"templates":   engine.CacheStats,
		"user_agents": ri.CacheStats,
	} {
		if err := metrics.ObserveCache(prometheus.DefaultRegisterer, name, stats); err != nil {
			return err
		}
	}

	tokens, err := newSigner(cfg.Widgets, zl)
	if err != nil {
		return err
	}

	validate := validator.New()
	services := widget.NewServiceMap().
		Provide(zl).
		Provide(validate).
		ProvideAs(reflect.TypeFor[widget.TokenSource](), tokens)

	rt := widget.New(
		widget.WithEngine(engine),
		widget.WithServices(services),
		widget.WithTokens(tokens),
		widget.WithValidator(validate),
		widget.WithJSON(widget.JSONOptions{Indent: cfg.Widgets.JSONIndent, EscapeHTML: true}),
		widget.WithListener(metrics.Listener{}),
		widget.WithLogger(zl),
	)
	zl.Info("widgets registered", zap.Int("count", len(rt.Registry().Collection().Items)))

	//
	// ── 5.  Router: components, metrics, home ──────────────────────────
	//
	env := &component.Env{
		DB:       db,
		Config:   cfg,
		Services: services,
		Runtime:  rt,
		Views:    engine,
		Log:      zl,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recover(zl))
	r.Use(middleware.Logging(zl))
	r.Use(middleware.Security(middleware.WithHSTS(cfg.HTTP.ForceHTTPS)))
	r.Use(ri.Enrich)

	if err := component.Boot(ctx, r, env); err != nil {
		return err
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		if err := engine.Render(w, req, rt, "pages/home", nil); err != nil {
			zl.Error("render error", zap.Error(err))
			http.Error(w, "template error", http.StatusInternalServerError)
		}
	})

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(middleware.WithProxyProto(cfg.Request.TrustProxy))(handler)
	}

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	return server.New(cfg.HTTP, handler, zl).Run(ctx)
}

// reloadOnHUP re-reads config on SIGHUP and drops parsed templates.  Only
// the log level is applied live from config; everything else needs a
// restart.
func reloadOnHUP(ctx context.Context, lg *logger.Logger, engine *view.Engine) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := config.Reload(ctx); err != nil {
				lg.Error("config reload failed", zap.Error(err))
				continue
			}
			if err := lg.SetLevel(config.Get().Log.Level); err != nil {
				lg.Error("log level", zap.Error(err))
				continue
			}
			engine.Purge()
			lg.Info("config reloaded", zap.Stringer("level", lg.Level()))
		}
	}
}

// newSigner builds the antiforgery signer from config.  Without a key it
// falls back to a random one, which only suits a single dev process.
func newSigner(cfg config.Widgets, zl *zap.Logger) (*antiforgery.Signer, error) {
	var (
		key []byte
		err error
	)
	if cfg.AntiforgeryKey != "" {
		if key, err = antiforgery.DecodeKey(cfg.AntiforgeryKey); err != nil {
			return nil, err
		}
	} else {
		zl.Warn("widgets.antiforgery_key not set, using a random key")
		if key, err = antiforgery.RandomKey(); err != nil {
			return nil, err
		}
	}
	return antiforgery.NewSigner(key, cfg.AntiforgeryMaxAge)
}
