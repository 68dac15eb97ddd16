// Package database opens the sqlx pool and applies component schemas.
// The driver is go-sql-driver/mysql, which also serves MariaDB.
//
// Public entry points:
//
//	Open(ctx, dsn, opts...)       – pool with conservative sizes, pinged.
//	FromConfig(ctx, cfg, log)     – fills the password into the DSN template.
//	Migrate(ctx, db, owner, stmts) – applies an owner's statements once each.
//
// Callers Close() the returned *sqlx.DB on shutdown.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/widgets/internal/config"
)

const (
	driverName      = "mysql"
	defaultMaxOpen  = 15
	defaultMaxIdle  = 5
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

type options struct {
	maxOpen, maxIdle int
}

// Option tunes Open.
type Option func(*options)

// WithPool sets the pool sizes.  Zero keeps the default.
func WithPool(maxOpen, maxIdle int) Option {
	return func(o *options) {
		if maxOpen > 0 {
			o.maxOpen = maxOpen
		}
		if maxIdle > 0 {
			o.maxIdle = maxIdle
		}
	}
}

// Open connects and pings within pingTimeout so boot fails fast.
func Open(ctx context.Context, dsn string, opts ...Option) (*sqlx.DB, error) {
	o := &options{maxOpen: defaultMaxOpen, maxIdle: defaultMaxIdle}
	for _, fn := range opts {
		fn(o)
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(o.maxOpen)
	db.SetMaxIdleConns(o.maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// FromConfig expands the DSN template with the password and opens the pool.
// Only the address and schema are logged.
func FromConfig(ctx context.Context, cfg config.Database, log *zap.Logger) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(cfg.DSN, cfg.Password)
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("database: dsn: %w", err)
	}

	db, err := Open(ctx, dsn, WithPool(cfg.MaxOpen, cfg.MaxIdle))
	if err != nil {
		return nil, fmt.Errorf("database: open %s/%s: %w", parsed.Addr, parsed.DBName, err)
	}
	if log != nil {
		log.Info("database online",
			zap.String("addr", parsed.Addr),
			zap.String("schema", parsed.DBName),
			zap.Int("max_open", db.Stats().MaxOpenConnections),
		)
	}
	return db, nil
}
