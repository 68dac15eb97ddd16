package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
	    owner      VARCHAR(64) NOT NULL,
	    step       INT         NOT NULL,
	    applied_at DATETIME(6) NOT NULL,
	    PRIMARY KEY (owner, step)
	)`
	lastStep   = `SELECT COALESCE(MAX(step), -1) FROM schema_migrations WHERE owner = ?`
	recordStep = `INSERT INTO schema_migrations (owner, step, applied_at) VALUES (?, ?, ?)`
)

// Migrate applies stmts for owner in order, skipping steps already recorded
// in schema_migrations.  Steps are identified by index, so owners only
// ever append statements.  MySQL commits DDL implicitly, hence no
// transaction: a failed step is retried on the next boot.
func Migrate(ctx context.Context, db *sqlx.DB, owner string, stmts []string) error {
	if len(stmts) == 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		return fmt.Errorf("database: migration ledger: %w", err)
	}

	var done int
	if err := db.GetContext(ctx, &done, db.Rebind(lastStep), owner); err != nil {
		return fmt.Errorf("database: %s: last step: %w", owner, err)
	}

	for i := done + 1; i < len(stmts); i++ {
		if _, err := db.ExecContext(ctx, stmts[i]); err != nil {
			return fmt.Errorf("database: %s: migration %d: %w", owner, i, err)
		}
		if _, err := db.ExecContext(ctx, db.Rebind(recordStep), owner, i, time.Now().UTC()); err != nil {
			return fmt.Errorf("database: %s: record %d: %w", owner, i, err)
		}
	}
	return nil
}
