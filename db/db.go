// Package db provides database connection helpers, schema migration, and the
// stores that keep the last correlated record per session.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'
)

// Connect opens a Postgres pool for dsn and verifies it answers.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty DB_DSN")
	}
	dbx, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	dbx.SetMaxOpenConns(10)
	dbx.SetMaxIdleConns(5)
	dbx.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := dbx.PingContext(pingCtx); err != nil {
		_ = dbx.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return dbx, nil
}

// Migrate applies the schema with idempotent statements. It is the fallback
// when versioned migrations cannot run, and mirrors migrations/000001.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS last_records (
			session TEXT PRIMARY KEY,
			result TEXT NOT NULL DEFAULT '',
			nick TEXT NOT NULL DEFAULT '',
			host TEXT NOT NULL DEFAULT '',
			host_enc_version INTEGER NOT NULL DEFAULT 0,
			operator TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT '',
			length TEXT NOT NULL DEFAULT '',
			channel TEXT NOT NULL DEFAULT '',
			correlation_id TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS action_history (
			id BIGSERIAL PRIMARY KEY,
			session TEXT NOT NULL,
			result TEXT NOT NULL DEFAULT '',
			nick TEXT NOT NULL DEFAULT '',
			host TEXT NOT NULL DEFAULT '',
			host_enc_version INTEGER NOT NULL DEFAULT 0,
			operator TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT '',
			length TEXT NOT NULL DEFAULT '',
			channel TEXT NOT NULL DEFAULT '',
			correlation_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_action_history_created ON action_history(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_action_history_nick ON action_history(nick)`,
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("postgres migrate step %d failed: %w", i, err)
		}
	}
	return nil
}
