package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the membership tables when they do not exist yet.
// The service owns its own schema; there is no separate migration tool in
// the deployment.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id                  BIGSERIAL PRIMARY KEY,
			email               TEXT UNIQUE NOT NULL,
			password_hash       TEXT NOT NULL,
			full_name           TEXT NOT NULL DEFAULT '',
			tier                TEXT NOT NULL DEFAULT 'seeker',
			created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_login          TIMESTAMPTZ,
			is_active           BOOLEAN NOT NULL DEFAULT TRUE,
			billing_customer_id TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id         BIGSERIAL PRIMARY KEY,
			user_id    BIGINT NOT NULL REFERENCES users(id),
			token      TEXT UNIQUE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
