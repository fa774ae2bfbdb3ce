package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rbac_users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rbac_records (
		id         BIGSERIAL PRIMARY KEY,
		content    TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rbac_audit_log (
		id          BIGSERIAL PRIMARY KEY,
		actor       TEXT NOT NULL,
		role        TEXT NOT NULL,
		action      TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the service tables when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("platform/db: ensure schema: %w", err)
			}
		}
		return nil
	})
}
