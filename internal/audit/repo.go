package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// Repository is the append-only audit store.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	// List returns entries in insertion order.
	List(ctx context.Context) ([]Entry, error)
}

// PGRepository stores audit entries in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL audit repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Append inserts one entry.
func (r *PGRepository) Append(ctx context.Context, entry Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rbac_audit_log (actor, role, action, occurred_at) VALUES ($1, $2, $3, $4)`,
		entry.Actor, string(entry.Role), entry.Action, entry.At,
	)
	if err != nil {
		return fmt.Errorf("%w: audit: append: %w", shared.ErrStorage, err)
	}
	return nil
}

// List returns every entry ordered by insertion.
func (r *PGRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT actor, role, action, occurred_at FROM rbac_audit_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: audit: list: %w", shared.ErrStorage, err)
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var (
			entry Entry
			role  string
		)
		if err := rows.Scan(&entry.Actor, &role, &entry.Action, &entry.At); err != nil {
			return nil, fmt.Errorf("%w: audit: scan: %w", shared.ErrStorage, err)
		}
		entry.Role = rbac.Role(role)
		entry.At = entry.At.Local()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: audit: list: %w", shared.ErrStorage, err)
	}
	return entries, nil
}

var _ Repository = (*PGRepository)(nil)
