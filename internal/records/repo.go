package records

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// Repository persists records.
type Repository interface {
	// List returns records in ascending id order.
	List(ctx context.Context) ([]Record, error)
	// Append stores a new record under the next id.
	Append(ctx context.Context, content, createdBy string, at time.Time) (Record, error)
	// DeleteByID removes the record with id and reports how many rows went.
	DeleteByID(ctx context.Context, id int64) (int, error)
}

// PGRepository stores records in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL record repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns every record ordered by id.
func (r *PGRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, content, created_by, created_at FROM rbac_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: records: list: %w", shared.ErrStorage, err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Content, &rec.CreatedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: records: scan: %w", shared.ErrStorage, err)
		}
		rec.CreatedAt = rec.CreatedAt.Local()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: records: list: %w", shared.ErrStorage, err)
	}
	return out, nil
}

// Append inserts a record; BIGSERIAL never hands out an id twice.
func (r *PGRepository) Append(ctx context.Context, content, createdBy string, at time.Time) (Record, error) {
	rec := Record{Content: content, CreatedBy: createdBy, CreatedAt: at}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO rbac_records (content, created_by, created_at) VALUES ($1, $2, $3) RETURNING id`,
		content, createdBy, at,
	).Scan(&rec.ID)
	if err != nil {
		return Record{}, fmt.Errorf("%w: records: append: %w", shared.ErrStorage, err)
	}
	return rec, nil
}

// DeleteByID removes the row with id. Missing ids delete nothing.
func (r *PGRepository) DeleteByID(ctx context.Context, id int64) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rbac_records WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%w: records: delete: %w", shared.ErrStorage, err)
	}
	return int(tag.RowsAffected()), nil
}

var _ Repository = (*PGRepository)(nil)
