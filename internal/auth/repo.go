package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// Repository defines persistence operations for the credential store.
type Repository interface {
	// FindByUsername returns shared.ErrNotFound when no user has the name.
	FindByUsername(ctx context.Context, username string) (User, error)
	// Create returns shared.ErrUserAlreadyExists when the name is taken.
	Create(ctx context.Context, user User) error
	// List returns users in insertion order.
	List(ctx context.Context) ([]User, error)
}

const pgUniqueViolation = "23505"

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches a user by exact username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	var (
		user User
		role string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT username, password_hash, role FROM rbac_users WHERE username = $1`, username,
	).Scan(&user.Username, &user.PasswordHash, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, fmt.Errorf("%w: auth: find user: %w", shared.ErrStorage, err)
	}
	if user.Role, err = parseStoredRole(role); err != nil {
		return User{}, err
	}
	return user, nil
}

// Create inserts a user row.
func (r *PGRepository) Create(ctx context.Context, user User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rbac_users (username, password_hash, role) VALUES ($1, $2, $3)`,
		user.Username, user.PasswordHash, string(user.Role),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return shared.ErrUserAlreadyExists
		}
		return fmt.Errorf("%w: auth: create user: %w", shared.ErrStorage, err)
	}
	return nil
}

// List returns every user ordered by creation.
func (r *PGRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT username, password_hash, role FROM rbac_users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: auth: list users: %w", shared.ErrStorage, err)
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var (
			user User
			role string
		)
		if err := rows.Scan(&user.Username, &user.PasswordHash, &role); err != nil {
			return nil, fmt.Errorf("%w: auth: scan user: %w", shared.ErrStorage, err)
		}
		if user.Role, err = parseStoredRole(role); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: auth: list users: %w", shared.ErrStorage, err)
	}
	return users, nil
}

// parseStoredRole treats a role outside the permission table as corruption.
func parseStoredRole(name string) (rbac.Role, error) {
	role, err := rbac.ParseRole(name)
	if err != nil {
		return "", fmt.Errorf("%w: auth: stored role %q: %w", shared.ErrStorage, name, err)
	}
	return role, nil
}

var _ Repository = (*PGRepository)(nil)
