package auth

import (
	"context"
	"path/filepath"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/platform/csvstore"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// UsersFile is the credential store file name inside the data directory.
const UsersFile = "users.csv"

// CSVRepository implements Repository on a flat users file.
type CSVRepository struct {
	table *csvstore.Table
}

// NewCSVRepository opens (or creates) the users file inside dir.
func NewCSVRepository(dir string) (*CSVRepository, error) {
	table, err := csvstore.Open(filepath.Join(dir, UsersFile), "username", "password_hash", "role")
	if err != nil {
		return nil, err
	}
	return &CSVRepository{table: table}, nil
}

// FindByUsername scans the file for an exact, case-sensitive username match.
func (r *CSVRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	rows, err := r.table.Rows()
	if err != nil {
		return User{}, err
	}
	for _, row := range rows {
		if row[0] == username {
			return userFromRow(row)
		}
	}
	return User{}, shared.ErrNotFound
}

// Create appends the user unless the username is already present.
func (r *CSVRepository) Create(ctx context.Context, user User) error {
	return r.table.Update(func(rows [][]string) ([][]string, error) {
		for _, row := range rows {
			if row[0] == user.Username {
				return nil, shared.ErrUserAlreadyExists
			}
		}
		return append(rows, []string{user.Username, user.PasswordHash, string(user.Role)}), nil
	})
}

// List returns users in file order.
func (r *CSVRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.table.Rows()
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(rows))
	for _, row := range rows {
		user, err := userFromRow(row)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func userFromRow(row []string) (User, error) {
	role, err := parseStoredRole(row[2])
	if err != nil {
		return User{}, err
	}
	return User{Username: row[0], PasswordHash: row[1], Role: role}, nil
}

var _ Repository = (*CSVRepository)(nil)
