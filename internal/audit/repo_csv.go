package audit

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/platform/csvstore"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// LogsFile is the audit store file name inside the data directory.
const LogsFile = "logs.csv"

// CSVRepository keeps the audit trail in a flat file.
type CSVRepository struct {
	table *csvstore.Table
}

// NewCSVRepository opens (or creates) the audit file inside dir.
func NewCSVRepository(dir string) (*CSVRepository, error) {
	table, err := csvstore.Open(filepath.Join(dir, LogsFile), "user", "role", "action", "time")
	if err != nil {
		return nil, err
	}
	return &CSVRepository{table: table}, nil
}

// Append adds the entry at the end of the file.
func (r *CSVRepository) Append(ctx context.Context, entry Entry) error {
	return r.table.Append([]string{entry.Actor, string(entry.Role), entry.Action, shared.FormatTimestamp(entry.At)})
}

// List returns entries in file order.
func (r *CSVRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.table.Rows()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		at, err := shared.ParseTimestamp(row[3])
		if err != nil {
			return nil, fmt.Errorf("%w: audit: row %d time: %w", shared.ErrStorage, i+1, err)
		}
		entries = append(entries, Entry{Actor: row[0], Role: rbac.Role(row[1]), Action: row[2], At: at})
	}
	return entries, nil
}

var _ Repository = (*CSVRepository)(nil)
