package records

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/platform/csvstore"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// DataFile is the record store file name inside the data directory.
const DataFile = "data.csv"

// CSVRepository keeps records in a flat file plus an id counter file.
type CSVRepository struct {
	table *csvstore.Table
	seq   *csvstore.Sequence
}

// NewCSVRepository opens (or creates) the record file inside dir.
func NewCSVRepository(dir string) (*CSVRepository, error) {
	path := filepath.Join(dir, DataFile)
	table, err := csvstore.Open(path, "id", "content", "created_by", "time")
	if err != nil {
		return nil, err
	}
	return &CSVRepository{table: table, seq: csvstore.NewSequence(path + ".seq")}, nil
}

// List returns records in ascending id order.
func (r *CSVRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.table.Rows()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for i, row := range rows {
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: records: row %d: %w", shared.ErrStorage, i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Append stores the record under max(issued ids)+1. The counter is persisted
// before the row so a crash can skip an id but never reuse one.
func (r *CSVRepository) Append(ctx context.Context, content, createdBy string, at time.Time) (Record, error) {
	var rec Record
	err := r.table.Update(func(rows [][]string) ([][]string, error) {
		last, err := r.lastIssued(rows)
		if err != nil {
			return nil, err
		}
		rec = Record{ID: last + 1, Content: content, CreatedBy: createdBy, CreatedAt: at}
		if err := r.seq.Store(rec.ID); err != nil {
			return nil, err
		}
		return append(rows, []string{
			strconv.FormatInt(rec.ID, 10), rec.Content, rec.CreatedBy, shared.FormatTimestamp(rec.CreatedAt),
		}), nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// DeleteByID drops every row carrying id.
func (r *CSVRepository) DeleteByID(ctx context.Context, id int64) (int, error) {
	removed := 0
	want := strconv.FormatInt(id, 10)
	err := r.table.Update(func(rows [][]string) ([][]string, error) {
		kept := rows[:0]
		for _, row := range rows {
			if row[0] == want {
				removed++
				continue
			}
			kept = append(kept, row)
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// lastIssued reads the counter, seeding it from the largest stored id for
// files written before the counter existed.
func (r *CSVRepository) lastIssued(rows [][]string) (int64, error) {
	var maxID int64
	for i, row := range rows {
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: records: row %d id: %w", shared.ErrStorage, i+1, err)
		}
		maxID = max(maxID, id)
	}
	current, ok, err := r.seq.Current()
	if err != nil {
		return 0, err
	}
	if !ok {
		return maxID, nil
	}
	return max(current, maxID), nil
}

func recordFromRow(row []string) (Record, error) {
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("id: %w", err)
	}
	at, err := shared.ParseTimestamp(row[3])
	if err != nil {
		return Record{}, fmt.Errorf("time: %w", err)
	}
	return Record{ID: id, Content: row[1], CreatedBy: row[2], CreatedAt: at}, nil
}

var _ Repository = (*CSVRepository)(nil)
