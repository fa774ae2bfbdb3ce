// Package csvstore persists flat tables as CSV files with a header row.
//
// Every mutation reads the whole file, applies the change in memory and
// rewrites the file. A Table serialises its own read-modify-write cycles, so a
// single Table value must own each file within a process.
package csvstore

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

const csvBufferSize = 32 * 1024

// Table is a CSV file with a fixed header.
type Table struct {
	mu     sync.Mutex
	path   string
	header []string
}

// Open prepares the table at path, creating the file with only the header
// row when it does not exist yet. An existing file must carry the same header.
func Open(path string, header ...string) (*Table, error) {
	if len(header) == 0 {
		return nil, errors.New("csvstore: header required")
	}
	t := &Table{path: path, header: slices.Clone(header)}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr("mkdir", path, err)
	}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, storageErr("stat", path, err)
		}
		if err := t.flush(nil); err != nil {
			return nil, err
		}
		return t, nil
	}
	if _, err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

// Path returns the file backing the table.
func (t *Table) Path() string {
	return t.path
}

// Header returns a copy of the header row.
func (t *Table) Header() []string {
	return slices.Clone(t.header)
}

// Rows returns every data row in file order.
func (t *Table) Rows() ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

// Update runs fn against the current rows and persists whatever it returns.
// When fn fails nothing is written.
func (t *Table) Update(fn func(rows [][]string) ([][]string, error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows, err := t.load()
	if err != nil {
		return err
	}
	next, err := fn(rows)
	if err != nil {
		return err
	}
	return t.flush(next)
}

// Append adds a single row at the end of the table.
func (t *Table) Append(row []string) error {
	return t.Update(func(rows [][]string) ([][]string, error) {
		return append(rows, row), nil
	})
}

func (t *Table) load() ([][]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, storageErr("open", t.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReaderSize(f, csvBufferSize))
	reader.FieldsPerRecord = len(t.header)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, storageErr("load", t.path, errors.New("missing header row"))
		}
		return nil, storageErr("load", t.path, err)
	}
	if !slices.Equal(header, t.header) {
		return nil, storageErr("load", t.path, fmt.Errorf("unexpected header %v", header))
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, storageErr("load", t.path, err)
	}
	return rows, nil
}

func (t *Table) flush(rows [][]string) error {
	return writeFileAtomic(t.path, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		if err := writer.Write(t.header); err != nil {
			return err
		}
		if err := writer.WriteAll(rows); err != nil {
			return err
		}
		return writer.Error()
	})
}

// writeFileAtomic writes into a temp file next to path and renames it into place.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return storageErr("create temp", path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(tmp, csvBufferSize)
	if err := write(buf); err != nil {
		return storageErr("write", path, err)
	}
	if err := buf.Flush(); err != nil {
		return storageErr("write", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return storageErr("sync", path, err)
	}
	if err := tmp.Close(); err != nil {
		return storageErr("close", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return storageErr("rename", path, err)
	}
	committed = true
	return nil
}

func storageErr(op, path string, err error) error {
	return fmt.Errorf("%w: csvstore: %s %s: %w", shared.ErrStorage, op, path, err)
}
