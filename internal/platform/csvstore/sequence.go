package csvstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Sequence is a persisted monotonic counter stored next to a table.
// It is not locked on its own; callers use it inside Table.Update.
type Sequence struct {
	path string
}

// NewSequence returns the counter stored at path.
func NewSequence(path string) *Sequence {
	return &Sequence{path: path}
}

// Path returns the counter file location.
func (s *Sequence) Path() string {
	return s.path
}

// Current returns the last issued value. ok is false when the counter file
// does not exist yet.
func (s *Sequence) Current() (value int64, ok bool, err error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, storageErr("read", s.path, err)
	}
	value, err = strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, false, storageErr("parse", s.path, err)
	}
	return value, true, nil
}

// Store persists value as the last issued counter.
func (s *Sequence) Store(value int64) error {
	return writeFileAtomic(s.path, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%d\n", value)
		return err
	})
}
