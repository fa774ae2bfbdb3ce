package audit

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// Service records and reads the audit trail.
type Service struct {
	repo  Repository
	clock shared.Clock

	mu     sync.Mutex
	last   time.Time
	seeded bool
}

// NewService builds an audit service. A nil clock uses shared.SystemClock.
func NewService(repo Repository, clock shared.Clock) *Service {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &Service{repo: repo, clock: clock}
}

// Record appends one entry stamped with the current second. Timestamps never
// run backwards, across restarts included: the first call reads the newest
// stored entry and later stamps are clamped to it.
func (s *Service) Record(ctx context.Context, actor string, role rbac.Role, action string) (Entry, error) {
	if s == nil || s.repo == nil {
		return Entry{}, errors.New("audit: repository not configured")
	}
	if actor == "" || strings.TrimSpace(action) == "" {
		return Entry{}, errors.New("audit: entry requires actor and action")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seedLast(ctx); err != nil {
		return Entry{}, err
	}
	at := s.clock().Truncate(time.Second)
	if at.Before(s.last) {
		at = s.last
	}
	entry := Entry{Actor: actor, Role: role, Action: action, At: at}
	if err := s.repo.Append(ctx, entry); err != nil {
		return Entry{}, err
	}
	s.last = at
	return entry, nil
}

// seedLast loads the newest stored timestamp once per Service. Callers hold mu.
func (s *Service) seedLast(ctx context.Context) error {
	if s.seeded {
		return nil
	}
	entries, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("audit: load last entry: %w", err)
	}
	for _, e := range entries {
		if e.At.After(s.last) {
			s.last = e.At
		}
	}
	s.seeded = true
	return nil
}

// ReadAll returns the whole trail in insertion order.
func (s *Service) ReadAll(ctx context.Context) ([]Entry, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	return s.repo.List(ctx)
}

// DeleteAction names the audit action for removing record id.
func DeleteAction(id int64) string {
	return fmt.Sprintf("%s %d", ActionDelete, id)
}

// WriteCSV renders entries with the same columns as the flat audit store.
func WriteCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"user", "role", "action", "time"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write([]string{e.Actor, string(e.Role), e.Action, shared.FormatTimestamp(e.At)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
