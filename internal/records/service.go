package records

import (
	"context"
	"strings"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// Service applies record rules on top of a Repository.
type Service struct {
	repo  Repository
	clock shared.Clock
}

// NewService constructs a record service. A nil clock uses shared.SystemClock.
func NewService(repo Repository, clock shared.Clock) *Service {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &Service{repo: repo, clock: clock}
}

// List returns all records in ascending id order.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

// Add stores content attributed to createdBy. Blank content is rejected.
func (s *Service) Add(ctx context.Context, content, createdBy string) (Record, error) {
	if strings.TrimSpace(content) == "" {
		return Record{}, shared.ErrEmptyContent
	}
	return s.repo.Append(ctx, content, createdBy, s.clock())
}

// Delete removes the record with id. An absent id is not an error.
func (s *Service) Delete(ctx context.Context, id int64) (int, error) {
	return s.repo.DeleteByID(ctx, id)
}
