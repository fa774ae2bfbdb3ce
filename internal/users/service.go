package users

import (
	"context"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/auth"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]auth.User, error)
}

// Service handles user listing.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns every account in store order.
func (s *Service) ListUsers(ctx context.Context) ([]View, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(stored))
	for _, u := range stored {
		out = append(out, View{Username: u.Username, Role: u.Role})
	}
	return out, nil
}
