package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// ServiceConfig tunes hashing and the bootstrap account.
type ServiceConfig struct {
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// BootstrapPassword defaults to DefaultBootstrapPassword.
	BootstrapPassword string
}

// Service wraps authentication business rules.
type Service struct {
	repo      Repository
	cost      int
	bootstrap string
	logger    *slog.Logger
	// dummyHash keeps failed lookups as slow as failed password checks.
	dummyHash []byte
}

// NewService constructs a new Service.
func NewService(repo Repository, cfg ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bootstrap := cfg.BootstrapPassword
	if bootstrap == "" {
		bootstrap = DefaultBootstrapPassword
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		logger.Warn("auth dummy hash", slog.Any("error", err))
	}
	return &Service{repo: repo, cost: cost, bootstrap: bootstrap, logger: logger, dummyHash: dummy}
}

// Signup registers a non-Admin account.
func (s *Service) Signup(ctx context.Context, username, password string, role rbac.Role) error {
	if role == rbac.RoleAdmin {
		return shared.ErrAdminSignupDisabled
	}
	if !role.Valid() {
		return shared.ErrUnknownRole
	}
	if len(password) > MaxPasswordBytes {
		return shared.ErrPasswordTooLong
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return shared.ErrUserAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.repo.Create(ctx, User{Username: username, PasswordHash: hash, Role: role})
}

// SignupMessage turns a Signup result into the caller-facing (ok, message)
// pair. Storage failures get a generic message.
func SignupMessage(err error) (bool, string) {
	if err == nil {
		return true, "Signup successful"
	}
	return false, shared.UserSafeMessage(err)
}

// Authenticate validates username/password credentials under the claimed role.
// Unknown user, role mismatch and wrong password all yield
// shared.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string, claimed rbac.Role) (User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.burn(password)
			return User{}, shared.ErrInvalidCredentials
		}
		return User{}, err
	}
	if user.Role != claimed {
		s.burn(password)
		return User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// BootstrapDefaultAdmin creates the "admin" account when no user carries that
// name. It reports whether an account was created.
func (s *Service) BootstrapDefaultAdmin(ctx context.Context) (bool, error) {
	if _, err := s.repo.FindByUsername(ctx, DefaultAdminUsername); err == nil {
		return false, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}
	hash, err := s.hash(s.bootstrap)
	if err != nil {
		return false, err
	}
	err = s.repo.Create(ctx, User{Username: DefaultAdminUsername, PasswordHash: hash, Role: rbac.RoleAdmin})
	if errors.Is(err, shared.ErrUserAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if s.bootstrap == DefaultBootstrapPassword {
		s.logger.Warn("default admin created with well-known password; change BOOTSTRAP_ADMIN_PASSWORD",
			slog.String("user", DefaultAdminUsername))
	} else {
		s.logger.Info("default admin created", slog.String("user", DefaultAdminUsername))
	}
	return true, nil
}

// ListUsers returns the stored accounts including their hashes.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *Service) burn(password string) {
	if len(s.dummyHash) > 0 {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
	}
}
