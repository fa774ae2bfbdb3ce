package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/audit"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/auth"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/records"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/users"
)

// Authenticator registers and verifies accounts.
type Authenticator interface {
	Signup(ctx context.Context, username, password string, role rbac.Role) error
	Authenticate(ctx context.Context, username, password string, claimed rbac.Role) (auth.User, error)
}

// RecordStore manages the shared records.
type RecordStore interface {
	List(ctx context.Context) ([]records.Record, error)
	Add(ctx context.Context, content, createdBy string) (records.Record, error)
	Delete(ctx context.Context, id int64) (int, error)
}

// UserDirectory lists accounts without their secrets.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]users.View, error)
}

// AuditLog appends and reads audit entries.
type AuditLog interface {
	Record(ctx context.Context, actor string, role rbac.Role, action string) (audit.Entry, error)
	ReadAll(ctx context.Context) ([]audit.Entry, error)
}

// Recorder receives gate counters. *observability.Metrics satisfies it.
type Recorder interface {
	AccessDecision(permission string, allowed bool)
	AuditWrite(ok bool)
	LoginFailure()
}

// Deps wires the gate collaborators.
type Deps struct {
	Auth    Authenticator
	Records RecordStore
	Users   UserDirectory
	Audit   AuditLog
	Metrics Recorder
	Logger  *slog.Logger
	Clock   shared.Clock
	// NewID issues session ids; defaults to random UUIDs.
	NewID func() string
}

// Gate is the single entry point for caller operations.
type Gate struct {
	auth    Authenticator
	records RecordStore
	users   UserDirectory
	audit   AuditLog
	metrics Recorder
	logger  *slog.Logger
	clock   shared.Clock
	newID   func() string
}

// NewGate builds a Gate. Auth, Records, Users and Audit are required.
func NewGate(deps Deps) *Gate {
	g := &Gate{
		auth:    deps.Auth,
		records: deps.Records,
		users:   deps.Users,
		audit:   deps.Audit,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		clock:   deps.Clock,
		newID:   deps.NewID,
	}
	if g.metrics == nil {
		g.metrics = noopRecorder{}
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.clock == nil {
		g.clock = shared.SystemClock
	}
	if g.newID == nil {
		g.newID = func() string { return uuid.NewString() }
	}
	return g
}

// Signup registers a non-Admin account and returns the caller-facing
// outcome. Rule violations are reported through ok and message; err is set
// only when the store itself failed.
func (g *Gate) Signup(ctx context.Context, username, password string, role rbac.Role) (bool, string, error) {
	err := g.auth.Signup(ctx, username, password, role)
	ok, msg := auth.SignupMessage(err)
	if err != nil && !isSignupRejection(err) {
		g.logger.Error("signup failed", slog.String("user", username), slog.Any("error", err))
		return false, msg, err
	}
	if ok {
		g.logger.Info("user signed up", slog.String("user", username), slog.String("role", string(role)))
	}
	return ok, msg, nil
}

// Login authenticates the caller and opens a session. Rejected attempts are
// logged and counted but not audited.
func (g *Gate) Login(ctx context.Context, username, password string, role rbac.Role) (Session, error) {
	user, err := g.auth.Authenticate(ctx, username, password, role)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			g.metrics.LoginFailure()
			g.logger.Warn("login rejected", slog.String("user", username), slog.String("role", string(role)))
			return Session{}, err
		}
		g.logger.Error("login lookup failed", slog.String("user", username), slog.Any("error", err))
		return Session{}, err
	}
	sess := Session{ID: g.newID(), Username: user.Username, Role: user.Role, StartedAt: g.clock()}
	if err := g.record(ctx, sess, audit.ActionLogin); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// ListRecords returns every record. Requires read.
func (g *Gate) ListRecords(ctx context.Context, s Session) ([]records.Record, error) {
	if err := g.require(s, rbac.PermRead); err != nil {
		return nil, err
	}
	list, err := g.records.List(ctx)
	if err != nil {
		g.logger.Error("list records failed", slog.Any("error", err))
		return nil, err
	}
	if err := g.record(ctx, s, audit.ActionRead); err != nil {
		return nil, err
	}
	return list, nil
}

// AddRecord stores content attributed to the session user. Requires write.
// When only the audit append fails the stored record is returned together
// with an error wrapping shared.ErrAuditGap.
func (g *Gate) AddRecord(ctx context.Context, s Session, content string) (records.Record, error) {
	if err := g.require(s, rbac.PermWrite); err != nil {
		return records.Record{}, err
	}
	rec, err := g.records.Add(ctx, content, s.Username)
	if err != nil {
		if !errors.Is(err, shared.ErrEmptyContent) {
			g.logger.Error("add record failed", slog.String("user", s.Username), slog.Any("error", err))
		}
		return records.Record{}, err
	}
	if err := g.recordMutation(ctx, s, audit.ActionWrite); err != nil {
		return rec, err
	}
	return rec, nil
}

// DeleteRecord removes the record with id. Requires delete. Deleting an
// absent id succeeds and is still audited.
func (g *Gate) DeleteRecord(ctx context.Context, s Session, id int64) error {
	if err := g.require(s, rbac.PermDelete); err != nil {
		return err
	}
	removed, err := g.records.Delete(ctx, id)
	if err != nil {
		g.logger.Error("delete record failed", slog.String("user", s.Username), slog.Int64("id", id), slog.Any("error", err))
		return err
	}
	if removed == 0 {
		g.logger.Info("delete of absent record", slog.String("user", s.Username), slog.Int64("id", id))
	}
	return g.recordMutation(ctx, s, audit.DeleteAction(id))
}

// ListUsers returns every account without password hashes. Requires manage_users.
func (g *Gate) ListUsers(ctx context.Context, s Session) ([]users.View, error) {
	if err := g.require(s, rbac.PermManageUsers); err != nil {
		return nil, err
	}
	list, err := g.users.ListUsers(ctx)
	if err != nil {
		g.logger.Error("list users failed", slog.Any("error", err))
		return nil, err
	}
	return list, nil
}

// ListAuditLog returns the audit trail in insertion order. Requires view_logs.
func (g *Gate) ListAuditLog(ctx context.Context, s Session) ([]audit.Entry, error) {
	if err := g.require(s, rbac.PermViewLogs); err != nil {
		return nil, err
	}
	entries, err := g.audit.ReadAll(ctx)
	if err != nil {
		g.logger.Error("read audit log failed", slog.Any("error", err))
		return nil, err
	}
	return entries, nil
}

// Logout audits the end of the session. The caller discards s afterwards.
func (g *Gate) Logout(ctx context.Context, s Session) error {
	if !s.Valid() {
		return shared.ErrNoSession
	}
	return g.record(ctx, s, audit.ActionLogout)
}

func (g *Gate) require(s Session, perm rbac.Permission) error {
	if !s.Valid() {
		return shared.ErrNoSession
	}
	allowed := rbac.IsPermitted(s.Role, perm)
	g.metrics.AccessDecision(string(perm), allowed)
	if !allowed {
		g.logger.Warn("access denied",
			slog.String("user", s.Username),
			slog.String("role", string(s.Role)),
			slog.String("permission", string(perm)),
		)
		return shared.ErrPermissionDenied
	}
	return nil
}

// record appends an audit entry for an operation that changed nothing. A
// failure fails the operation.
func (g *Gate) record(ctx context.Context, s Session, action string) error {
	if _, err := g.audit.Record(ctx, s.Username, s.Role, action); err != nil {
		g.metrics.AuditWrite(false)
		g.logger.Error("audit append failed",
			slog.String("user", s.Username),
			slog.String("action", action),
			slog.Any("error", err),
		)
		return err
	}
	g.metrics.AuditWrite(true)
	return nil
}

// recordMutation audits a committed change. The change stays in place when
// the append fails; the returned error carries shared.ErrAuditGap.
func (g *Gate) recordMutation(ctx context.Context, s Session, action string) error {
	if err := g.record(ctx, s, action); err != nil {
		return fmt.Errorf("%w: %s by %s: %w", shared.ErrAuditGap, action, s.Username, err)
	}
	return nil
}

func isSignupRejection(err error) bool {
	return errors.Is(err, shared.ErrAdminSignupDisabled) ||
		errors.Is(err, shared.ErrUserAlreadyExists) ||
		errors.Is(err, shared.ErrUnknownRole) ||
		errors.Is(err, shared.ErrPasswordTooLong)
}

type noopRecorder struct{}

func (noopRecorder) AccessDecision(string, bool) {}
func (noopRecorder) AuditWrite(bool)             {}
func (noopRecorder) LoginFailure()               {}
