package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

func TestCSVRepositoryPersistsUsers(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewCSVRepository(dir)
	require.NoError(t, err)
	svc := newTestService(repo)

	_, err = svc.BootstrapDefaultAdmin(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Signup(ctx, "alice", "secret", rbac.RoleManager))
	require.ErrorIs(t, svc.Signup(ctx, "alice", "secret", rbac.RoleUser), shared.ErrUserAlreadyExists)

	// A fresh process sees the same state.
	reopened, err := NewCSVRepository(dir)
	require.NoError(t, err)
	users, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "admin", users[0].Username)
	require.Equal(t, rbac.RoleAdmin, users[0].Role)
	require.Equal(t, "alice", users[1].Username)

	created, err := newTestService(reopened).BootstrapDefaultAdmin(ctx)
	require.NoError(t, err)
	require.False(t, created)

	_, err = newTestService(reopened).Authenticate(ctx, "alice", "secret", rbac.RoleManager)
	require.NoError(t, err)
}

func TestCSVRepositoryReadsLegacyFile(t *testing.T) {
	dir := t.TempDir()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	content := "username,password_hash,role\nadmin," + string(hash) + ",Admin\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, UsersFile), []byte(content), 0o644))

	repo, err := NewCSVRepository(dir)
	require.NoError(t, err)
	user, err := repo.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, rbac.RoleAdmin, user.Role)

	_, err = repo.FindByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCSVRepositoryRejectsUnknownStoredRole(t *testing.T) {
	dir := t.TempDir()
	content := "username,password_hash,role\nroot,x,Superuser\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, UsersFile), []byte(content), 0o644))

	repo, err := NewCSVRepository(dir)
	require.NoError(t, err)
	_, err = repo.List(context.Background())
	require.ErrorIs(t, err, shared.ErrStorage)
}
