package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/app"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/audit"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/auth"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	_ "github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/testing"
)

func TestMainSkipsInTestMode(t *testing.T) {
	app.RefreshTestMode()
	require.True(t, app.InTestMode())
	main()
}

func TestExportAudit(t *testing.T) {
	repo, err := audit.NewCSVRepository(t.TempDir())
	require.NoError(t, err)
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.Local)
	svc := audit.NewService(repo, func() time.Time { return at })
	ctx := context.Background()
	_, err = svc.Record(ctx, "admin", rbac.RoleAdmin, audit.ActionLogin)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exportAudit(ctx, svc, &buf))
	require.Equal(t, "user,role,action,time\nadmin,Admin,Login,2024-02-03 04:05:06\n", buf.String())
}

func TestExportAuditCommandLeavesUsersUntouched(t *testing.T) {
	dir := t.TempDir()
	repo, err := audit.NewCSVRepository(dir)
	require.NoError(t, err)
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.Local)
	_, err = audit.NewService(repo, func() time.Time { return at }).Record(context.Background(), "bob", rbac.RoleUser, audit.ActionLogout)
	require.NoError(t, err)

	cfg := &app.Config{StoreDriver: app.StoreCSV, DataDir: dir}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, logger, []string{"export-audit"}, &out))
	require.Equal(t, "user,role,action,time\nbob,User,Logout,2024-02-03 04:05:06\n", out.String())

	raw, err := os.ReadFile(filepath.Join(dir, auth.UsersFile))
	require.NoError(t, err)
	require.Equal(t, "username,password_hash,role\n", string(raw))
}
