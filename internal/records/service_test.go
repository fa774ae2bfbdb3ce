package records

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
}

func newCSVService(t *testing.T, dir string) *Service {
	t.Helper()
	repo, err := NewCSVRepository(dir)
	require.NoError(t, err)
	return NewService(repo, fixedClock)
}

func TestAddAssignsIncreasingIDs(t *testing.T) {
	svc := newCSVService(t, t.TempDir())
	ctx := context.Background()

	first, err := svc.Add(ctx, "hello", "alice")
	require.NoError(t, err)
	second, err := svc.Add(ctx, "world", "bob")
	require.NoError(t, err)
	require.Equal(t, int64(1), first.ID)
	require.Equal(t, int64(2), second.ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []Record{
		{ID: 1, Content: "hello", CreatedBy: "alice", CreatedAt: fixedClock()},
		{ID: 2, Content: "world", CreatedBy: "bob", CreatedAt: fixedClock()},
	}, list)
}

func TestDeletedIDsAreNeverReused(t *testing.T) {
	dir := t.TempDir()
	svc := newCSVService(t, dir)
	ctx := context.Background()

	_, err := svc.Add(ctx, "hello", "alice")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "world", "alice")
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	// A restart must not hand id 2 out again.
	rec, err := newCSVService(t, dir).Add(ctx, "again", "bob")
	require.NoError(t, err)
	require.Equal(t, int64(3), rec.ID)
}

func TestDeleteRemovesOnlyTarget(t *testing.T) {
	svc := newCSVService(t, t.TempDir())
	ctx := context.Background()
	for _, c := range []string{"a", "b"} {
		_, err := svc.Add(ctx, c, "alice")
		require.NoError(t, err)
	}

	_, err := svc.Delete(ctx, 1)
	require.NoError(t, err)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int64(2), list[0].ID)

	next, err := svc.Add(ctx, "c", "alice")
	require.NoError(t, err)
	require.Equal(t, int64(3), next.ID)
}

func TestDeleteMissingIDIsNoop(t *testing.T) {
	svc := newCSVService(t, t.TempDir())
	ctx := context.Background()
	_, err := svc.Add(ctx, "a", "alice")
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, 42)
	require.NoError(t, err)
	require.Zero(t, removed)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestAddRejectsBlankContent(t *testing.T) {
	svc := newCSVService(t, t.TempDir())
	for _, content := range []string{"", "   ", "\t\n"} {
		_, err := svc.Add(context.Background(), content, "alice")
		require.ErrorIs(t, err, shared.ErrEmptyContent)
	}
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCounterSeedsFromExistingRows(t *testing.T) {
	dir := t.TempDir()
	content := "id,content,created_by,time\n7,old,admin,2024-01-01 00:00:00\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataFile), []byte(content), 0o644))

	rec, err := newCSVService(t, dir).Add(context.Background(), "new", "admin")
	require.NoError(t, err)
	require.Equal(t, int64(8), rec.ID)
}

func TestContentWithCommasAndQuotesSurvives(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	_, err := newCSVService(t, dir).Add(ctx, `a, "quoted"`+"\nline", "alice")
	require.NoError(t, err)

	list, err := newCSVService(t, dir).List(ctx)
	require.NoError(t, err)
	require.Equal(t, `a, "quoted"`+"\nline", list[0].Content)
}
