package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

func serveWithRole(t *testing.T, mw func(http.Handler) http.Handler, role string) int {
	t.Helper()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	if role != "" {
		sess := &shared.Session{}
		sess.SetPrincipal("sid", "someone", role, time.Now())
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	res := httptest.NewRecorder()
	mw(ok).ServeHTTP(res, req)
	return res.Code
}

func TestRequireAnyByRole(t *testing.T) {
	m := Middleware{}
	require.Equal(t, http.StatusNoContent, serveWithRole(t, m.RequireAny(PermViewLogs), "Auditor"))
	require.Equal(t, http.StatusNoContent, serveWithRole(t, m.RequireAny(PermViewLogs), "Admin"))
	require.Equal(t, http.StatusForbidden, serveWithRole(t, m.RequireAny(PermViewLogs), "Manager"))
	require.Equal(t, http.StatusUnauthorized, serveWithRole(t, m.RequireAny(PermViewLogs), ""))
	require.Equal(t, http.StatusUnauthorized, serveWithRole(t, m.RequireAny(PermViewLogs), "Root"))
}

func TestRequireSession(t *testing.T) {
	m := Middleware{}
	require.Equal(t, http.StatusNoContent, serveWithRole(t, m.RequireSession, "User"))
	require.Equal(t, http.StatusUnauthorized, serveWithRole(t, m.RequireSession, ""))
}
