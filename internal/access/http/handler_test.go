package accesshttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/access"
	accesshttp "github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/access/http"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/app"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/audit"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/auth"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/observability"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/records"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/users"
	_ "github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/testing"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	userRepo, err := auth.NewCSVRepository(dir)
	require.NoError(t, err)
	authSvc := auth.NewService(userRepo, auth.ServiceConfig{BcryptCost: bcrypt.MinCost}, nil)
	_, err = authSvc.BootstrapDefaultAdmin(context.Background())
	require.NoError(t, err)
	recordRepo, err := records.NewCSVRepository(dir)
	require.NoError(t, err)
	auditRepo, err := audit.NewCSVRepository(dir)
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	gate := access.NewGate(access.Deps{
		Auth:    authSvc,
		Records: records.NewService(recordRepo, nil),
		Users:   users.NewService(userRepo),
		Audit:   audit.NewService(auditRepo, nil),
		Metrics: metrics,
	})
	cfg := &app.Config{AppRequestTimeout: 5 * time.Second, LoginRateLimit: 100}
	sessions := shared.NewSessionManager(rdb, "rbac_session", time.Hour, false)
	rbacMW := rbac.Middleware{}
	handler := accesshttp.NewHandler(nil, gate, sessions, rbacMW, app.AuthRateLimit(cfg))

	srv := httptest.NewServer(app.NewRouter(app.RouterParams{
		Config:             cfg,
		SessionManager:     sessions,
		AccessHandler:      handler,
		PermissionsHandler: rbac.NewPermissionsHandler(rbacMW),
		Metrics:            metrics,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (int, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	return res.StatusCode, out
}

func (c *client) login(username, password, role string) {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/auth/login", map[string]string{"username": username, "password": password, "role": role})
	require.Equal(c.t, http.StatusOK, status, string(body))
}

func (c *client) signup(username, password, role string) (int, map[string]any) {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/auth/signup", map[string]string{"username": username, "password": password, "role": role})
	var out map[string]any
	require.NoError(c.t, json.Unmarshal(body, &out))
	return status, out
}

func TestSignupResponses(t *testing.T) {
	c := newClient(t, newServer(t))

	status, out := c.signup("alice", "secret", "Manager")
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "Signup successful", out["message"])

	status, out = c.signup("alice", "other", "User")
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "User already exists", out["message"])

	status, out = c.signup("root", "pw", "Admin")
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "Admin signup disabled", out["message"])

	status, _ = c.do(http.MethodPost, "/auth/signup", map[string]string{"username": "x", "password": "pw", "role": "Root"})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = c.do(http.MethodPost, "/auth/signup", map[string]string{"username": "", "password": "pw", "role": "User"})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestSignupRejectsMultiBytePasswordOverLimit(t *testing.T) {
	c := newClient(t, newServer(t))

	status, body := c.do(http.MethodPost, "/auth/signup", map[string]string{
		"username": "zoe", "password": strings.Repeat("é", 40), "role": "User",
	})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	var problem struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(body, &problem))
	require.Equal(t, "Password must be at most 72 bytes", problem.Detail)

	status, _ = c.signup("zoe", strings.Repeat("é", 36), "User")
	require.Equal(t, http.StatusCreated, status)
	c.login("zoe", strings.Repeat("é", 36), "User")
}

func TestLoginFlowAndRecords(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)

	status, _ := c.do(http.MethodGet, "/records", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.do(http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "nope", "role": "Admin"})
	require.Equal(t, http.StatusUnauthorized, status)

	c.login("admin", auth.DefaultBootstrapPassword, "Admin")

	status, body := c.do(http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Username    string   `json:"username"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(body, &me))
	require.Equal(t, "admin", me.Username)
	require.Equal(t, []string{"read", "write", "delete", "manage_users", "view_logs"}, me.Permissions)

	status, body = c.do(http.MethodPost, "/records", map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var rec records.Record
	require.NoError(t, json.Unmarshal(body, &rec))
	require.Equal(t, int64(1), rec.ID)
	require.Equal(t, "admin", rec.CreatedBy)

	status, _ = c.do(http.MethodPost, "/records", map[string]string{"content": "  "})
	require.Equal(t, http.StatusBadRequest, status)
	status, body = c.do(http.MethodPost, "/records", map[string]string{"content": ""})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, string(body), "Content failed required")

	status, _ = c.do(http.MethodDelete, "/records/1", nil)
	require.Equal(t, http.StatusNoContent, status)
	status, _ = c.do(http.MethodDelete, "/records/abc", nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, body = c.do(http.MethodGet, "/records", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `[]`, string(body))

	status, _ = c.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, status)
	status, _ = c.do(http.MethodGet, "/records", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRoleGatedEndpoints(t *testing.T) {
	srv := newServer(t)
	setup := newClient(t, srv)
	status, _ := setup.signup("ursula", "pw", "User")
	require.Equal(t, http.StatusCreated, status)
	status, _ = setup.signup("audrey", "pw", "Auditor")
	require.Equal(t, http.StatusCreated, status)

	user := newClient(t, srv)
	user.login("ursula", "pw", "User")
	for _, path := range []string{"/users", "/audit"} {
		status, _ := user.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusForbidden, status, path)
	}
	status, _ = user.do(http.MethodPost, "/records", map[string]string{"content": "x"})
	require.Equal(t, http.StatusForbidden, status)
	status, _ = user.do(http.MethodGet, "/records", nil)
	require.Equal(t, http.StatusOK, status)

	auditor := newClient(t, srv)
	auditor.login("audrey", "pw", "Auditor")
	status, _ = auditor.do(http.MethodGet, "/records", nil)
	require.Equal(t, http.StatusForbidden, status)
	status, body := auditor.do(http.MethodGet, "/audit", nil)
	require.Equal(t, http.StatusOK, status)
	var entries []audit.Entry
	require.NoError(t, json.Unmarshal(body, &entries))
	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Actor+" "+e.Action)
	}
	require.Equal(t, []string{"ursula Login", "ursula Read", "audrey Login"}, actions)

	status, body = auditor.do(http.MethodGet, "/audit?format=csv", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, strings.HasPrefix(string(body), "user,role,action,time\n"))

	admin := newClient(t, srv)
	admin.login("admin", auth.DefaultBootstrapPassword, "Admin")
	status, body = admin.do(http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `[{"username":"admin","role":"Admin"},{"username":"ursula","role":"User"},{"username":"audrey","role":"Auditor"}]`, string(body))
	require.NotContains(t, string(body), "$2a$")
}

func TestPermissionsAndMetricsEndpoints(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)

	status, _ := c.do(http.MethodGet, "/permissions", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.signup("manny", "pw", "Manager")
	require.Equal(t, http.StatusCreated, status)
	c.login("manny", "pw", "Manager")
	status, _ = c.do(http.MethodGet, "/permissions", nil)
	require.Equal(t, http.StatusForbidden, status)

	c.login("admin", auth.DefaultBootstrapPassword, "Admin")
	status, body := c.do(http.MethodGet, "/permissions", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(body), `"role":"Auditor","permissions":["view_logs"]`)

	status, body = c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(body), "rbac_audit_writes_total")

	status, body = c.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"status":"ok"}`, string(body))
}
