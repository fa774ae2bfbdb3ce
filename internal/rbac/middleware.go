package rbac

import (
	"log/slog"
	"net/http"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/platform/httpx"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireSession rejects requests without a logged in session.
func (m Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.currentRole(r); !ok {
			httpx.RespondError(w, shared.ErrNoSession)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAny ensures the current session role has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			role, ok := m.currentRole(r)
			if !ok {
				httpx.RespondError(w, shared.ErrNoSession)
				return
			}
			for _, p := range perms {
				if IsPermitted(role, p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			m.denied(r, role, perms)
			httpx.RespondError(w, shared.ErrPermissionDenied)
		})
	}
}

func (m Middleware) currentRole(r *http.Request) (Role, bool) {
	sess := shared.SessionFromContext(r.Context())
	if !sess.Authenticated() {
		return "", false
	}
	role, err := ParseRole(sess.Role())
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac session role", slog.String("role", sess.Role()))
		}
		return "", false
	}
	return role, true
}

func (m Middleware) denied(r *http.Request, role Role, perms []Permission) {
	if m.Logger == nil {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	m.Logger.Warn("rbac permission denied",
		slog.String("user", sess.Username()),
		slog.String("role", string(role)),
		slog.Any("required", perms),
		slog.String("path", r.URL.Path),
	)
}
