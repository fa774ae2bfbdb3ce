// Package access is the access-control gate: every caller-facing operation
// checks the session role against the permission table, runs the store
// operation and writes the audit entry.
package access

import (
	"time"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
)

// Session is the authenticated caller. It is returned by Gate.Login and
// passed back explicitly to every gated operation.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      rbac.Role `json:"role"`
	StartedAt time.Time `json:"started_at"`
}

// Valid reports whether the session names a user under a known role.
func (s Session) Valid() bool {
	return s.Username != "" && s.Role.Valid()
}

// Can reports whether the session role grants perm.
func (s Session) Can(perm rbac.Permission) bool {
	return s.Valid() && rbac.IsPermitted(s.Role, perm)
}

// Permissions lists what the session may be offered, in table order.
// Logout is always available and is not part of the table.
func (s Session) Permissions() []rbac.Permission {
	if !s.Valid() {
		return nil
	}
	return rbac.Permissions(s.Role)
}
