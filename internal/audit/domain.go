package audit

import (
	"time"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
)

// Action names written by the access gate.
const (
	ActionLogin  = "Login"
	ActionLogout = "Logout"
	ActionRead   = "Read"
	ActionWrite  = "Write"
	ActionDelete = "Delete"
)

// Entry is one immutable audit record.
type Entry struct {
	Actor  string    `json:"user"`
	Role   rbac.Role `json:"role"`
	Action string    `json:"action"`
	At     time.Time `json:"time"`
}
