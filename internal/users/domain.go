package users

import "github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"

// View is the account listing shown to user managers. Password hashes never
// leave the credential store through it.
type View struct {
	Username string    `json:"username"`
	Role     rbac.Role `json:"role"`
}
