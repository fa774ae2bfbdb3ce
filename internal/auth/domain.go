package auth

import "github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"

// DefaultAdminUsername names the account created by BootstrapDefaultAdmin.
const DefaultAdminUsername = "admin"

// DefaultBootstrapPassword is the well-known initial Admin password used when
// no other password is configured.
const DefaultBootstrapPassword = "admin123"

// MaxPasswordBytes is the longest password bcrypt accepts. The limit counts
// bytes, so multi-byte characters use up more than one.
const MaxPasswordBytes = 72

// User represents an account in the credential store.
type User struct {
	Username     string
	PasswordHash string
	Role         rbac.Role
}
