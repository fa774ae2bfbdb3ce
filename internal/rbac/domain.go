package rbac

import (
	"slices"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// Role represents a high-level permission grouping.
type Role string

// Known roles, in the order they are offered at login.
const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleUser    Role = "User"
	RoleAuditor Role = "Auditor"
)

// Permission represents an atomic capability.
type Permission string

// Known permissions.
const (
	PermRead        Permission = "read"
	PermWrite       Permission = "write"
	PermDelete      Permission = "delete"
	PermManageUsers Permission = "manage_users"
	PermViewLogs    Permission = "view_logs"
)

// rolePermissions is fixed at start-up and never mutated. Slice order is the
// order actions are offered to a session.
var rolePermissions = map[Role][]Permission{
	RoleAdmin:   {PermRead, PermWrite, PermDelete, PermManageUsers, PermViewLogs},
	RoleManager: {PermRead, PermWrite},
	RoleUser:    {PermRead},
	RoleAuditor: {PermViewLogs},
}

var permissionSets = func() map[Role]map[Permission]struct{} {
	sets := make(map[Role]map[Permission]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}()

// Roles lists every role in the permission table.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleUser, RoleAuditor}
}

// AllPermissions lists every known permission.
func AllPermissions() []Permission {
	return []Permission{PermRead, PermWrite, PermDelete, PermManageUsers, PermViewLogs}
}

// ParseRole maps a role name onto a known Role. Matching is exact.
func ParseRole(name string) (Role, error) {
	role := Role(name)
	if _, ok := rolePermissions[role]; !ok {
		return "", shared.ErrUnknownRole
	}
	return role, nil
}

// Valid reports whether the role is a key of the permission table.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// IsPermitted reports whether role grants perm.
func IsPermitted(role Role, perm Permission) bool {
	_, ok := permissionSets[role][perm]
	return ok
}

// Permissions returns a copy of the permissions granted to role. Unknown
// roles get none.
func Permissions(role Role) []Permission {
	return slices.Clone(rolePermissions[role])
}
