package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/platform/httpx"
)

// PermissionsHandler exposes the role-permission table read-only to
// sessions that manage users.
type PermissionsHandler struct {
	rbac Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermManageUsers))
		r.Get("/", h.listPermissions)
	})
}

type rolePermissionsResponse struct {
	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	roles := Roles()
	out := make([]rolePermissionsResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, rolePermissionsResponse{Role: role, Permissions: Permissions(role)})
	}
	httpx.JSON(w, http.StatusOK, out)
}
