// Package accesshttp exposes the access gate as a JSON API.
package accesshttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/access"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/audit"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/auth"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/platform/httpx"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/records"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/users"
)

// Gate is the subset of access.Gate the handlers call.
type Gate interface {
	Signup(ctx context.Context, username, password string, role rbac.Role) (bool, string, error)
	Login(ctx context.Context, username, password string, role rbac.Role) (access.Session, error)
	ListRecords(ctx context.Context, s access.Session) ([]records.Record, error)
	AddRecord(ctx context.Context, s access.Session, content string) (records.Record, error)
	DeleteRecord(ctx context.Context, s access.Session, id int64) error
	ListUsers(ctx context.Context, s access.Session) ([]users.View, error)
	ListAuditLog(ctx context.Context, s access.Session) ([]audit.Entry, error)
	Logout(ctx context.Context, s access.Session) error
}

// Handler serves the auth, record, user and audit endpoints.
type Handler struct {
	logger    *slog.Logger
	gate      Gate
	sessions  *shared.SessionManager
	rbac      rbac.Middleware
	validate  *validator.Validate
	authLimit func(http.Handler) http.Handler
}

// NewHandler builds Handler instance. authLimit throttles the signup and
// login endpoints and may be nil.
func NewHandler(logger *slog.Logger, gate Gate, sessions *shared.SessionManager, rbacMW rbac.Middleware, authLimit func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if authLimit == nil {
		authLimit = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		logger:    logger,
		gate:      gate,
		sessions:  sessions,
		rbac:      rbacMW,
		validate:  validator.New(),
		authLimit: authLimit,
	}
}

// MountAuthRoutes registers /auth routes.
func (h *Handler) MountAuthRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authLimit)
		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireSession)
		r.Post("/logout", h.logout)
		r.Get("/me", h.me)
	})
}

// MountRoutes registers the gated resource routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireSession)
		r.Get("/records", h.listRecords)
		r.Post("/records", h.addRecord)
		r.Delete("/records/{id}", h.deleteRecord)
		r.Get("/users", h.listUsers)
		r.Get("/audit", h.listAudit)
	})
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role" validate:"required"`
}

type signupResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type sessionResponse struct {
	Username    string            `json:"username"`
	Role        rbac.Role         `json:"role"`
	StartedAt   time.Time         `json:"started_at"`
	Permissions []rbac.Permission `json:"permissions"`
}

type addRecordRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		httpx.RespondError(w, shared.ErrPasswordTooLong)
		return
	}
	ok, msg, err := h.gate.Signup(r.Context(), req.Username, req.Password, role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusCreated
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	httpx.JSON(w, status, signupResponse{OK: ok, Message: msg})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	// An unknown role cannot match any account; it is reported like any
	// other credential mismatch.
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		role = rbac.Role(req.Role)
	}
	sess, err := h.gate.Login(r.Context(), req.Username, req.Password, role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpSess := shared.SessionFromContext(r.Context())
	if httpSess == nil {
		h.logger.Error("login without session middleware")
		httpx.RespondError(w, errors.New("session unavailable"))
		return
	}
	httpSess.SetPrincipal(sess.ID, sess.Username, string(sess.Role), sess.StartedAt)
	httpx.JSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(r)
	if !ok {
		httpx.RespondError(w, shared.ErrNoSession)
		return
	}
	err := h.gate.Logout(r.Context(), sess)
	// The session ends even when the audit append failed.
	h.sessions.Destroy(shared.SessionFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(r)
	if !ok {
		httpx.RespondError(w, shared.ErrNoSession)
		return
	}
	httpx.JSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.currentSession(r)
	list, err := h.gate.ListRecords(r.Context(), sess)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []records.Record{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) addRecord(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.currentSession(r)
	var req addRecordRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.gate.AddRecord(r.Context(), sess, req.Content)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.currentSession(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	if err := h.gate.DeleteRecord(r.Context(), sess, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.currentSession(r)
	list, err := h.gate.ListUsers(r.Context(), sess)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.currentSession(r)
	entries, err := h.gate.ListAuditLog(r.Context(), sess)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-log.csv"`)
		if err := audit.WriteCSV(w, entries); err != nil {
			h.logger.Error("write audit csv", slog.Any("error", err))
		}
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}

// currentSession converts the cookie session into the gate's explicit value.
func (h *Handler) currentSession(r *http.Request) (access.Session, bool) {
	httpSess := shared.SessionFromContext(r.Context())
	if !httpSess.Authenticated() {
		return access.Session{}, false
	}
	role, err := rbac.ParseRole(httpSess.Role())
	if err != nil {
		return access.Session{}, false
	}
	return access.Session{
		ID:        httpSess.ID,
		Username:  httpSess.Username(),
		Role:      role,
		StartedAt: httpSess.StartedAt(),
	}, true
}

func toSessionResponse(s access.Session) sessionResponse {
	perms := s.Permissions()
	if perms == nil {
		perms = []rbac.Permission{}
	}
	return sessionResponse{Username: s.Username, Role: s.Role, StartedAt: s.StartedAt, Permissions: perms}
}
