// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

// Sentinel errors for the transport layer.
var (
	ErrValidation = errors.New("validation failed")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	msg := shared.UserSafeMessage(err)
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, shared.ErrEmptyContent), errors.Is(err, shared.ErrUnknownRole),
		errors.Is(err, shared.ErrPasswordTooLong):
		Problem(w, http.StatusBadRequest, "Validation Failed", detail(err, msg))
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrNoSession):
		Problem(w, http.StatusUnauthorized, "Unauthorized", msg)
	case errors.Is(err, shared.ErrPermissionDenied), errors.Is(err, shared.ErrAdminSignupDisabled):
		Problem(w, http.StatusForbidden, "Forbidden", msg)
	case errors.Is(err, shared.ErrUserAlreadyExists):
		Problem(w, http.StatusConflict, "Duplicate", msg)
	case errors.Is(err, shared.ErrRecordNotFound), errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", msg)
	case errors.Is(err, shared.ErrAuditGap):
		Problem(w, http.StatusInternalServerError, "Audit Gap", msg)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// detail keeps validator messages, which name the offending field.
func detail(err error, fallback string) string {
	if errors.Is(err, ErrValidation) {
		return err.Error()
	}
	return fallback
}
