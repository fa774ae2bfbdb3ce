package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad", ErrValidation), http.StatusBadRequest},
		{shared.ErrEmptyContent, http.StatusBadRequest},
		{shared.ErrUnknownRole, http.StatusBadRequest},
		{shared.ErrPasswordTooLong, http.StatusBadRequest},
		{shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{shared.ErrNoSession, http.StatusUnauthorized},
		{shared.ErrPermissionDenied, http.StatusForbidden},
		{shared.ErrAdminSignupDisabled, http.StatusForbidden},
		{shared.ErrUserAlreadyExists, http.StatusConflict},
		{shared.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: Write by bob: %w", shared.ErrAuditGap, shared.ErrStorage), http.StatusInternalServerError},
		{fmt.Errorf("%w: csvstore: open: boom", shared.ErrStorage), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	}
}

func TestRespondErrorHidesStorageDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("%w: csvstore: open /srv/data/users.csv: permission denied", shared.ErrStorage))

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Empty(t, body.Detail)
	require.NotContains(t, rr.Body.String(), "/srv/data")
}

type loginBody struct {
	Username string `json:"username" validate:"required"`
}

func TestDecodeValid(t *testing.T) {
	v := validator.New()

	var ok loginBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"alice"}`))
	require.NoError(t, DecodeValid(req, v, &ok))
	require.Equal(t, "alice", ok.Username)

	var missing loginBody
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":""}`))
	err := DecodeValid(req, v, &missing)
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "Username failed required")

	var unknown loginBody
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user":"alice"}`))
	require.True(t, errors.Is(DecodeValid(req, v, &unknown), ErrValidation))
}
