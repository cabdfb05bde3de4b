package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univexams/exam-portal/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body.Error
}

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"not found", domain.NewAuthFailure(domain.AuthNotFound, nil), http.StatusUnauthorized, msgBadCredentials},
		{"invalid credential", domain.NewAuthFailure(domain.AuthInvalidCredential, nil), http.StatusUnauthorized, msgBadCredentials},
		{"directory unavailable", domain.NewAuthFailure(domain.AuthDirectoryUnavailable, errors.New("dial tcp: timeout")), http.StatusServiceUnavailable, "service unavailable, try again"},
		{"expired", &domain.SessionError{Kind: domain.SessionExpired}, http.StatusUnauthorized, "session expired, please sign in again"},
		{"not authenticated", &domain.SessionError{Kind: domain.SessionNotAuthenticated}, http.StatusUnauthorized, "authentication required"},
		{"forbidden", fmt.Errorf("view: %w", domain.ErrForbidden), http.StatusForbidden, "access forbidden"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := renderError(t, tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestHTTPErrorHandler_CredentialFailuresAreIndistinguishable(t *testing.T) {
	c1, m1 := renderError(t, domain.NewAuthFailure(domain.AuthNotFound, nil))
	c2, m2 := renderError(t, domain.NewAuthFailure(domain.AuthInvalidCredential, nil))
	assert.Equal(t, c1, c2)
	assert.Equal(t, m1, m2)
}

func TestHTTPErrorHandler_DoesNotLeakCause(t *testing.T) {
	_, msg := renderError(t, domain.NewAuthFailure(domain.AuthDirectoryUnavailable, errors.New("password authentication failed for user exam")))
	assert.NotContains(t, msg, "password authentication failed")
}
