package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/univexams/exam-portal/internal/api/token"
	"github.com/univexams/exam-portal/internal/core/domain"
	"github.com/univexams/exam-portal/internal/core/ports"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Session resolves the bearer token to a live session and runs the session
// guard before the protected handler. The session, username and role are
// injected into the echo context.
func Session(tokens TokenParser, sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := BearerToken(c)
			if !ok {
				return &domain.SessionError{Kind: domain.SessionNotAuthenticated}
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			session, err := sessions.Guard(c.Request().Context(), claims.SessionID)
			if err != nil {
				return err
			}
			if session.Identity == nil || session.Identity.Username != claims.Subject {
				return &domain.SessionError{Kind: domain.SessionNotAuthenticated}
			}

			c.Set("session", session)
			c.Set("username", session.Identity.Username)
			c.Set("role", string(session.Identity.Role))

			return next(c)
		}
	}
}
