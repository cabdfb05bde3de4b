package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/univexams/exam-portal/internal/core/domain"
)

// ctxSession returns the session injected by the Session middleware. A
// missing or unauthenticated session means the route was wired without the
// guard and is rejected with 401.
func ctxSession(c echo.Context) (*domain.Session, error) {
	s, _ := c.Get("session").(*domain.Session)
	if s == nil || !s.Authenticated || s.Identity == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return s, nil
}
