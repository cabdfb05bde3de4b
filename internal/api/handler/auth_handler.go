package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/univexams/exam-portal/internal/api/middleware"
	"github.com/univexams/exam-portal/internal/api/token"
	"github.com/univexams/exam-portal/internal/core/domain"
	"github.com/univexams/exam-portal/internal/core/ports"
)

// TokenIssuer signs and verifies session bearer tokens.
type TokenIssuer interface {
	Issue(s *domain.Session) (string, time.Time, error)
	Parse(raw string) (*token.Claims, error)
}

type AuthHandler struct {
	sessions ports.SessionService
	tokens   TokenIssuer
}

func NewAuthHandler(sessions ports.SessionService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens}
}

// Empty credentials are left to the session service so they fail with the
// same response as a wrong password.
type loginRequest struct {
	Username string `json:"username" validate:"max=150"`
	Password string `json:"password" validate:"max=128"`
}

type loginResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expires_at"`
	Session   domain.SessionView   `json:"session"`
	Dashboard domain.DashboardView `json:"dashboard"`
}

// Login authenticates a user, opens a session and returns its bearer token.
// A valid token already held by the caller is replaced.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	session, err := h.sessions.Login(c.Request().Context(), h.priorSessionID(c), req.Username, req.Password)
	if err != nil {
		return err
	}

	signed, exp, err := h.tokens.Issue(session)
	if err != nil {
		return err
	}

	resp := loginResponse{Token: signed, ExpiresAt: exp, Session: session.View()}
	if dash, err := domain.DashboardFor(session.Identity.Role); err == nil {
		resp.Dashboard = dash
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout ends the session named by the bearer token. Logging out an already
// closed or expired session succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401   {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, ok := middleware.BearerToken(c)
	if !ok {
		return &domain.SessionError{Kind: domain.SessionNotAuthenticated}
	}
	claims, err := h.tokens.Parse(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	if err := h.sessions.Logout(c.Request().Context(), claims.SessionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) priorSessionID(c echo.Context) string {
	raw, ok := middleware.BearerToken(c)
	if !ok {
		return ""
	}
	claims, err := h.tokens.Parse(raw)
	if err != nil {
		return ""
	}
	return claims.SessionID
}
