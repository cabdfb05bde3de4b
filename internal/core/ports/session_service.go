package ports

import (
	"context"

	"github.com/univexams/exam-portal/internal/core/domain"
)

// SessionService drives the session lifecycle of interaction contexts.
type SessionService interface {
	// Login authenticates the credential and establishes a new session,
	// discarding priorSessionID if the context already held one.
	Login(ctx context.Context, priorSessionID, username, secret string) (*domain.Session, error)
	// Guard must run before any protected operation. It terminates expired
	// sessions and records activity on live ones.
	Guard(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
}
