package ports

import (
	"context"

	"github.com/univexams/exam-portal/internal/core/domain"
)

// SessionStore keeps one Session per interaction context, keyed by session ID.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	// Update overwrites an existing session only. It returns
	// domain.ErrSessionNotFound when the ID was deleted in the meantime, so a
	// concurrent logout is never undone.
	Update(ctx context.Context, session *domain.Session) error
	// Get returns domain.ErrSessionNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
