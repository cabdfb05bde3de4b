package ports

import (
	"context"

	"github.com/univexams/exam-portal/internal/core/domain"
)

// UserDirectory looks up users in the identity store.
type UserDirectory interface {
	// LookupActiveUser returns the active user with exactly this username.
	// Absent and inactive users both yield domain.ErrUserNotFound; any other
	// error is a directory fault.
	LookupActiveUser(ctx context.Context, username string) (*domain.UserRecord, error)
}
