package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/univexams/exam-portal/internal/core/domain"
	"github.com/univexams/exam-portal/internal/core/ports"
)

const lookupActiveUserSQL = `
	SELECT u.id::text, u.username, u.role, COALESCE(u.linked_id::text, ''),
	       COALESCE(u.email, ''), COALESCE(u.display_name, ''), u.password_hash
	FROM users u
	WHERE u.username = $1
	  AND u.is_active = TRUE`

// UserDirectory implements ports.UserDirectory over the users table.
type UserDirectory struct {
	pool *pgxpool.Pool
}

var _ ports.UserDirectory = (*UserDirectory)(nil)

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

// LookupActiveUser matches username exactly (case-sensitive) among active users.
func (d *UserDirectory) LookupActiveUser(ctx context.Context, username string) (*domain.UserRecord, error) {
	var (
		rec     domain.UserRecord
		rawRole string
	)
	err := d.pool.QueryRow(ctx, lookupActiveUserSQL, username).Scan(
		&rec.ID, &rec.Username, &rawRole, &rec.LinkedEntityID,
		&rec.Email, &rec.DisplayName, &rec.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", rec.Username, err)
	}
	rec.Role = role
	return &rec, nil
}

// SetPasswordHash stores a new credential hash for username.
func (d *UserDirectory) SetPasswordHash(ctx context.Context, username, hash string) error {
	tag, err := d.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE username = $1`, username, hash)
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
