package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/univexams/exam-portal/internal/core/domain"
	"github.com/univexams/exam-portal/internal/core/ports"
)

const (
	defaultLookupTimeout = 5 * time.Second

	// maxSecretBytes is the bcrypt input limit. bcrypt ignores anything past
	// it, so longer secrets could match a hash of their prefix.
	maxSecretBytes = 72
)

// Authority authenticates credentials against the user directory and owns the
// session lifecycle operations. It holds no session state itself: every
// interaction context passes its own Session in.
type Authority struct {
	directory     ports.UserDirectory
	lookupTimeout time.Duration
	now           func() time.Time
	newID         func() string
	log           zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// AuthorityOption customises an Authority.
type AuthorityOption func(*Authority)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AuthorityOption {
	return func(a *Authority) { a.now = now }
}

// WithLookupTimeout bounds each directory lookup.
func WithLookupTimeout(d time.Duration) AuthorityOption {
	return func(a *Authority) {
		if d > 0 {
			a.lookupTimeout = d
		}
	}
}

// WithIDGenerator replaces the random session ID source.
func WithIDGenerator(f func() string) AuthorityOption {
	return func(a *Authority) { a.newID = f }
}

func NewAuthority(directory ports.UserDirectory, log zerolog.Logger, opts ...AuthorityOption) *Authority {
	a := &Authority{
		directory:     directory,
		lookupTimeout: defaultLookupTimeout,
		now:           time.Now,
		newID:         uuid.NewString,
		log:           log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate verifies username and secret against the directory. Lookups
// are bounded by the lookup timeout and never retried.
func (a *Authority) Authenticate(ctx context.Context, username, secret string) (*domain.UserIdentity, error) {
	if username == "" || secret == "" || len(secret) > maxSecretBytes {
		return nil, domain.NewAuthFailure(domain.AuthInvalidCredential, nil)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, a.lookupTimeout)
	defer cancel()

	rec, err := a.directory.LookupActiveUser(lookupCtx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn the same bcrypt work as a real comparison so response
			// timing does not reveal whether the username exists.
			_ = bcrypt.CompareHashAndPassword(a.dummy(), []byte(secret))
			return nil, domain.NewAuthFailure(domain.AuthNotFound, nil)
		}
		if errors.Is(err, domain.ErrUnknownRole) {
			return nil, a.malformedRecord(username, err)
		}
		return nil, domain.NewAuthFailure(domain.AuthDirectoryUnavailable, err)
	}
	if rec == nil {
		return nil, domain.NewAuthFailure(domain.AuthDirectoryUnavailable, errors.New("directory returned no record"))
	}

	if rec.PasswordHash == "" {
		a.log.Warn().Str("username", username).Msg("user has no stored credential")
		return nil, domain.NewAuthFailure(domain.AuthInvalidCredential, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(secret)); err != nil {
		return nil, domain.NewAuthFailure(domain.AuthInvalidCredential, nil)
	}

	identity, err := domain.NewUserIdentity(rec)
	if err != nil {
		return nil, a.malformedRecord(username, err)
	}
	return identity, nil
}

// malformedRecord rejects a user whose directory row cannot be mapped to an
// identity. Retrying will not help, so it fails as a credential rejection
// rather than an outage.
func (a *Authority) malformedRecord(username string, err error) error {
	a.log.Error().Err(err).Str("username", username).Msg("directory record is malformed")
	return domain.NewAuthFailure(domain.AuthInvalidCredential, err)
}

// EstablishSession issues a fresh session for identity. Nothing is carried
// over from any earlier session of the same context.
func (a *Authority) EstablishSession(identity *domain.UserIdentity) *domain.Session {
	now := a.now()
	return &domain.Session{
		ID:            a.newID(),
		Identity:      identity,
		Authenticated: identity != nil,
		LoginTime:     now,
		LastActivity:  now,
	}
}

// IsExpired reports whether s is missing, unauthenticated, has no recorded
// activity, or has been idle for strictly longer than timeout.
func (a *Authority) IsExpired(s *domain.Session, timeout time.Duration) bool {
	if s == nil || !s.Authenticated || s.Identity == nil || s.LastActivity.IsZero() {
		return true
	}
	if timeout <= 0 {
		timeout = domain.DefaultIdleTimeout
	}
	return a.now().Sub(s.LastActivity) > timeout
}

// Touch records activity on an authenticated session. It does not check
// expiry; callers run IsExpired first.
func (a *Authority) Touch(s *domain.Session) *domain.Session {
	if s == nil || !s.Authenticated {
		return s
	}
	now := a.now()
	if now.Before(s.LoginTime) {
		now = s.LoginTime
	}
	if now.After(s.LastActivity) {
		s.LastActivity = now
	}
	return s
}

// Terminate discards all session state. It is idempotent and nil-safe.
func (a *Authority) Terminate(s *domain.Session) {
	if s == nil {
		return
	}
	*s = domain.Session{}
}

// State classifies s under the given idle timeout.
func (a *Authority) State(s *domain.Session, timeout time.Duration) domain.SessionState {
	if s.IsZero() {
		return domain.StateAnonymous
	}
	if a.IsExpired(s, timeout) {
		return domain.StateExpired
	}
	return domain.StateAuthenticated
}

func (a *Authority) dummy() []byte {
	a.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if err != nil {
			a.log.Error().Err(err).Msg("generate dummy hash")
			return
		}
		a.dummyHash = h
	})
	return a.dummyHash
}
