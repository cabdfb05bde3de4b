package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredential    = errors.New("invalid credential")
	ErrDirectoryUnavailable = errors.New("user directory unavailable")

	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionNotFound  = errors.New("session not found")

	ErrForbidden = errors.New("access forbidden")
)

// AuthFailureKind classifies why authenticate rejected a credential.
type AuthFailureKind int

const (
	AuthNotFound AuthFailureKind = iota + 1
	AuthInvalidCredential
	AuthDirectoryUnavailable
)

func (k AuthFailureKind) String() string {
	switch k {
	case AuthNotFound:
		return "not_found"
	case AuthInvalidCredential:
		return "invalid_credential"
	case AuthDirectoryUnavailable:
		return "directory_unavailable"
	default:
		return "unknown"
	}
}

func (k AuthFailureKind) sentinel() error {
	switch k {
	case AuthNotFound:
		return ErrUserNotFound
	case AuthInvalidCredential:
		return ErrInvalidCredential
	case AuthDirectoryUnavailable:
		return ErrDirectoryUnavailable
	default:
		return nil
	}
}

// AuthFailure is returned by authenticate. errors.Is matches it against the
// sentinel of its kind; Err carries the underlying cause, if any.
type AuthFailure struct {
	Kind AuthFailureKind
	Err  error
}

func NewAuthFailure(kind AuthFailureKind, cause error) *AuthFailure {
	return &AuthFailure{Kind: kind, Err: cause}
}

func (e *AuthFailure) Error() string {
	msg := "authentication failed: " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthFailure) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *AuthFailure) Unwrap() error { return e.Err }

// SessionErrorKind classifies why a protected operation was refused.
type SessionErrorKind int

const (
	SessionExpired SessionErrorKind = iota + 1
	SessionNotAuthenticated
)

func (k SessionErrorKind) String() string {
	switch k {
	case SessionExpired:
		return "expired"
	case SessionNotAuthenticated:
		return "not_authenticated"
	default:
		return "unknown"
	}
}

// SessionError is returned by the per-request session guard.
type SessionError struct {
	Kind SessionErrorKind
}

func (e *SessionError) Error() string { return "session error: " + e.Kind.String() }

func (e *SessionError) Is(target error) bool {
	switch e.Kind {
	case SessionExpired:
		return target == ErrSessionExpired
	case SessionNotAuthenticated:
		return target == ErrNotAuthenticated
	}
	return false
}
