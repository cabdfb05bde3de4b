package domain

import "time"

// DefaultIdleTimeout is the maximum gap between recorded activity before a
// session is treated as invalid.
const DefaultIdleTimeout = 60 * time.Minute

// SessionState is the lifecycle state of an interaction context.
type SessionState int

const (
	StateAnonymous SessionState = iota
	StateAuthenticated
	StateExpired
)

func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Session is the record proving an interaction context has authenticated.
// Authenticated is true iff Identity is set and LoginTime is non-zero, and
// LastActivity never precedes LoginTime.
type Session struct {
	ID            string
	Identity      *UserIdentity
	Authenticated bool
	LoginTime     time.Time
	LastActivity  time.Time
}

// IsZero reports whether s holds no session state at all.
func (s *Session) IsZero() bool {
	return s == nil || (s.ID == "" && s.Identity == nil && !s.Authenticated &&
		s.LoginTime.IsZero() && s.LastActivity.IsZero())
}

// SessionView is the read-only projection handed to dashboard views.
type SessionView struct {
	SessionID        string    `json:"session_id"`
	Username         string    `json:"username"`
	Role             Role      `json:"role"`
	RoleTitle        string    `json:"role_title"`
	DisplayName      string    `json:"display_name"`
	LinkedEntityKind string    `json:"linked_entity_kind,omitempty"`
	LinkedEntityID   string    `json:"linked_entity_id,omitempty"`
	Authenticated    bool      `json:"authenticated"`
	LoginTime        time.Time `json:"login_time"`
	LastActivity     time.Time `json:"last_activity"`
}

// View projects s for downstream consumers. A nil or empty session yields an
// unauthenticated view.
func (s *Session) View() SessionView {
	if s == nil || s.Identity == nil {
		return SessionView{}
	}
	v := SessionView{
		SessionID:     s.ID,
		Username:      s.Identity.Username,
		Role:          s.Identity.Role,
		RoleTitle:     s.Identity.Role.Title(),
		DisplayName:   s.Identity.DisplayName,
		Authenticated: s.Authenticated,
		LoginTime:     s.LoginTime,
		LastActivity:  s.LastActivity,
	}
	if e := s.Identity.LinkedEntity; e != nil {
		v.LinkedEntityKind = e.Kind()
		v.LinkedEntityID = e.EntityID()
	}
	return v
}
