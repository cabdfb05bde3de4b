package domain

import "time"

// AuthEventKind names an authentication lifecycle outcome kept in the audit trail.
type AuthEventKind string

const (
	EventLoginSucceeded       AuthEventKind = "login_succeeded"
	EventLoginRejected        AuthEventKind = "login_rejected"
	EventDirectoryUnavailable AuthEventKind = "directory_unavailable"
	EventLogout               AuthEventKind = "logout"
	EventSessionExpired       AuthEventKind = "session_expired"
)

// AuthEvent is one audit trail entry. Secrets are never recorded.
type AuthEvent struct {
	Kind       AuthEventKind `json:"kind" bson:"kind"`
	Username   string        `json:"username" bson:"username"`
	Role       Role          `json:"role,omitempty" bson:"role,omitempty"`
	SessionID  string        `json:"session_id,omitempty" bson:"session_id,omitempty"`
	Reason     string        `json:"reason,omitempty" bson:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurred_at" bson:"occurred_at"`
}
