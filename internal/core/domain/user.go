package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the portal role a user signs in with.
type Role string

const (
	RoleStudent        Role = "student"
	RoleProfessor      Role = "professor"
	RoleDepartmentHead Role = "department_head"
	RoleExamAdmin      Role = "exam_admin"
	RoleViceDean       Role = "vice_dean"
)

var ErrUnknownRole = errors.New("unknown role")

// legacyRoles maps the role codes stored in the users table to portal roles.
var legacyRoles = map[string]Role{
	"etudiant":         RoleStudent,
	"professeur":       RoleProfessor,
	"chef_departement": RoleDepartmentHead,
	"admin_examens":    RoleExamAdmin,
	"vice_doyen":       RoleViceDean,
}

var roleTitles = map[Role]string{
	RoleStudent:        "Student",
	RoleProfessor:      "Professor",
	RoleDepartmentHead: "Department Head",
	RoleExamAdmin:      "Exam Administrator",
	RoleViceDean:       "Vice Dean",
}

// ParseRole accepts both portal role names and the directory's stored codes.
func ParseRole(s string) (Role, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if r, ok := legacyRoles[v]; ok {
		return r, nil
	}
	r := Role(v)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleTitles[r]
	return ok
}

// Title returns the human-readable role name, or the raw value for unknown roles.
func (r Role) Title() string {
	if t, ok := roleTitles[r]; ok {
		return t
	}
	return string(r)
}

// UserRecord is an active user as returned by the user directory.
type UserRecord struct {
	ID             string
	Username       string
	Role           Role
	LinkedEntityID string
	Email          string
	DisplayName    string
	PasswordHash   string
}

// UserIdentity is the authenticated principal owned by a session.
type UserIdentity struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Role         Role         `json:"role"`
	LinkedEntity LinkedEntity `json:"-"`
	DisplayName  string       `json:"display_name"`
}

// NewUserIdentity builds the identity issued for rec. The display name falls
// back to the username when the directory has none.
func NewUserIdentity(rec *UserRecord) (*UserIdentity, error) {
	entity, err := NewLinkedEntity(rec.Role, rec.LinkedEntityID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(rec.DisplayName)
	if name == "" {
		name = rec.Username
	}
	return &UserIdentity{
		ID:           rec.ID,
		Username:     rec.Username,
		Role:         rec.Role,
		LinkedEntity: entity,
		DisplayName:  name,
	}, nil
}
