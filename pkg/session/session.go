package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the resolution state of a browser session.
type Status string

const (
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// Role is the authorization level the backend assigns to a user.
type Role string

const (
	RoleUser    Role = "user"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a backend role string to a Role. Unknown values are users.
func ParseRole(s string) Role {
	switch r := Role(s); r {
	case RolePremium, RoleAdmin:
		return r
	default:
		return RoleUser
	}
}

// Session is the per-browser authentication and profile state. Values of
// Session are snapshots: the manager never hands out a pointer to the copy
// it stores.
type Session struct {
	ID string `json:"id"`

	Identity    string `json:"identity,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Role        Role   `json:"role,omitempty"`
	IsPremium   bool   `json:"is_premium,omitempty"`

	LessonsCreated int `json:"lessons_created,omitempty"`
	LessonsSaved   int `json:"lessons_saved,omitempty"`

	AuthToken      string    `json:"auth_token,omitempty"`
	RefreshToken   string    `json:"refresh_token,omitempty"`
	TokenExpiresAt time.Time `json:"token_expires_at,omitzero"`

	Status Status `json:"status"`
	// SyncPending is set while an optimistic profile edit is unconfirmed.
	SyncPending     bool   `json:"sync_pending,omitempty"`
	ProfileRevision uint64 `json:"profile_revision,omitempty"`
	// Generation changes on every auth-state event. Profile sync results
	// carrying an older generation are discarded.
	Generation uint64 `json:"generation"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns a fresh loading session.
func NewSession(now time.Time) Session {
	return Session{
		ID:        uuid.NewString(),
		Status:    StatusLoading,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAuthenticated reports whether the session is resolved to a principal.
func (s Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// IsLoading reports whether the session is still being resolved.
func (s Session) IsLoading() bool {
	return s.Status == StatusLoading
}

// IsAdmin reports whether the session holds the admin role.
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.Role == RoleAdmin
}

// HasRole reports whether the session holds r. Admins hold every role and
// premium users hold the user role.
func (s Session) HasRole(r Role) bool {
	if !s.IsAuthenticated() {
		return false
	}
	switch s.Role {
	case RoleAdmin:
		return true
	case RolePremium:
		return r == RolePremium || r == RoleUser
	default:
		return r == RoleUser
	}
}

// Validate checks that the status agrees with the identity fields: a session
// is authenticated exactly when it has both an identity and a token.
func (s Session) Validate() error {
	switch s.Status {
	case StatusLoading, StatusAuthenticated, StatusAnonymous:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSession, s.Status)
	}
	resolved := s.Identity != "" && s.AuthToken != ""
	if resolved != (s.Status == StatusAuthenticated) {
		return fmt.Errorf("%w: status %s with identity=%t token=%t",
			ErrInvalidSession, s.Status, s.Identity != "", s.AuthToken != "")
	}
	return nil
}

// clearIdentity drops every principal-derived field.
func (s *Session) clearIdentity() {
	s.Identity = ""
	s.DisplayName = ""
	s.Email = ""
	s.AvatarURL = ""
	s.Role = ""
	s.IsPremium = false
	s.LessonsCreated = 0
	s.LessonsSaved = 0
	s.AuthToken = ""
	s.RefreshToken = ""
	s.TokenExpiresAt = time.Time{}
	s.SyncPending = false
}
