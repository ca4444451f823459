package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/statemachine"
)

func TestSession_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		s       session.Session
		wantErr bool
	}{
		{name: "loading without identity", s: session.Session{Status: session.StatusLoading}},
		{name: "anonymous without identity", s: session.Session{Status: session.StatusAnonymous}},
		{name: "authenticated with identity and token", s: session.Session{Status: session.StatusAuthenticated, Identity: "u1", AuthToken: "t"}},
		{name: "authenticated without token", s: session.Session{Status: session.StatusAuthenticated, Identity: "u1"}, wantErr: true},
		{name: "authenticated without identity", s: session.Session{Status: session.StatusAuthenticated, AuthToken: "t"}, wantErr: true},
		{name: "anonymous holding a principal", s: session.Session{Status: session.StatusAnonymous, Identity: "u1", AuthToken: "t"}, wantErr: true},
		{name: "unknown status", s: session.Session{Status: "pending"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, session.ErrInvalidSession)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a, b := session.NewSession(now), session.NewSession(now)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, session.StatusLoading, a.Status)
	assert.Equal(t, now, a.CreatedAt)
	assert.NoError(t, a.Validate())
}

func TestNextStatus(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from  session.Status
		event session.Event
		to    session.Status
	}{
		{session.StatusLoading, session.EventResume, session.StatusLoading},
		{session.StatusLoading, session.EventSignedIn, session.StatusLoading},
		{session.StatusLoading, session.EventProfileSynced, session.StatusAuthenticated},
		{session.StatusLoading, session.EventSignedOut, session.StatusAnonymous},
		{session.StatusAnonymous, session.EventSignedIn, session.StatusLoading},
		{session.StatusAnonymous, session.EventSignedOut, session.StatusAnonymous},
		{session.StatusAuthenticated, session.EventSignedIn, session.StatusAuthenticated},
		{session.StatusAuthenticated, session.EventSignedOut, session.StatusAnonymous},
		{session.StatusAuthenticated, session.EventProfileEdited, session.StatusAuthenticated},
		{session.StatusAuthenticated, session.EventResume, session.StatusLoading},
	}
	for _, tt := range allowed {
		got, err := session.NextStatus(tt.from, tt.event)
		require.NoError(t, err, "%s on %s", tt.from, tt.event)
		assert.Equal(t, tt.to, got, "%s on %s", tt.from, tt.event)
	}

	rejected := []struct {
		from  session.Status
		event session.Event
	}{
		{session.StatusAnonymous, session.EventProfileSynced},
		{session.StatusAnonymous, session.EventProfileEdited},
		{session.StatusLoading, session.EventProfileEdited},
	}
	for _, tt := range rejected {
		_, err := session.NextStatus(tt.from, tt.event)
		assert.True(t, statemachine.IsNoTransition[session.Status, session.Event](err), "%s on %s", tt.from, tt.event)
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()
	assert.Equal(t, session.RoleAdmin, session.ParseRole("admin"))
	assert.Equal(t, session.RolePremium, session.ParseRole("premium"))
	assert.Equal(t, session.RoleUser, session.ParseRole("user"))
	assert.Equal(t, session.RoleUser, session.ParseRole(""))
	assert.Equal(t, session.RoleUser, session.ParseRole("root"))
}

func TestSession_HasRole(t *testing.T) {
	t.Parallel()
	authed := func(r session.Role) session.Session {
		return session.Session{Status: session.StatusAuthenticated, Identity: "u", AuthToken: "t", Role: r}
	}

	assert.True(t, authed(session.RoleAdmin).HasRole(session.RoleAdmin))
	assert.True(t, authed(session.RoleAdmin).HasRole(session.RolePremium))
	assert.True(t, authed(session.RolePremium).HasRole(session.RoleUser))
	assert.False(t, authed(session.RolePremium).HasRole(session.RoleAdmin))
	assert.False(t, authed(session.RoleUser).HasRole(session.RolePremium))
	assert.False(t, session.Session{Status: session.StatusAnonymous, Role: session.RoleAdmin}.HasRole(session.RoleAdmin))
	assert.True(t, authed(session.RoleAdmin).IsAdmin())
	assert.False(t, authed(session.RoleUser).IsAdmin())
}
