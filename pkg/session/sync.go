package session

import (
	"context"
	"errors"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/backend"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/identity"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
)

// syncProfile resolves generation gen of session id: it fetches a token,
// upserts the user and reads the backend profile. Any failure falls back to
// the provider fields with the user role. A result for an outdated
// generation is dropped and the stored snapshot returned instead.
func (m *Manager) syncProfile(ctx context.Context, id string, gen uint64, u identity.User) Session {
	token, profile, syncErr := m.fetchProfile(ctx, id, u)
	if errors.Is(syncErr, identity.ErrNoUser) {
		return m.principalGone(ctx, id, gen)
	}
	if cur, ok := m.provider.CurrentUser(id); ok && cur.UID == u.UID {
		u = cur
	}
	if token == "" {
		token = u.IDToken
	}

	s, err := m.mutate(ctx, id, func(s *Session) error {
		if s.Generation != gen {
			return errStale
		}
		s.Identity = u.UID
		s.Email = u.Email
		s.AuthToken = token
		s.RefreshToken = u.RefreshToken
		s.TokenExpiresAt = u.ExpiresAt

		if !s.SyncPending {
			s.DisplayName = firstNonEmpty(profile.Name, u.DisplayName)
			s.AvatarURL = firstNonEmpty(profile.PhotoURL, u.PhotoURL)
		}
		if syncErr != nil {
			s.Role = RoleUser
			s.IsPremium = false
			s.LessonsCreated, s.LessonsSaved = 0, 0
		} else {
			s.Role = ParseRole(profile.Role)
			s.IsPremium = profile.IsPremium
			s.LessonsCreated = profile.LessonsCreated
			s.LessonsSaved = profile.LessonsSaved
		}
		return s.transition(EventProfileSynced)
	})

	switch {
	case errors.Is(err, errStale):
		m.log.DebugContext(ctx, "stale profile sync dropped", logger.SessionID(id), logger.Generation(gen))
		cur, _ := m.load(ctx, id)
		return cur
	case err != nil:
		m.log.ErrorContext(ctx, "profile sync not stored", logger.SessionID(id), logger.Error(err))
		cur, _ := m.load(ctx, id)
		return cur
	}

	if syncErr != nil {
		m.log.WarnContext(ctx, "profile sync failed, using fallback profile",
			logger.SessionID(id), logger.Identity(u.UID), logger.Error(syncErr))
		_ = m.changes.Broadcast(context.Background(), Change{Session: s, Err: syncErr})
	}
	return s
}

// principalGone signs generation gen of id out: the provider no longer holds
// the principal the sync was started for.
func (m *Manager) principalGone(ctx context.Context, id string, gen uint64) Session {
	s, err := m.mutate(ctx, id, func(s *Session) error {
		if s.Generation != gen {
			return errStale
		}
		s.clearIdentity()
		s.Generation++
		return s.transition(EventSignedOut)
	})
	if err != nil {
		cur, _ := m.load(ctx, id)
		return cur
	}
	m.log.InfoContext(ctx, "principal gone before profile sync, signed out", logger.SessionID(id))
	return s
}

func (m *Manager) fetchProfile(ctx context.Context, id string, u identity.User) (string, backend.Profile, error) {
	token, err := m.provider.IDToken(ctx, id, false)
	if err != nil {
		return "", backend.Profile{}, &ProfileSyncError{Op: "id_token", Err: err}
	}
	if m.backend == nil {
		return token, backend.Profile{}, &ProfileSyncError{Op: "sync_user", Err: errNoBackend}
	}
	if err := m.backend.SyncUser(ctx, token); err != nil {
		return token, backend.Profile{}, &ProfileSyncError{Op: "sync_user", Err: err}
	}
	p, err := m.backend.Profile(ctx, token, u.Email)
	if err != nil {
		return token, backend.Profile{}, &ProfileSyncError{Op: "get_profile", Err: err}
	}
	return token, p, nil
}

// persistProfile pushes an optimistic edit to the provider and the backend.
// SyncPending is cleared only if no newer edit or auth event happened since.
func (m *Manager) persistProfile(ctx context.Context, s Session, p ProfilePatch) {
	err := m.pushProfile(ctx, s, p)
	if err != nil {
		m.log.WarnContext(ctx, "profile update not persisted",
			logger.SessionID(s.ID), logger.Identity(s.Identity), logger.Error(err))
		cur, lerr := m.load(ctx, s.ID)
		if lerr != nil {
			cur = s
		}
		_ = m.changes.Broadcast(context.Background(), Change{Session: cur, Err: err})
		return
	}

	_, err = m.mutate(ctx, s.ID, func(cur *Session) error {
		if cur.Generation != s.Generation || cur.ProfileRevision != s.ProfileRevision {
			return errStale
		}
		cur.SyncPending = false
		return cur.transition(EventProfileEdited)
	})
	if err != nil && !errors.Is(err, errStale) {
		m.log.WarnContext(ctx, "profile confirmation not stored", logger.SessionID(s.ID), logger.Error(err))
	}
}

func (m *Manager) pushProfile(ctx context.Context, s Session, p ProfilePatch) error {
	if _, err := m.provider.UpdateProfile(ctx, s.ID, identity.ProfileUpdate{
		DisplayName: p.DisplayName,
		PhotoURL:    p.AvatarURL,
	}); err != nil {
		return &ProfileSyncError{Op: "provider_update", Err: err}
	}
	if m.backend == nil {
		return nil
	}
	token, err := m.provider.IDToken(ctx, s.ID, false)
	if err != nil {
		return &ProfileSyncError{Op: "id_token", Err: err}
	}
	if err := m.backend.UpdateProfile(ctx, token, backend.ProfileUpdate{
		Name:     s.DisplayName,
		PhotoURL: s.AvatarURL,
	}); err != nil {
		return &ProfileSyncError{Op: "update_profile", Err: err}
	}
	return nil
}

var (
	errStale         = errors.New("session.stale_generation")
	errUnsolicited   = errors.New("session.unsolicited_sign_in")
	errPrincipalGone = errors.New("session.principal_gone")
	errNoBackend     = errors.New("session.no_backend")
)

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
