package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

func sampleSession() session.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return session.Session{
		ID:             "sess-1",
		Identity:       "uid-ada",
		DisplayName:    "Ada",
		Email:          "ada@example.com",
		Role:           session.RolePremium,
		IsPremium:      true,
		AuthToken:      "tok",
		RefreshToken:   "rt",
		TokenExpiresAt: now.Add(time.Hour),
		Status:         session.StatusAuthenticated,
		Generation:     4,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	s := sampleSession()
	require.NoError(t, store.Save(ctx, s, time.Hour))
	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	got.DisplayName = "changed"
	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.DisplayName, "stored value is not aliased")

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	assert.ErrorIs(t, store.Save(ctx, session.Session{}, time.Hour), session.ErrInvalidSession)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })

	s := sampleSession()
	require.NoError(t, store.Save(ctx, s, 20*time.Millisecond))
	require.NoError(t, store.Save(ctx, session.Session{ID: "forever", Status: session.StatusAnonymous}, 0))
	time.Sleep(40 * time.Millisecond)

	_, err := store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	store.DeleteExpired()
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_CleanupLoop(t *testing.T) {
	store := session.NewMemoryStore(10 * time.Millisecond)
	require.NoError(t, store.Save(context.Background(), sampleSession(), 5*time.Millisecond))

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewRedisStore(client, "wv:session:")

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	s := sampleSession()
	require.NoError(t, store.Save(ctx, s, time.Hour))
	assert.True(t, mr.Exists("wv:session:sess-1"))
	assert.Equal(t, time.Hour, mr.TTL("wv:session:sess-1"))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, s, time.Hour))
	require.NoError(t, store.Delete(ctx, s.ID))
	assert.False(t, mr.Exists("wv:session:sess-1"))

	require.NoError(t, mr.Set("wv:session:broken", "{not json"))
	_, err = store.Get(ctx, "broken")
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestManager_WithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := newHarness(t, session.WithStore(session.NewRedisStore(client, "")))
	anon := h.anonymous(t)
	assert.Equal(t, testConfig().AnonymousTTL, mr.TTL("session:"+anon.ID), "anonymous sessions expire early")

	s := h.signedIn(t)
	assert.True(t, mr.Exists("session:"+s.ID))
	assert.Equal(t, testConfig().TTL, mr.TTL("session:"+s.ID))

	h.m.Logout(context.Background(), s.ID)
	assert.Equal(t, testConfig().AnonymousTTL, mr.TTL("session:"+s.ID))
}
