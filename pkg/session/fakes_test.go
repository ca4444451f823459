package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/backend"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/broadcast"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/identity"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var ada = identity.User{
	UID:          "uid-ada",
	Email:        "ada@example.com",
	DisplayName:  "Ada",
	PhotoURL:     "https://img.example.com/ada.png",
	IDToken:      "tok-ada",
	RefreshToken: "rt-ada",
}

type fakeProvider struct {
	stream *broadcast.Memory[identity.StateChange]

	mu         sync.Mutex
	users      map[string]identity.User
	accounts   map[string]identity.User
	refresh    map[string]identity.User
	updates    []identity.ProfileUpdate
	signOutErr error
	updateErr  error
	idTokenErr error
	signOuts   int

	// resumeGate, when set, holds Resume until closed; resumeEntered is
	// signalled once the call is waiting.
	resumeGate    chan struct{}
	resumeEntered chan struct{}
}

func newFakeProvider() *fakeProvider {
	u := ada
	u.ExpiresAt = time.Now().Add(time.Hour)
	return &fakeProvider{
		stream:   broadcast.NewMemory[identity.StateChange](16),
		users:    make(map[string]identity.User),
		accounts: map[string]identity.User{u.Email: u},
		refresh:  map[string]identity.User{u.RefreshToken: u},
	}
}

func (p *fakeProvider) Subscribe(ctx context.Context) broadcast.Subscriber[identity.StateChange] {
	return p.stream.Subscribe(ctx, broadcast.Reliable())
}

func (p *fakeProvider) SignInWithPassword(ctx context.Context, key, email, password string) (identity.User, error) {
	p.mu.Lock()
	u, ok := p.accounts[email]
	p.mu.Unlock()
	if !ok || password != "secret" {
		return identity.User{}, &identity.AuthError{Kind: identity.KindInvalidCredentials, Message: "Invalid email or password"}
	}
	return u, p.emitSignIn(ctx, key, u)
}

func (p *fakeProvider) SignInWithGoogle(ctx context.Context, key, googleIDToken string) (identity.User, error) {
	if googleIDToken != "google-ada" {
		return identity.User{}, identity.ErrPopupClosed
	}
	return p.SignInWithPassword(ctx, key, ada.Email, "secret")
}

func (p *fakeProvider) SignUp(ctx context.Context, key string, reg identity.Registration) (identity.User, error) {
	p.mu.Lock()
	if _, exists := p.accounts[reg.Email]; exists {
		p.mu.Unlock()
		return identity.User{}, &identity.AuthError{Kind: identity.KindEmailExists}
	}
	u := identity.User{
		UID:          "uid-" + reg.Name,
		Email:        reg.Email,
		DisplayName:  reg.Name,
		PhotoURL:     reg.PhotoURL,
		IDToken:      "tok-" + reg.Name,
		RefreshToken: "rt-" + reg.Name,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	p.accounts[reg.Email] = u
	p.mu.Unlock()
	return u, p.emitSignIn(ctx, key, u)
}

func (p *fakeProvider) SendPasswordReset(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[email]; !ok {
		return &identity.AuthError{Kind: identity.KindInvalidCredentials}
	}
	return nil
}

func (p *fakeProvider) SignOut(ctx context.Context, key string) error {
	p.mu.Lock()
	p.signOuts++
	err := p.signOutErr
	if err == nil {
		delete(p.users, key)
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return p.stream.Broadcast(ctx, identity.StateChange{Key: key})
}

func (p *fakeProvider) CurrentUser(key string) (identity.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[key]
	return u, ok
}

func (p *fakeProvider) IDToken(_ context.Context, key string, _ bool) (string, error) {
	p.mu.Lock()
	err := p.idTokenErr
	p.mu.Unlock()
	if err != nil {
		return "", err
	}
	u, ok := p.CurrentUser(key)
	if !ok {
		return "", identity.ErrNoUser
	}
	return u.IDToken, nil
}

func (p *fakeProvider) UpdateProfile(_ context.Context, key string, upd identity.ProfileUpdate) (identity.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.updateErr != nil {
		return identity.User{}, p.updateErr
	}
	u, ok := p.users[key]
	if !ok {
		return identity.User{}, identity.ErrNoUser
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = *upd.PhotoURL
	}
	p.users[key] = u
	p.updates = append(p.updates, upd)
	return u, nil
}

func (p *fakeProvider) Resume(ctx context.Context, key, refreshToken string) error {
	p.mu.Lock()
	gate, entered := p.resumeGate, p.resumeEntered
	p.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		<-gate
	}
	if u, ok := p.CurrentUser(key); ok {
		return p.stream.Broadcast(ctx, identity.StateChange{Key: key, User: &u})
	}
	p.mu.Lock()
	u, ok := p.refresh[refreshToken]
	p.mu.Unlock()
	if !ok {
		return p.stream.Broadcast(ctx, identity.StateChange{Key: key})
	}
	return p.emitSignIn(ctx, key, u)
}

func (p *fakeProvider) emitSignIn(ctx context.Context, key string, u identity.User) error {
	p.mu.Lock()
	p.users[key] = u
	p.mu.Unlock()
	return p.stream.Broadcast(ctx, identity.StateChange{Key: key, User: &u})
}

func (p *fakeProvider) signOutCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signOuts
}

func (p *fakeProvider) set(fn func(p *fakeProvider)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

type fakeBackend struct {
	mu       sync.Mutex
	profiles map[string]backend.Profile
	err      error
	updates  []backend.ProfileUpdate

	// gate, when set, holds Profile until closed; entered is signalled
	// once the call is waiting.
	gate    chan struct{}
	entered chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{profiles: map[string]backend.Profile{
		ada.Email: {
			Email:          ada.Email,
			Name:           "Ada Lovelace",
			PhotoURL:       ada.PhotoURL,
			Role:           "premium",
			IsPremium:      true,
			LessonsCreated: 3,
			LessonsSaved:   7,
		},
	}}
}

func (b *fakeBackend) SyncUser(_ context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token == "" {
		return errors.New("missing token")
	}
	return b.err
}

func (b *fakeBackend) Profile(_ context.Context, _, email string) (backend.Profile, error) {
	b.mu.Lock()
	gate, entered := b.gate, b.entered
	b.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return backend.Profile{}, b.err
	}
	p, ok := b.profiles[email]
	if !ok {
		return backend.Profile{}, &backend.RequestError{Op: "get_profile", Status: 404}
	}
	return p, nil
}

func (b *fakeBackend) UpdateProfile(_ context.Context, _ string, upd backend.ProfileUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.updates = append(b.updates, upd)
	return nil
}

func (b *fakeBackend) set(fn func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

type harness struct {
	m *session.Manager
	p *fakeProvider
	b *fakeBackend
}

func testConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.CleanupInterval = 0
	cfg.SyncTimeout = 2 * time.Second
	cfg.ResolveTimeout = time.Second
	return cfg
}

func newHarness(t *testing.T, opts ...session.Option) *harness {
	t.Helper()
	h := &harness{p: newFakeProvider(), b: newFakeBackend()}

	all := append([]session.Option{
		session.WithConfig(testConfig()),
		session.WithBackend(h.b),
	}, opts...)
	m, err := session.New(h.p, all...)
	require.NoError(t, err)
	h.m = m

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		require.NoError(t, m.Close())
		require.NoError(t, h.p.stream.Close())
	})
	return h
}

// anonymous opens a fresh browser session and waits for it to resolve.
func (h *harness) anonymous(t *testing.T) session.Session {
	t.Helper()
	ctx := context.Background()
	s, err := h.m.Open(ctx, "")
	require.NoError(t, err)
	s, err = h.m.Await(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, session.StatusAnonymous, s.Status)
	return s
}

// signedIn logs Ada in on a fresh session.
func (h *harness) signedIn(t *testing.T) session.Session {
	t.Helper()
	ctx := context.Background()
	s := h.anonymous(t)
	require.NoError(t, h.m.Login(ctx, s.ID, session.Credentials{Email: ada.Email, Password: "secret"}))
	s, err := h.m.Snapshot(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, session.StatusAuthenticated, s.Status)
	return s
}

func waitChange(t *testing.T, sub broadcast.Subscriber[session.Change], match func(session.Change) bool) session.Change {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case c, ok := <-sub.Receive():
			require.True(t, ok, "subscription closed")
			if match(c) {
				return c
			}
		case <-timeout:
			t.Fatal("no matching change published")
			return session.Change{}
		}
	}
}
