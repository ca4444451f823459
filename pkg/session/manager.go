package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/backend"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/broadcast"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/identity"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
)

// Provider is the identity provider as the manager uses it.
// *identity.Auth implements it.
type Provider interface {
	Subscribe(ctx context.Context) broadcast.Subscriber[identity.StateChange]
	SignInWithPassword(ctx context.Context, key, email, password string) (identity.User, error)
	SignInWithGoogle(ctx context.Context, key, googleIDToken string) (identity.User, error)
	SignUp(ctx context.Context, key string, reg identity.Registration) (identity.User, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context, key string) error
	CurrentUser(key string) (identity.User, bool)
	IDToken(ctx context.Context, key string, force bool) (string, error)
	UpdateProfile(ctx context.Context, key string, p identity.ProfileUpdate) (identity.User, error)
	Resume(ctx context.Context, key, refreshToken string) error
}

// ProfileBackend is the part of the backend API that owns user profiles.
// *backend.Client implements it.
type ProfileBackend interface {
	SyncUser(ctx context.Context, token string) error
	Profile(ctx context.Context, token, email string) (backend.Profile, error)
	UpdateProfile(ctx context.Context, token string, upd backend.ProfileUpdate) error
}

// Credentials selects the sign-in method: a Google ID token when set,
// otherwise email and password.
type Credentials struct {
	Email         string
	Password      string
	GoogleIDToken string
}

// ProfilePatch carries the profile fields to change; nil fields are kept.
type ProfilePatch struct {
	DisplayName *string
	AvatarURL   *string
}

// Change is published after every stored transition. Err is set when a
// background profile operation failed for Session.
type Change struct {
	Session Session
	Err     error
}

// Manager is the process-wide session store. It owns every transition of
// every browser session; readers only ever get snapshots.
type Manager struct {
	provider Provider
	backend  ProfileBackend
	store    Store
	cfg      Config
	log      *slog.Logger
	now      func() time.Time

	events  broadcast.Subscriber[identity.StateChange]
	changes *broadcast.Memory[Change]

	// mu serializes load, transition and save.
	mu     sync.Mutex
	notify chan struct{}

	// resolving maps a session under resume to the generation Open gave it.
	resolving map[string]uint64
	// signIns counts sign-ins started through the manager and not yet seen
	// on the auth-state stream.
	signIns   map[string]int

	ctx       context.Context
	cancel    context.CancelFunc
	lifeMu    sync.RWMutex
	closed    bool
	jobs      sync.WaitGroup
	ownsStore bool
	transport Transport
}

// New creates a Manager and subscribes it to the provider's auth-state
// stream. Events are buffered until Run consumes them.
func New(provider Provider, opts ...Option) (*Manager, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}
	m := &Manager{
		provider:  provider,
		cfg:       DefaultConfig(),
		log:       logger.Discard(),
		now:       time.Now,
		changes:   broadcast.NewMemory[Change](32),
		notify:    make(chan struct{}),
		resolving: make(map[string]uint64),
		signIns:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMemoryStore(m.cfg.CleanupInterval)
		m.ownsStore = true
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.events = provider.Subscribe(m.ctx)
	return m, nil
}

// Config returns the manager configuration.
func (m *Manager) Config() Config { return m.cfg }

// Run applies auth-state events in emission order until ctx is done, the
// manager is closed, or the provider stream ends.
func (m *Manager) Run(ctx context.Context) error {
	defer m.events.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-m.events.Receive():
			if !ok {
				return nil
			}
			m.handle(ctx, ev)
		}
	}
}

func (m *Manager) handle(ctx context.Context, ev identity.StateChange) {
	if !ev.SignedIn() {
		m.signOut(ctx, ev.Key)
		return
	}

	u := *ev.User
	if cur, ok := m.provider.CurrentUser(ev.Key); !ok || cur.UID != u.UID {
		m.logDropped(ctx, ev.Key, EventSignedIn, errPrincipalGone)
		return
	}
	s, err := m.mutate(ctx, ev.Key, func(s *Session) error {
		if !m.expectsSignIn(s, u) {
			return errUnsolicited
		}
		if s.Identity != "" && s.Identity != u.UID {
			s.clearIdentity()
			if err := s.transition(EventSignedOut); err != nil {
				return err
			}
		}
		s.Generation++
		return s.transition(EventSignedIn)
	})
	if errors.Is(err, errUnsolicited) {
		// The principal came back after the session moved on, typically a
		// resume that finished after Logout. Release it again.
		m.logDropped(ctx, ev.Key, EventSignedIn, err)
		key := ev.Key
		m.goAsync(func(jobCtx context.Context) {
			if err := m.provider.SignOut(jobCtx, key); err != nil {
				m.log.WarnContext(jobCtx, "provider sign-out failed", logger.SessionID(key), logger.Error(err))
			}
		})
		return
	}
	if err != nil {
		m.logDropped(ctx, ev.Key, EventSignedIn, err)
		return
	}
	m.goAsync(func(jobCtx context.Context) {
		m.syncProfile(jobCtx, s.ID, s.Generation, u)
	})
}

// expectsSignIn reports whether a signed-in event for u belongs to s: a
// sign-in started by Login or Register, the resume Open started for the
// current generation, or a token refresh of the principal s already holds.
// Callers hold mu.
func (m *Manager) expectsSignIn(s *Session, u identity.User) bool {
	if n := m.signIns[s.ID]; n > 0 {
		if n == 1 {
			delete(m.signIns, s.ID)
		} else {
			m.signIns[s.ID] = n - 1
		}
		return true
	}
	if gen, ok := m.resolving[s.ID]; ok && s.Status == StatusLoading && gen == s.Generation {
		return true
	}
	return s.Status == StatusAuthenticated && s.Identity == u.UID
}

// expectSignIn records a sign-in about to be started for id. The returned
// func withdraws it when the provider call fails.
func (m *Manager) expectSignIn(id string) (cancel func()) {
	m.mu.Lock()
	m.signIns[id]++
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if n := m.signIns[id]; n > 1 {
			m.signIns[id] = n - 1
		} else {
			delete(m.signIns, id)
		}
	}
}

// Open returns the session for id, creating a loading session when id is
// unknown. A session whose principal this process cannot vouch for is put
// back into loading and resumed from the provider.
func (m *Manager) Open(ctx context.Context, id string) (Session, error) {
	if m.isClosed() {
		return Session{}, ErrClosed
	}

	m.mu.Lock()
	s, err := m.load(ctx, id)
	var isNew bool
	switch {
	case errors.Is(err, ErrSessionNotFound):
		s, isNew = NewSession(m.now()), true
	case err != nil:
		m.mu.Unlock()
		return Session{}, err
	}

	var resume bool
	switch {
	case isNew:
		resume = true
	case s.Status == StatusLoading:
		_, inFlight := m.resolving[s.ID]
		resume = !inFlight
	case s.Status == StatusAuthenticated:
		_, known := m.provider.CurrentUser(s.ID)
		resume = !known
	}
	if !resume {
		m.mu.Unlock()
		return s, nil
	}

	refreshToken := s.RefreshToken
	s.clearIdentity()
	s.Generation++
	if err := s.transition(EventResume); err != nil {
		m.mu.Unlock()
		return Session{}, err
	}
	m.resolving[s.ID] = s.Generation
	s, err = m.save(ctx, s)
	m.mu.Unlock()
	if err != nil {
		return Session{}, err
	}

	id = s.ID
	m.goAsync(func(jobCtx context.Context) {
		if err := m.provider.Resume(jobCtx, id, refreshToken); err != nil {
			m.log.WarnContext(jobCtx, "session resume failed", logger.SessionID(id), logger.Error(err))
			m.signOut(jobCtx, id)
		}
	})
	return s, nil
}

// Login signs the browser in through the provider and waits, bounded by the
// sync timeout, for the resulting profile sync. Only provider failures are
// returned, as *identity.AuthError; the session is left untouched on error.
func (m *Manager) Login(ctx context.Context, id string, c Credentials) error {
	before, err := m.Snapshot(ctx, id)
	if err != nil {
		return err
	}
	withdraw := m.expectSignIn(id)
	if c.GoogleIDToken != "" {
		_, err = m.provider.SignInWithGoogle(ctx, id, c.GoogleIDToken)
	} else {
		_, err = m.provider.SignInWithPassword(ctx, id, c.Email, c.Password)
	}
	if err != nil {
		withdraw()
		return identity.AsAuthError(err)
	}
	m.awaitAfter(ctx, id, before.Generation)
	return nil
}

// Register creates an account, which signs the browser in.
func (m *Manager) Register(ctx context.Context, id string, reg identity.Registration) error {
	before, err := m.Snapshot(ctx, id)
	if err != nil {
		return err
	}
	withdraw := m.expectSignIn(id)
	if _, err := m.provider.SignUp(ctx, id, reg); err != nil {
		withdraw()
		return identity.AsAuthError(err)
	}
	m.awaitAfter(ctx, id, before.Generation)
	return nil
}

// ResetPassword asks the provider to send a password reset email.
func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	if err := m.provider.SendPasswordReset(ctx, email); err != nil {
		return identity.AsAuthError(err)
	}
	return nil
}

// Logout signs the browser out. The session is cleared even when the
// provider call fails; the failure is only logged. Sign-ins still in flight
// for the session are forgotten, so their events are rejected.
func (m *Manager) Logout(ctx context.Context, id string) Session {
	m.mu.Lock()
	delete(m.signIns, id)
	m.mu.Unlock()
	if err := m.provider.SignOut(ctx, id); err != nil {
		m.log.WarnContext(ctx, "provider sign-out failed", logger.SessionID(id), logger.Error(err))
	}
	return m.signOut(ctx, id)
}

// UpdateProfile applies p to the session immediately and persists it in
// the background. The snapshot returned has SyncPending set; it is cleared
// once both the provider and the backend accept the change. A failure is
// published as a Change with a *ProfileSyncError and the local edit is kept.
func (m *Manager) UpdateProfile(ctx context.Context, id string, p ProfilePatch) (Session, error) {
	s, err := m.mutate(ctx, id, func(s *Session) error {
		if !s.IsAuthenticated() {
			return ErrNotAuthenticated
		}
		if p.DisplayName != nil {
			s.DisplayName = *p.DisplayName
		}
		if p.AvatarURL != nil {
			s.AvatarURL = *p.AvatarURL
		}
		s.SyncPending = true
		s.ProfileRevision++
		return s.transition(EventProfileEdited)
	})
	if err != nil {
		return Session{}, err
	}

	m.goAsync(func(jobCtx context.Context) {
		m.persistProfile(jobCtx, s, p)
	})
	return s, nil
}

// Refresh re-runs the profile sync for the signed-in principal and returns
// the resulting snapshot.
func (m *Manager) Refresh(ctx context.Context, id string) (Session, error) {
	u, ok := m.provider.CurrentUser(id)
	if !ok {
		return Session{}, ErrNotAuthenticated
	}
	s, err := m.mutate(ctx, id, func(s *Session) error {
		if !s.IsAuthenticated() || s.Identity != u.UID {
			return ErrNotAuthenticated
		}
		s.Generation++
		return s.transition(EventSignedIn)
	})
	if err != nil {
		return Session{}, err
	}
	return m.syncProfile(ctx, id, s.Generation, u), nil
}

// Snapshot returns the stored session.
func (m *Manager) Snapshot(ctx context.Context, id string) (Session, error) {
	return m.load(ctx, id)
}

// Await blocks until the session leaves loading or ctx is done, and returns
// the latest snapshot either way.
func (m *Manager) Await(ctx context.Context, id string) (Session, error) {
	return m.waitFor(ctx, id, func(s Session) bool { return !s.IsLoading() })
}

// Subscribe streams session changes. The subscription is lossy: a
// subscriber that falls behind is dropped and its channel closed.
func (m *Manager) Subscribe(ctx context.Context) broadcast.Subscriber[Change] {
	return m.changes.Subscribe(ctx)
}

// SubscribeSession streams the changes of one session. Changes to other
// sessions are never buffered for it, so traffic elsewhere cannot drop it.
func (m *Manager) SubscribeSession(ctx context.Context, id string) broadcast.Subscriber[Change] {
	return m.changes.Subscribe(ctx, broadcast.Filter(func(c Change) bool { return c.Session.ID == id }))
}

// Close stops background jobs and ends every subscription.
func (m *Manager) Close() error {
	m.lifeMu.Lock()
	if m.closed {
		m.lifeMu.Unlock()
		return nil
	}
	m.closed = true
	m.lifeMu.Unlock()

	m.cancel()
	m.jobs.Wait()
	err := m.changes.Close()
	if ms, ok := m.store.(*MemoryStore); ok && m.ownsStore {
		err = errors.Join(err, ms.Close())
	}
	return err
}

func (m *Manager) signOut(ctx context.Context, id string) Session {
	s, err := m.mutate(ctx, id, func(s *Session) error {
		s.clearIdentity()
		s.Generation++
		return s.transition(EventSignedOut)
	})
	if err != nil {
		m.logDropped(ctx, id, EventSignedOut, err)
		return Session{ID: id, Status: StatusAnonymous}
	}
	return s
}

// mutate loads id, applies fn and stores the result. fn works on a copy;
// nothing is stored when it fails.
func (m *Manager) mutate(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if err := fn(&s); err != nil {
		return Session{}, err
	}
	return m.save(ctx, s)
}

func (m *Manager) load(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrSessionNotFound
	}
	return m.store.Get(ctx, id)
}

// save validates and stores s, then wakes waiters and publishes it.
// Callers hold mu.
func (m *Manager) save(ctx context.Context, s Session) (Session, error) {
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	s.UpdatedAt = m.now()
	if err := m.store.Save(ctx, s, m.ttl(s)); err != nil {
		return Session{}, err
	}
	if s.Status != StatusLoading {
		delete(m.resolving, s.ID)
	}

	close(m.notify)
	m.notify = make(chan struct{})
	_ = m.changes.Broadcast(context.Background(), Change{Session: s})

	m.log.DebugContext(ctx, "session stored",
		logger.SessionID(s.ID),
		logger.Status(string(s.Status)),
		logger.Generation(s.Generation),
	)
	return s, nil
}

func (m *Manager) ttl(s Session) time.Duration {
	if s.Status != StatusAuthenticated && m.cfg.AnonymousTTL > 0 {
		return m.cfg.AnonymousTTL
	}
	return m.cfg.TTL
}

// waitFor polls the store on every save until cond holds.
func (m *Manager) waitFor(ctx context.Context, id string, cond func(Session) bool) (Session, error) {
	for {
		m.mu.Lock()
		wake := m.notify
		m.mu.Unlock()

		s, err := m.load(ctx, id)
		if err != nil {
			return Session{}, err
		}
		if cond(s) {
			return s, nil
		}
		select {
		case <-wake:
		case <-ctx.Done():
			return s, ctx.Err()
		case <-m.ctx.Done():
			return s, ErrClosed
		}
	}
}

// awaitAfter waits until a transition newer than gen has resolved.
func (m *Manager) awaitAfter(ctx context.Context, id string, gen uint64) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.SyncTimeout)
	defer cancel()
	_, _ = m.waitFor(ctx, id, func(s Session) bool {
		return s.Generation > gen && !s.IsLoading()
	})
}

// goAsync runs fn on a tracked goroutine bound to the manager lifetime.
func (m *Manager) goAsync(fn func(ctx context.Context)) {
	m.lifeMu.RLock()
	defer m.lifeMu.RUnlock()
	if m.closed {
		return
	}
	m.jobs.Add(1)
	go func() {
		defer m.jobs.Done()
		ctx, cancel := context.WithTimeout(m.ctx, m.cfg.SyncTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (m *Manager) isClosed() bool {
	m.lifeMu.RLock()
	defer m.lifeMu.RUnlock()
	return m.closed
}

func (m *Manager) logDropped(ctx context.Context, id string, ev Event, err error) {
	level := slog.LevelWarn
	if errors.Is(err, ErrSessionNotFound) {
		level = slog.LevelDebug
	}
	m.log.Log(ctx, level, "session event dropped",
		logger.SessionID(id),
		logger.Event(string(ev)),
		logger.Error(err),
	)
}

func (s *Session) transition(e Event) error {
	to, err := NextStatus(s.Status, e)
	if err != nil {
		return err
	}
	s.Status = to
	return nil
}
