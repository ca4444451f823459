// Package identity is the client for the external identity provider
// (Firebase Authentication over its REST API).
//
// Auth keeps one signed-in principal per session key and publishes an
// auth-state stream: a StateChange is emitted whenever a key signs in, signs
// out, or is resumed. Profile updates and token refreshes do not emit.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/broadcast"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
)

// User is a signed-in principal as the provider reports it.
type User struct {
	UID          string
	Email        string
	DisplayName  string
	PhotoURL     string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// StateChange is one auth-state event. User is nil for a signed-out key.
type StateChange struct {
	Key  string
	User *User
}

// SignedIn reports whether the event carries a principal.
func (c StateChange) SignedIn() bool { return c.User != nil }

// Registration is the input of SignUp.
type Registration struct {
	Name     string
	Email    string
	Password string
	PhotoURL string
}

// ProfileUpdate carries the fields to change; nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
}

// Auth is the identity provider client.
type Auth struct {
	fb     *firebase
	leeway time.Duration
	log    *slog.Logger
	now    func() time.Time
	stream *broadcast.Memory[StateChange]

	mu    sync.RWMutex
	users map[string]User
}

type Option func(*Auth)

func WithLogger(l *slog.Logger) Option {
	return func(a *Auth) {
		if l != nil {
			a.log = l
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(a *Auth) {
		if c != nil {
			a.fb.client = c
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an Auth client.
func New(cfg Config, opts ...Option) (*Auth, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("identity: api key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	a := &Auth{
		fb:     &firebase{cfg: cfg, client: &http.Client{Timeout: timeout}},
		leeway: cfg.RefreshLeeway,
		log:    logger.Discard(),
		now:    time.Now,
		stream: broadcast.NewMemory[StateChange](64),
		users:  make(map[string]User),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Subscribe returns the auth-state stream. Delivery is ordered and lossless;
// the subscription ends when ctx is done or the subscriber is closed.
func (a *Auth) Subscribe(ctx context.Context) broadcast.Subscriber[StateChange] {
	return a.stream.Subscribe(ctx, broadcast.Reliable())
}

// SignInWithPassword signs key in with email and password.
func (a *Auth) SignInWithPassword(ctx context.Context, key, email, password string) (User, error) {
	resp, err := a.fb.signInWithPassword(ctx, email, password)
	if err != nil {
		return User{}, AsAuthError(err)
	}
	u := a.userFrom(resp)
	if lk, err := a.fb.lookup(ctx, u.IDToken); err == nil && len(lk.Users) > 0 {
		u.PhotoURL = lk.Users[0].PhotoURL
		if u.DisplayName == "" {
			u.DisplayName = lk.Users[0].DisplayName
		}
	}
	return u, a.signIn(ctx, key, u)
}

// SignInWithGoogle exchanges a Google id_token for a provider session.
func (a *Auth) SignInWithGoogle(ctx context.Context, key, googleIDToken string) (User, error) {
	resp, err := a.fb.signInWithIdp(ctx, googleIDToken)
	if err != nil {
		return User{}, AsAuthError(err)
	}
	u := a.userFrom(resp)
	return u, a.signIn(ctx, key, u)
}

// SignUp creates an account, sets its display name and photo, and signs key
// in.
func (a *Auth) SignUp(ctx context.Context, key string, reg Registration) (User, error) {
	resp, err := a.fb.signUp(ctx, reg.Email, reg.Password)
	if err != nil {
		return User{}, AsAuthError(err)
	}
	u := a.userFrom(resp)

	upd, err := a.fb.update(ctx, u.IDToken, ProfileUpdate{DisplayName: &reg.Name, PhotoURL: &reg.PhotoURL})
	if err != nil {
		// The account exists; a missing display name is not worth failing
		// the registration for.
		a.log.WarnContext(ctx, "set profile after sign up failed", logger.Identity(u.UID), logger.Error(err))
	} else {
		a.applyTokens(&u, upd)
		u.DisplayName = reg.Name
		u.PhotoURL = reg.PhotoURL
	}
	return u, a.signIn(ctx, key, u)
}

// SendPasswordReset asks the provider to mail a reset link.
func (a *Auth) SendPasswordReset(ctx context.Context, email string) error {
	if err := a.fb.sendPasswordReset(ctx, email); err != nil {
		return AsAuthError(err)
	}
	return nil
}

// SignOut drops the principal for key and emits a signed-out event. The
// principal is dropped even when the event cannot be published.
func (a *Auth) SignOut(ctx context.Context, key string) error {
	a.mu.Lock()
	delete(a.users, key)
	a.mu.Unlock()
	return a.stream.Broadcast(ctx, StateChange{Key: key})
}

// CurrentUser returns the principal signed in under key.
func (a *Auth) CurrentUser(key string) (User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	u, ok := a.users[key]
	return u, ok
}

// IDToken returns a valid ID token for key, refreshing it when it expires
// within the configured leeway or when force is set.
func (a *Auth) IDToken(ctx context.Context, key string, force bool) (string, error) {
	u, ok := a.CurrentUser(key)
	if !ok {
		return "", ErrNoUser
	}
	if !force && a.now().Add(a.leeway).Before(u.ExpiresAt) {
		return u.IDToken, nil
	}

	resp, err := a.fb.refresh(ctx, u.RefreshToken)
	if err != nil {
		return "", AsAuthError(err)
	}
	u.IDToken = resp.IDToken
	if resp.RefreshToken != "" {
		u.RefreshToken = resp.RefreshToken
	}
	u.ExpiresAt = tokenExpiry(resp.IDToken, resp.ExpiresIn, a.now())

	a.mu.Lock()
	if _, still := a.users[key]; still {
		a.users[key] = u
	}
	a.mu.Unlock()
	return u.IDToken, nil
}

// UpdateProfile changes the display name and photo of the principal.
func (a *Auth) UpdateProfile(ctx context.Context, key string, p ProfileUpdate) (User, error) {
	token, err := a.IDToken(ctx, key, false)
	if err != nil {
		return User{}, err
	}
	resp, err := a.fb.update(ctx, token, p)
	if err != nil {
		return User{}, AsAuthError(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[key]
	if !ok {
		return User{}, ErrNoUser
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.PhotoURL != nil {
		u.PhotoURL = *p.PhotoURL
	}
	a.applyTokens(&u, resp)
	a.users[key] = u
	return u, nil
}

// Resume re-emits the current state of key. A key without a principal is
// restored from refreshToken when one is given; otherwise, or when the
// refresh is rejected, a signed-out event is emitted.
func (a *Auth) Resume(ctx context.Context, key, refreshToken string) error {
	if u, ok := a.CurrentUser(key); ok {
		return a.stream.Broadcast(ctx, StateChange{Key: key, User: &u})
	}
	if refreshToken == "" {
		return a.stream.Broadcast(ctx, StateChange{Key: key})
	}

	u, err := a.restore(ctx, refreshToken)
	if err != nil {
		a.log.WarnContext(ctx, "resume from refresh token failed", logger.SessionID(key), logger.Error(err))
		return a.stream.Broadcast(ctx, StateChange{Key: key})
	}
	return a.signIn(ctx, key, u)
}

// Close ends the auth-state stream.
func (a *Auth) Close() error {
	return a.stream.Close()
}

func (a *Auth) restore(ctx context.Context, refreshToken string) (User, error) {
	resp, err := a.fb.refresh(ctx, refreshToken)
	if err != nil {
		return User{}, err
	}
	lk, err := a.fb.lookup(ctx, resp.IDToken)
	if err != nil {
		return User{}, err
	}
	if len(lk.Users) == 0 || lk.Users[0].Disabled {
		return User{}, errorFromCode("USER_DISABLED")
	}
	info := lk.Users[0]
	u := User{
		UID:          info.LocalID,
		Email:        info.Email,
		DisplayName:  info.DisplayName,
		PhotoURL:     info.PhotoURL,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    tokenExpiry(resp.IDToken, resp.ExpiresIn, a.now()),
	}
	if u.RefreshToken == "" {
		u.RefreshToken = refreshToken
	}
	return u, nil
}

func (a *Auth) signIn(ctx context.Context, key string, u User) error {
	a.mu.Lock()
	a.users[key] = u
	a.mu.Unlock()
	return a.stream.Broadcast(ctx, StateChange{Key: key, User: &u})
}

func (a *Auth) userFrom(r tokenResponse) User {
	return User{
		UID:          r.LocalID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		PhotoURL:     r.PhotoURL,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    tokenExpiry(r.IDToken, r.ExpiresIn, a.now()),
	}
}

func (a *Auth) applyTokens(u *User, r tokenResponse) {
	if r.IDToken == "" {
		return
	}
	u.IDToken = r.IDToken
	if r.RefreshToken != "" {
		u.RefreshToken = r.RefreshToken
	}
	u.ExpiresAt = tokenExpiry(r.IDToken, r.ExpiresIn, a.now())
}
