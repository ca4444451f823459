package session

import "time"

// Config holds session configuration.
type Config struct {
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// TTL is the sliding lifetime of a stored session and its cookie.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// AnonymousTTL is the stored lifetime of a session nobody is signed in
	// to, so cookieless clients do not pile up month-long entries. Zero
	// uses TTL.
	AnonymousTTL time.Duration `env:"SESSION_ANONYMOUS_TTL" envDefault:"1h"`

	// ResolveTimeout bounds how long a request waits for a loading session
	// before the page renders its pending state.
	ResolveTimeout time.Duration `env:"SESSION_RESOLVE_TIMEOUT" envDefault:"1500ms"`

	// SyncTimeout bounds one profile sync or profile persist job.
	SyncTimeout time.Duration `env:"SESSION_SYNC_TIMEOUT" envDefault:"10s"`

	// CleanupInterval for the memory store (0 disables the sweep).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	// Store selects the backing store: "memory" or "redis".
	Store string `env:"SESSION_STORE" envDefault:"memory"`

	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:      "sid",
		TTL:             30 * 24 * time.Hour,
		AnonymousTTL:    time.Hour,
		ResolveTimeout:  1500 * time.Millisecond,
		SyncTimeout:     10 * time.Second,
		CleanupInterval: 5 * time.Minute,
		Store:           "memory",
	}
}
