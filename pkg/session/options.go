package session

import (
	"log/slog"
	"time"
)

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the session store. The default is an in-memory store.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithConfig replaces the configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

// WithBackend sets the profile backend. Without one every sign-in resolves
// to the fallback profile.
func WithBackend(b ProfileBackend) Option {
	return func(m *Manager) {
		m.backend = b
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithTransport sets how the session ID travels. Required by Middleware.
func WithTransport(t Transport) Option {
	return func(m *Manager) {
		m.transport = t
	}
}
