package theme

import (
	"log/slog"
	"net/http"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/cookie"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
)

// CookieName is the fixed cookie key of the preference.
const CookieName = "theme"

// MaxAge keeps the preference for a year.
const MaxAge = 365 * 24 * 60 * 60

// Persister writes the preference to durable storage.
type Persister interface {
	Save(w http.ResponseWriter, p Preference) error
}

// Store reads and writes the preference.
type Store struct {
	cookies   *cookie.Manager
	persister Persister
	log       *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPersister replaces the cookie writer.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		if p != nil {
			s.persister = p
		}
	}
}

// NewStore creates a Store backed by cookies.
func NewStore(cookies *cookie.Manager, opts ...Option) *Store {
	s := &Store{cookies: cookies, log: slog.Default()}
	s.persister = cookiePersister{cookies: cookies}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("theme"))
	return s
}

// Get returns the stored preference, Default when none is stored.
func (s *Store) Get(r *http.Request) Preference {
	v, err := s.cookies.Get(r, CookieName)
	if err != nil {
		return Default
	}
	return Parse(v)
}

// Toggle flips the current preference and persists it. A failed write is
// logged; the flipped value is returned and rendered either way.
func (s *Store) Toggle(w http.ResponseWriter, r *http.Request) Preference {
	next := Toggle(s.Get(r))
	if err := s.persister.Save(w, next); err != nil {
		s.log.WarnContext(r.Context(), "failed to persist theme",
			logger.Error(err),
			slog.String("theme", next.String()),
		)
	}
	return next
}

type cookiePersister struct {
	cookies *cookie.Manager
}

func (c cookiePersister) Save(w http.ResponseWriter, p Preference) error {
	c.cookies.Set(w, CookieName, p.String(),
		cookie.WithMaxAge(MaxAge),
		cookie.WithHTTPOnly(false),
		cookie.WithSameSite(http.SameSiteLaxMode),
	)
	return nil
}
