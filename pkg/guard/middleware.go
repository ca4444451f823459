package guard

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

// Guard applies Decide to requests.
type Guard struct {
	pending   http.Handler
	forbidden handler.ErrorHandler[handler.Context]
	log       *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithPending sets the handler rendering the loading view.
func WithPending(h http.Handler) Option {
	return func(g *Guard) {
		if h != nil {
			g.pending = h
		}
	}
}

// WithErrorHandler sets the handler that renders refused routes.
func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(g *Guard) {
		if h != nil {
			g.forbidden = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// New creates a Guard.
func New(opts ...Option) *Guard {
	g := &Guard{
		pending: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, "Loading...")
		}),
		forbidden: func(ctx handler.Context, _ error) {
			http.Error(ctx.ResponseWriter(), http.StatusText(http.StatusForbidden), http.StatusForbidden)
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("guard"))
	return g
}

// Wrap guards next as route. The session snapshot must already be in the
// request context. It matches routes.Wrapper.
func (g *Guard) Wrap(route routes.Route, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := session.FromContext(r.Context())
		if s.Status == "" {
			s.Status = session.StatusAnonymous
		}

		d := Decide(route, r.URL.RequestURI(), s)
		switch d.Outcome {
		case Pending:
			w.Header().Set("Cache-Control", "no-store")
			g.pending.ServeHTTP(w, r)
		case Redirect:
			g.log.DebugContext(r.Context(), "route guard redirect",
				slog.String("route", route.Name),
				logger.Status(string(s.Status)),
				slog.String("target", d.Target),
			)
			if err := handler.DataStarRedirect(w, r, d.Target); err != nil {
				g.log.WarnContext(r.Context(), "failed to send redirect", logger.Error(err))
			}
		case Forbidden:
			g.log.WarnContext(r.Context(), "route guard refused",
				slog.String("route", route.Name),
				logger.Status(string(s.Status)),
			)
			g.forbidden(handler.NewContext(w, r), handler.ErrForbidden)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
