package session

import (
	"context"
	"net/http"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
)

// Middleware opens the browser session and stores its snapshot in the
// request context. A loading session is given up to Config.ResolveTimeout
// to resolve; after that the request proceeds with the loading snapshot.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	if m.transport == nil {
		panic("session: transport is required for Middleware")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, _ := m.transport.ID(r)

		s, err := m.Open(ctx, id)
		if err != nil {
			m.log.ErrorContext(ctx, "open session", logger.Error(err))
			s = Session{Status: StatusAnonymous}
		} else if s.ID != id {
			if err := m.transport.Set(w, s.ID); err != nil {
				m.log.ErrorContext(ctx, "set session cookie", logger.SessionID(s.ID), logger.Error(err))
			}
		}

		if s.IsLoading() && m.cfg.ResolveTimeout > 0 {
			wctx, cancel := context.WithTimeout(ctx, m.cfg.ResolveTimeout)
			if latest, err := m.Await(wctx, s.ID); err == nil || latest.ID != "" {
				s = latest
			}
			cancel()
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, s)))
	})
}

// Transport returns the configured transport, or nil.
func (m *Manager) Transport() Transport { return m.transport }
