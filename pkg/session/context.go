package session

import (
	"context"
	"log/slog"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
)

type sessionContextKey struct{}

// WithSession returns a copy of ctx carrying the snapshot s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext returns the snapshot stored by the middleware.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(Session)
	return s, ok
}

// MustFromContext is FromContext for handlers mounted behind the middleware.
func MustFromContext(ctx context.Context) Session {
	s, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return s
}

// LoggerExtractor adds the session ID to log records.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if s, ok := FromContext(ctx); ok && s.ID != "" {
			return logger.SessionID(s.ID), true
		}
		return slog.Attr{}, false
	}
}
