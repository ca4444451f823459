package theme

import (
	"context"
	"net/http"
)

type contextKey struct{}

// WithContext returns a copy of ctx carrying p.
func WithContext(ctx context.Context, p Preference) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the preference for the request, Default when unset.
func FromContext(ctx context.Context) Preference {
	if p, ok := ctx.Value(contextKey{}).(Preference); ok {
		return p
	}
	return Default
}

// Middleware loads the preference into the request context.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), s.Get(r))))
	})
}
