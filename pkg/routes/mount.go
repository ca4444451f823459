package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ErrMissingHandler is returned by Mount when a route has no page handler.
var ErrMissingHandler = errors.New("routes.missing_handler")

// Pages maps route names to the handlers that render them.
type Pages map[string]http.Handler

// Wrapper decorates a page handler with knowledge of its route, typically the
// guard middleware.
type Wrapper func(Route, http.Handler) http.Handler

// Mount registers GET handlers for every route of the table plus the
// catch-all on r. Every route must have a page.
func Mount(r chi.Router, pages Pages, wrap Wrapper) error {
	if wrap == nil {
		wrap = func(_ Route, h http.Handler) http.Handler { return h }
	}

	var missing []error
	for _, rt := range table {
		h, ok := pages[rt.Name]
		if !ok {
			missing = append(missing, fmt.Errorf("%w: %s", ErrMissingHandler, rt.Name))
			continue
		}
		r.Method(http.MethodGet, rt.Pattern, wrap(rt, h))
	}
	if len(missing) > 0 {
		return errors.Join(missing...)
	}

	notFound, ok := pages[NotFound]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingHandler, NotFound)
	}
	r.NotFound(wrap(CatchAll, notFound).ServeHTTP)
	return nil
}
