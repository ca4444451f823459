// Package handler is the typed HTTP layer of the web front.
//
// Handlers are plain functions from a bound request value to a Response:
//
//	type loginForm struct {
//		Email    string `form:"email"`
//		Password string `form:"password"`
//	}
//
//	r.Post("/login", handler.Wrap(loginHandler,
//		handler.WithBinders[handler.Context, loginForm](binder.Form()),
//		handler.WithErrorHandler[handler.Context, loginForm](errs),
//	))
//
// Every response adapts to the caller. A datastar request (Accept:
// text/event-stream) receives element patches, signal patches and redirects
// over server-sent events; a regular request receives HTML or a 303.
//
// Errors returned by a handler go through the ErrorHandler. The one built by
// NewErrorHandler renders a full error page for page loads and a toast patch
// for datastar requests. Only UserError messages and HTTPError keys are
// shown; any other error is logged and replaced by a generic message.
package handler
