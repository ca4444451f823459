// Package account serves the sign-in, registration and password reset
// pages and their form posts.
package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/binder"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/cookie"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/identity"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

// Sessions is the part of session.Manager the account pages drive.
type Sessions interface {
	Login(ctx context.Context, id string, c session.Credentials) error
	Register(ctx context.Context, id string, reg identity.Registration) error
	ResetPassword(ctx context.Context, email string) error
	Logout(ctx context.Context, id string) session.Session
}

// GoogleFlow runs the Google consent screen round trip.
type GoogleFlow interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code, callbackErr string) (string, error)
}

// Views renders the account pages. Zero fields fall back to package views.
type Views struct {
	LoginPage          func(views.LoginParams) templ.Component
	RegisterPage       func(views.RegisterParams) templ.Component
	ForgetPasswordPage func(views.ForgetPasswordParams) templ.Component
	ForgetPasswordForm func(views.ForgetPasswordParams) templ.Component
}

func (v *Views) defaults() {
	if v.LoginPage == nil {
		v.LoginPage = views.LoginPage
	}
	if v.RegisterPage == nil {
		v.RegisterPage = views.RegisterPage
	}
	if v.ForgetPasswordPage == nil {
		v.ForgetPasswordPage = views.ForgetPasswordPage
	}
	if v.ForgetPasswordForm == nil {
		v.ForgetPasswordForm = views.ForgetPasswordForm
	}
}

// Service owns the account routes.
type Service struct {
	sessions     Sessions
	cookies      *cookie.Manager
	google       GoogleFlow
	limit        func(http.Handler) http.Handler
	views        Views
	errorHandler handler.ErrorHandler[handler.Context]
	log          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithGoogle enables Google sign-in.
func WithGoogle(g GoogleFlow) Option {
	return func(s *Service) { s.google = g }
}

// WithRateLimit wraps the credential posts, typically with
// ratelimiter.Middleware.
func WithRateLimit(mw func(http.Handler) http.Handler) Option {
	return func(s *Service) { s.limit = mw }
}

// WithViews overrides the page components.
func WithViews(v Views) Option {
	return func(s *Service) { s.views = v }
}

// WithErrorHandler sets the error handler of every route.
func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(s *Service) {
		if h != nil {
			s.errorHandler = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates the account service. cookies holds the OAuth state
// and the flash messages shown after a failed Google round trip.
func NewService(sessions Sessions, cookies *cookie.Manager, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		cookies:  cookies,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.views.defaults()
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.log, handler.ErrorHandlerConfig{
			ErrorPage:  views.ErrorPage,
			ErrorToast: views.ErrorToast,
		})
	}
	if s.limit == nil {
		s.limit = func(next http.Handler) http.Handler { return next }
	}
	s.log = s.log.With(logger.Component("account"))
	return s
}

// Pages returns the GET handlers of the account routes for routes.Mount.
func (s *Service) Pages() routes.Pages {
	return routes.Pages{
		routes.Login:          wrap(s, s.loginPage),
		routes.Register:       wrap(s, s.registerPage),
		routes.ForgetPassword: wrap(s, s.forgetPasswordPage),
	}
}

// Routes registers the form posts and the Google round trip on r.
func (s *Service) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(s.limit)
		r.Post(routes.LoginPath, wrap(s, s.login))
		r.Post(routes.RegisterPath, wrap(s, s.register))
		r.Post(routes.ForgetPasswordPath, wrap(s, s.forgetPassword))
	})
	r.Post(LogoutPath, handler.Wrap(s.logout,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	if s.google != nil {
		r.Get(GooglePath, wrap(s, s.googleStart))
		r.Get(GoogleCallbackPath, wrap(s, s.googleCallback))
	}
}

func wrap[R any](s *Service, h handler.HandlerFunc[handler.Context, R]) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binder.Form()),
		handler.WithErrorHandler[handler.Context, R](s.errorHandler),
	)
}

// sessionID returns the browser session the request belongs to.
func sessionID(ctx context.Context) (string, error) {
	sess, ok := session.FromContext(ctx)
	if !ok || sess.ID == "" {
		return "", handler.ErrUnauthorized
	}
	return sess.ID, nil
}

// page renders body inside the shell of the named route.
func page(r *http.Request, name, title string, body templ.Component) templ.Component {
	return views.Render(views.NewPage(r, routes.MustLookup(name), title), body)
}
