// Package pages serves the content pages of the route table, the lesson
// and admin forms, the theme toggle, the profile form and the live session
// stream.
package pages

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/binder"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/broadcast"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/theme"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

// Paths outside the route table.
const (
	ThemeTogglePath = "/theme/toggle"
)

// Sessions is the part of session.Manager the pages read and edit.
type Sessions interface {
	Snapshot(ctx context.Context, id string) (session.Session, error)
	SubscribeSession(ctx context.Context, id string) broadcast.Subscriber[session.Change]
	UpdateProfile(ctx context.Context, id string, p session.ProfilePatch) (session.Session, error)
}

// Service owns the content pages.
type Service struct {
	sessions     Sessions
	content      Content
	themes       *theme.Store
	errorHandler handler.ErrorHandler[handler.Context]
	log          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

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

func NewService(sessions Sessions, content Content, themes *theme.Store, opts ...Option) *Service {
	s := &Service{sessions: sessions, content: content, themes: themes, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.log, handler.ErrorHandlerConfig{
			ErrorPage:  views.ErrorPage,
			ErrorToast: views.ErrorToast,
		})
	}
	s.log = s.log.With(logger.Component("pages"))
	return s
}

// Pages returns the GET handlers for routes.Mount.
func (s *Service) Pages() routes.Pages {
	static := func(name, title string, body func(session.Session) templ.Component) http.Handler {
		return handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
			r := ctx.Request()
			sess, _ := session.FromContext(r.Context())
			return handler.Templ(views.Render(views.NewPage(r, routes.MustLookup(name), title), body(sess)))
		}, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler))
	}
	plain := func(c func() templ.Component) func(session.Session) templ.Component {
		return func(session.Session) templ.Component { return c() }
	}

	fetch := func(h handler.HandlerFunc[handler.Context, struct{}]) http.Handler {
		return handler.Wrap(h, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler))
	}

	return routes.Pages{
		routes.Home: fetch(s.home),
		routes.Lessons: handler.Wrap(s.publicLessons,
			handler.WithBinders[handler.Context, lessonsQuery](binder.Form()),
			handler.WithErrorHandler[handler.Context, lessonsQuery](s.errorHandler),
		),
		routes.LessonDetails: handler.Wrap(s.lessonDetails,
			handler.WithBinders[handler.Context, lessonRequest](binder.Path()),
			handler.WithErrorHandler[handler.Context, lessonRequest](s.errorHandler),
		),
		routes.Terms:           static(routes.Terms, "Terms & Conditions", plain(views.Terms)),
		routes.Privacy:         static(routes.Privacy, "Privacy Policy", plain(views.Privacy)),
		routes.Dashboard:       static(routes.Dashboard, "Dashboard", views.UserOverview),
		routes.AddLesson:       fetch(s.addLessonPage),
		routes.MyLessons:       fetch(s.myLessons),
		routes.Profile:         static(routes.Profile, "My Profile", func(sess session.Session) templ.Component { return views.ProfilePage(views.ProfileParams{Session: sess}) }),
		routes.AdminHome:       static(routes.AdminHome, "Admin", views.AdminOverview),
		routes.ManageUsers:     fetch(s.manageUsers),
		routes.ManageLessons:   fetch(s.manageLessons),
		routes.ReportedLessons: static(routes.ReportedLessons, "Reported Lessons", plain(views.ReportedLessons)),
		routes.NotFound:        http.HandlerFunc(s.notFound),
	}
}

// page renders body as the route's full page.
func (s *Service) page(ctx handler.Context, name, title string, body templ.Component) handler.Response {
	return handler.Templ(views.Render(views.NewPage(ctx.Request(), routes.MustLookup(name), title), body))
}

// Pending renders the loading view used by the guard while a session
// resolves. The page reloads itself once the session settles.
func (s *Service) Pending() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := views.NewPage(r, routes.MustLookup(routes.Home), "Loading")
		p.Pending = true
		if err := handler.Templ(views.Render(p, views.Pending())).Render(w, r); err != nil {
			s.log.WarnContext(r.Context(), "failed to render pending view", logger.Error(err))
		}
	})
}

// Routes registers the form endpoints and the session stream on r.
func (s *Service) Routes(r chi.Router) {
	r.Post(ThemeTogglePath, handler.Wrap(s.toggleTheme,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post(routes.ProfilePath, handler.Wrap(s.updateProfile,
		handler.WithBinders[handler.Context, profileForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, profileForm](s.errorHandler),
	))
	r.Post(routes.AddLessonPath, handler.Wrap(s.addLesson,
		handler.WithBinders[handler.Context, lessonForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, lessonForm](s.errorHandler),
	))
	r.Post(views.MyLessonDeletePath, handler.Wrap(s.deleteMyLesson,
		handler.WithBinders[handler.Context, lessonIDForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, lessonIDForm](s.errorHandler),
	))
	r.Post(views.AccountRolePath, handler.Wrap(s.setRole,
		handler.WithBinders[handler.Context, roleForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, roleForm](s.errorHandler),
	))
	r.Post(views.AccountDeletePath, handler.Wrap(s.deleteAccount,
		handler.WithBinders[handler.Context, accountForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, accountForm](s.errorHandler),
	))
	r.Post(views.LessonAccessPath, handler.Wrap(s.setLessonAccess,
		handler.WithBinders[handler.Context, accessForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, accessForm](s.errorHandler),
	))
	r.Post(views.LessonDeletePath, handler.Wrap(s.deleteLesson,
		handler.WithBinders[handler.Context, lessonIDForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, lessonIDForm](s.errorHandler),
	))
	r.Get(views.SessionEventsPath, handler.Wrap(s.sessionEvents,
		handler.WithBinders[handler.Context, eventsQuery](binder.Form()),
		handler.WithErrorHandler[handler.Context, eventsQuery](s.errorHandler),
	))
}

func (s *Service) notFound(w http.ResponseWriter, r *http.Request) {
	page := views.NewPage(r, routes.CatchAll, "Not found")
	if err := handler.TemplStatus(http.StatusNotFound, views.Render(page, views.NotFound())).Render(w, r); err != nil {
		s.log.WarnContext(r.Context(), "failed to render not found page", logger.Error(err))
	}
}
