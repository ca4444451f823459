package account

import (
	"fmt"
	"strings"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/cookie"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/guard"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/identity"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

const (
	stateCookie = "oauth_state"
	stateMaxAge = 10 * 60
)

type googleStartRequest struct {
	From string `form:"from"`
}

type googleCallbackRequest struct {
	State string `form:"state"`
	Code  string `form:"code"`
	Error string `form:"error"`
}

func (s *Service) googleStart(ctx handler.Context, q googleStartRequest) handler.Response {
	state, err := identity.NewState()
	if err != nil {
		return handler.Error(fmt.Errorf("account: oauth state: %w", err))
	}
	from := handler.LocalPath(q.From, "")
	s.cookies.SetSigned(ctx.ResponseWriter(), stateCookie, state+"|"+from, cookie.WithMaxAge(stateMaxAge))
	return handler.Redirect(s.google.AuthURL(state))
}

// googleCallback finishes the consent round trip. Failures land back on the
// login page with the reason in a flash toast.
func (s *Service) googleCallback(ctx handler.Context, q googleCallbackRequest) handler.Response {
	w, r := ctx.ResponseWriter(), ctx.Request()

	raw, err := s.cookies.GetSigned(r, stateCookie)
	s.cookies.Delete(w, stateCookie)
	state, from, _ := strings.Cut(raw, "|")
	if err != nil || state == "" || state != q.State {
		return s.googleFailed(ctx, from, fmt.Errorf("%w: %v", identity.ErrInvalidState, err))
	}

	token, err := s.google.Exchange(ctx, q.Code, q.Error)
	if err != nil {
		return s.googleFailed(ctx, from, err)
	}
	id, err := sessionID(ctx)
	if err != nil {
		return s.googleFailed(ctx, from, err)
	}
	if err := s.sessions.Login(ctx, id, session.Credentials{GoogleIDToken: token}); err != nil {
		return s.googleFailed(ctx, from, err)
	}
	s.log.InfoContext(ctx, "signed in with google")
	return handler.Redirect(handler.LocalPath(from, routes.HomePath))
}

func (s *Service) googleFailed(ctx handler.Context, from string, err error) handler.Response {
	ae := identity.AsAuthError(err)
	s.log.WarnContext(ctx, "google sign-in failed", logger.Error(err))
	s.setFlash(ctx.ResponseWriter(), ctx.Request(), views.ToastError, ae.UserMessage())
	return handler.Redirect(guard.LoginURL(handler.LocalPath(from, "")))
}
