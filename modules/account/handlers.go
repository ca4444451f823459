package account

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/cookie"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/identity"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/sanitizer"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/validator"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

// Paths outside the route table.
const (
	LogoutPath         = "/logout"
	GooglePath         = "/auth/google"
	GoogleCallbackPath = "/auth/google/callback"
)

const flashKey = "account"

var errWeakPassword = validator.ValidationErrors{{
	Field:   "password",
	Tag:     "password",
	Message: "Password doesn't meet all requirements!",
}}

type pageQuery struct {
	From  string `form:"from"`
	Email string `form:"email"`
}

type loginForm struct {
	Email    string `form:"email" validate:"required" msg:"Email & Password required!"`
	Password string `form:"password" validate:"required" msg:"Email & Password required!"`
	From     string `form:"from"`
}

type registerForm struct {
	Name     string `form:"name" validate:"required" msg:"All fields are required!"`
	Email    string `form:"email" validate:"required" msg:"All fields are required!"`
	PhotoURL string `form:"photo_url" validate:"required" msg:"All fields are required!"`
	Password string `form:"password" validate:"required" msg:"All fields are required!"`
	From     string `form:"from"`
}

type forgetPasswordForm struct {
	Email string `form:"email" validate:"required" msg:"Please enter your email"`
}

// flash is a message carried across a redirect.
type flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Service) loginPage(ctx handler.Context, q pageQuery) handler.Response {
	r := ctx.Request()
	body := s.views.LoginPage(views.LoginParams{Email: q.Email, From: q.From})
	if f, ok := s.readFlash(ctx); ok {
		body = templ.Join(views.Toast(f.Kind, f.Message), body)
	}
	return handler.Templ(page(r, routes.Login, "Login", body))
}

func (s *Service) login(ctx handler.Context, f loginForm) handler.Response {
	f.Email = sanitizer.Email(f.Email)
	if err := validator.Struct(f); err != nil {
		return handler.Error(err)
	}
	id, err := sessionID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := s.sessions.Login(ctx, id, session.Credentials{Email: f.Email, Password: f.Password}); err != nil {
		return handler.Error(err)
	}
	s.log.InfoContext(ctx, "signed in with password")
	return handler.Redirect(handler.LocalPath(f.From, routes.HomePath))
}

func (s *Service) registerPage(ctx handler.Context, q pageQuery) handler.Response {
	body := s.views.RegisterPage(views.RegisterParams{Email: q.Email, From: q.From})
	return handler.Templ(page(ctx.Request(), routes.Register, "Register", body))
}

func (s *Service) register(ctx handler.Context, f registerForm) handler.Response {
	f.Name = sanitizer.DisplayName(f.Name)
	f.Email = sanitizer.Email(f.Email)
	f.PhotoURL = sanitizer.ImageURL(f.PhotoURL)
	if err := validator.Struct(f); err != nil {
		return handler.Error(err)
	}
	if !validator.StrongPassword(f.Password) {
		return handler.Error(errWeakPassword)
	}
	id, err := sessionID(ctx)
	if err != nil {
		return handler.Error(err)
	}
	reg := identity.Registration{Name: f.Name, Email: f.Email, Password: f.Password, PhotoURL: f.PhotoURL}
	if err := s.sessions.Register(ctx, id, reg); err != nil {
		return handler.Error(err)
	}
	s.log.InfoContext(ctx, "registered account")
	return handler.Redirect(handler.LocalPath(f.From, routes.HomePath))
}

func (s *Service) forgetPasswordPage(ctx handler.Context, q pageQuery) handler.Response {
	body := s.views.ForgetPasswordPage(views.ForgetPasswordParams{Email: q.Email})
	return handler.Templ(page(ctx.Request(), routes.ForgetPassword, "Reset password", body))
}

func (s *Service) forgetPassword(ctx handler.Context, f forgetPasswordForm) handler.Response {
	f.Email = sanitizer.Email(f.Email)
	if err := validator.Struct(f); err != nil {
		return handler.Error(err)
	}
	if err := s.sessions.ResetPassword(ctx, f.Email); err != nil {
		return handler.Error(err)
	}
	p := views.ForgetPasswordParams{Email: f.Email, Sent: true}
	return handler.TemplPartial(
		s.views.ForgetPasswordForm(p),
		page(ctx.Request(), routes.ForgetPassword, "Reset password", s.views.ForgetPasswordPage(p)),
	)
}

func (s *Service) logout(ctx handler.Context, _ struct{}) handler.Response {
	id, err := sessionID(ctx)
	if err != nil {
		return handler.Redirect(routes.HomePath)
	}
	s.sessions.Logout(ctx, id)
	return handler.Redirect(routes.HomePath)
}

func (s *Service) setFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if err := s.cookies.SetFlash(w, flashKey, flash{Kind: kind, Message: message}); err != nil {
		s.log.WarnContext(r.Context(), "failed to set flash", logger.Error(err))
	}
}

func (s *Service) readFlash(ctx handler.Context) (flash, bool) {
	var f flash
	err := s.cookies.GetFlash(ctx.ResponseWriter(), ctx.Request(), flashKey, &f)
	if err != nil {
		if !errors.Is(err, cookie.ErrNotFound) {
			s.log.DebugContext(ctx, "discarding flash", logger.Error(err))
		}
		return flash{}, false
	}
	return f, f.Message != ""
}
