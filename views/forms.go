package views

import (
	"context"
	"net/url"

	"github.com/a-h/templ"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

// LoginParams is the data of the login page.
type LoginParams struct {
	Email string
	From  string
}

// RegisterParams is the data of the registration page.
type RegisterParams struct {
	Name     string
	Email    string
	PhotoURL string
	From     string
}

// ForgetPasswordParams is the data of the password reset page.
type ForgetPasswordParams struct {
	Email string
	Sent  bool
}

// ProfileParams is the data of the profile page.
type ProfileParams struct {
	Session session.Session
}

func input(h *html, label, typ, name, value string, extra ...string) {
	h.raw("<label>")
	h.text(label)
	h.open("input", append([]string{"type", typ, "name", name, "value", value}, extra...)...)
	h.raw("</label>")
}

// form opens a form that posts through datastar and still works as a plain
// form post.
func form(h *html, id, action string) {
	h.raw(`<form method="post"`)
	h.attr("id", id)
	h.href("action", action)
	h.attr("data-on-submit", "@post('"+action+"', {contentType: 'form'})")
	h.raw(">")
}

func withFrom(path, from string) string {
	if from == "" {
		return path
	}
	return path + "?" + url.Values{"from": {from}}.Encode()
}

func LoginForm(p LoginParams) templ.Component {
	return component(func(_ context.Context, h *html) {
		form(h, "login-form", routes.LoginPath)
		input(h, "Email", "email", "email", p.Email, "autocomplete", "email")
		input(h, "Password", "password", "password", "", "autocomplete", "current-password")
		h.open("input", "type", "hidden", "name", "from", "value", p.From)
		h.raw(`<button type="submit">Login</button></form>`)
	})
}

func LoginPage(p LoginParams) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="login">`)
		h.el("h2", "Login to your account")
		h.child(ctx, LoginForm(p))
		h.link(withFrom("/auth/google", p.From), "Continue with Google", "class", "button google")
		h.raw("<p>")
		h.link(routes.ForgetPasswordPath, "Forgot password?")
		h.raw("</p><p>New here? ")
		h.link(withFrom(routes.RegisterPath, p.From), "Create an account")
		h.raw("</p></section>")
	})
}

func RegisterForm(p RegisterParams) templ.Component {
	return component(func(_ context.Context, h *html) {
		form(h, "register-form", routes.RegisterPath)
		input(h, "Name", "text", "name", p.Name, "autocomplete", "name")
		input(h, "Email", "email", "email", p.Email, "autocomplete", "email")
		input(h, "Photo URL", "url", "photo_url", p.PhotoURL)
		input(h, "Password", "password", "password", "", "autocomplete", "new-password")
		h.el("p", "At least 6 characters with an upper and a lower case letter.", "class", "hint")
		h.open("input", "type", "hidden", "name", "from", "value", p.From)
		h.raw(`<button type="submit">Register</button></form>`)
	})
}

func RegisterPage(p RegisterParams) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="register">`)
		h.el("h2", "Create an account")
		h.child(ctx, RegisterForm(p))
		h.link(withFrom("/auth/google", p.From), "Continue with Google", "class", "button google")
		h.raw("<p>Already registered? ")
		h.link(withFrom(routes.LoginPath, p.From), "Login")
		h.raw("</p></section>")
	})
}

func ForgetPasswordForm(p ForgetPasswordParams) templ.Component {
	return component(func(_ context.Context, h *html) {
		if p.Sent {
			h.raw(`<div id="forget-password-form" role="status">`)
			h.el("p", "Password reset email sent to "+p.Email+". Check your inbox.")
			h.link(routes.LoginPath, "Back to login")
			h.raw("</div>")
			return
		}
		form(h, "forget-password-form", routes.ForgetPasswordPath)
		input(h, "Email", "email", "email", p.Email, "autocomplete", "email")
		h.raw(`<button type="submit">Send reset link</button></form>`)
	})
}

func ForgetPasswordPage(p ForgetPasswordParams) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="forget-password">`)
		h.el("h2", "Reset your password")
		h.child(ctx, ForgetPasswordForm(p))
		h.raw("</section>")
	})
}

// ProfileCard shows the current profile and follows live updates.
func ProfileCard(s session.Session) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<div id="profile-card">`)
		h.raw(`<img width="96" height="96" alt="profile photo"`)
		h.href("src", avatar(s))
		h.raw(">")
		h.el("h3", DisplayName(s))
		h.el("p", s.Email)
		h.el("span", RoleLabel(s.Role), "class", "badge")
		h.raw("</div>")
	})
}

func ProfileForm() templ.Component {
	return component(func(_ context.Context, h *html) {
		form(h, "profile-form", routes.ProfilePath)
		input(h, "Name", "text", "name", "", "placeholder", "Leave empty to keep")
		input(h, "Photo URL", "url", "photo_url", "", "placeholder", "Leave empty to keep")
		h.raw(`<button type="submit">Update Profile</button></form>`)
	})
}

func ProfilePage(p ProfileParams) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="profile">`)
		h.el("h1", "My Profile")
		h.child(ctx, ProfileCard(p.Session))
		h.child(ctx, ProfileForm())
		h.raw("</section>")
	})
}
