package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

// section renders a heading, an intro line and optional body.
func section(id, heading, intro string, body func(h *html)) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.open("section", "id", id)
		h.el("h1", heading)
		if intro != "" {
			h.el("p", intro, "class", "lead")
		}
		if body != nil {
			body(h)
		}
		h.close("section")
	})
}

func Terms() templ.Component {
	return section("terms", "Terms & Conditions", "By using WisdomVault you agree to share only content you have the right to share.", nil)
}

func Privacy() templ.Component {
	return section("privacy", "Privacy Policy", "We store your name, email and photo to run your account. Payments are processed by our billing provider.", nil)
}

// UserOverview is the general dashboard.
func UserOverview(s session.Session) templ.Component {
	return section("overview", "Dashboard Overview", "Welcome back, "+DisplayName(s)+".", func(h *html) {
		h.raw(`<dl class="stats">`)
		stat := func(label, value string) {
			h.el("dt", label)
			h.el("dd", value)
		}
		stat("Role", RoleLabel(s.Role))
		plan := "Free"
		if s.IsPremium {
			plan = "Premium"
		}
		stat("Plan", plan)
		stat("Lessons created", strconv.Itoa(s.LessonsCreated))
		stat("Lessons saved", strconv.Itoa(s.LessonsSaved))
		h.raw("</dl>")
		if !s.IsPremium {
			h.link(routes.UpgradePath, "Upgrade to Premium", "class", "button")
		}
	})
}

func ReportedLessons() templ.Component {
	return section("reported-lessons", "Reported Lessons", "Lessons flagged by the community.", func(h *html) {
		h.el("p", "No reported lessons.", "class", "empty")
	})
}

// NotFound is the catch-all page.
func NotFound() templ.Component {
	return section("not-found", "404", "Oops! The page you are looking for doesn't exist.", func(h *html) {
		h.link(routes.HomePath, "Go Back Home", "class", "button")
	})
}

// Pending is shown while a session is still resolving. Render it with
// Page.Pending set so the page reloads once the session settles.
func Pending() templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<div id="pending" role="status" aria-busy="true">Loading...</div>`)
	})
}
