package views

import (
	"context"
	"net/http"
	"net/url"

	"github.com/a-h/templ"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/theme"
)

// DatastarScript is the client bundle matching the server SDK.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// SessionEventsPath streams session changes to every page.
const SessionEventsPath = "/session/events"

// ToastTarget is the selector toasts are prepended to.
const ToastTarget = "#toast-container"

// Page is the request-scoped data every shell needs.
type Page struct {
	Title   string
	Path    string
	Layout  routes.Layout
	Theme   theme.Preference
	Session session.Session
	// Pending marks the loading view; its session stream reloads the page
	// once the session settles.
	Pending bool
}

// NewPage reads the theme and session snapshot from the request context.
func NewPage(r *http.Request, route routes.Route, title string) Page {
	s, _ := session.FromContext(r.Context())
	return Page{
		Title:   title,
		Path:    r.URL.Path,
		Layout:  route.Layout,
		Theme:   theme.FromContext(r.Context()),
		Session: s,
	}
}

// Render wraps body in the shell for p.Layout.
func Render(p Page, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw("<!doctype html>")
		h.open("html", "lang", "en", "class", p.Theme.Class())
		h.raw("<head>")
		h.raw(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.el("title", pageTitle(p.Title))
		h.raw(`<script type="module"`)
		h.href("src", DatastarScript)
		h.raw("></script></head>")

		h.open("body", "data-layout", string(p.Layout))
		h.raw(`<div id="toast-container" aria-live="polite"></div>`)
		if p.Session.ID != "" && p.Layout != routes.LayoutBare {
			q := url.Values{"from": {p.Path}}
			if p.Pending {
				q.Set("settle", "1")
			}
			stream := SessionEventsPath + "?" + q.Encode()
			h.raw(`<div id="session-stream" hidden`)
			h.attr("data-on-load", "@get('"+stream+"')")
			h.raw("></div>")
		}

		switch p.Layout {
		case routes.LayoutBare:
			h.child(ctx, body)
		case routes.LayoutDashboard:
			h.child(ctx, Navbar(p))
			h.raw(`<div class="dashboard">`)
			h.child(ctx, Sidebar(p))
			h.raw(`<main id="content">`)
			h.child(ctx, body)
			h.raw("</main></div>")
		default:
			h.child(ctx, Navbar(p))
			h.raw(`<main id="content">`)
			h.child(ctx, body)
			h.raw("</main>")
			h.child(ctx, footer())
		}
		h.raw("</body></html>")
	})
}

func pageTitle(t string) string {
	if t == "" {
		return "WisdomVault"
	}
	return t + " | WisdomVault"
}

type navLink struct{ path, label string }

// Navbar is the top navigation shared by the main and dashboard shells.
func Navbar(p Page) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<header id="navbar"><nav>`)
		h.link(routes.HomePath, "WisdomVault", "class", "logo")
		h.raw("<ul>")
		for _, l := range []navLink{
			{routes.HomePath, "Home"},
			{"/dashboard/add-lesson", "Add Lesson"},
			{"/dashboard/my-lessons", "My Lessons"},
			{"/lessons", "Public Lessons"},
			{routes.UpgradePath, "Upgrade"},
		} {
			h.raw("<li>")
			if l.path == p.Path {
				h.link(l.path, l.label, "aria-current", "page")
			} else {
				h.link(l.path, l.label)
			}
			h.raw("</li>")
		}
		h.raw("</ul>")
		h.child(ctx, ThemeToggle(p.Theme))
		h.child(ctx, UserMenu(p.Session))
		h.raw("</nav></header>")
	})
}

// ThemeToggle is the light/dark switch.
func ThemeToggle(t theme.Preference) templ.Component {
	return component(func(_ context.Context, h *html) {
		label := "Switch to dark theme"
		if t.IsDark() {
			label = "Switch to light theme"
		}
		h.raw(`<form id="theme-toggle" method="post" action="/theme/toggle" data-on-submit="@post('/theme/toggle')">`)
		h.el("button", label, "type", "submit", "data-theme", t.String())
		h.raw("</form>")
	})
}

// UserMenu shows the login link, a placeholder while the session resolves,
// or the signed-in user's menu.
func UserMenu(s session.Session) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<div id="user-menu">`)
		switch {
		case s.IsLoading():
			h.raw(`<span class="user-menu-loading" aria-busy="true"></span>`)
		case !s.IsAuthenticated():
			h.link(routes.LoginPath, "Login / Sign Up", "class", "button")
		default:
			h.raw("<details><summary>")
			h.raw(`<img width="40" height="40" alt="avatar"`)
			h.href("src", avatar(s))
			h.raw("></summary>")
			h.el("p", DisplayName(s), "class", "user-name")
			if s.Role != session.RoleUser && s.Role != "" {
				h.el("span", RoleLabel(s.Role), "class", "badge")
			}
			h.link(routes.ProfilePath, "Profile")
			h.link(routes.Landing(s), "Dashboard")
			h.raw(`<form method="post" action="/logout"><button type="submit" class="danger">Logout</button></form>`)
			h.raw("</details>")
		}
		h.child(ctx, SyncIndicator(s))
		h.raw("</div>")
	})
}

// SyncIndicator shows that a profile edit has not been confirmed yet.
func SyncIndicator(s session.Session) templ.Component {
	return component(func(_ context.Context, h *html) {
		if s.SyncPending {
			h.el("span", "Saving…", "id", "sync-indicator", "aria-busy", "true")
			return
		}
		h.raw(`<span id="sync-indicator"></span>`)
	})
}

// Sidebar is the dashboard navigation; admin links only show for admins.
func Sidebar(p Page) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<aside id="sidebar"><ul>`)
		links := []navLink{
			{routes.DashboardPath, "Overview"},
			{"/dashboard/add-lesson", "Add Lesson"},
			{"/dashboard/my-lessons", "My Lessons"},
			{routes.ProfilePath, "Profile"},
		}
		if p.Session.IsAdmin() {
			links = append(links,
				navLink{routes.AdminPath, "Admin Overview"},
				navLink{"/dashboard/admin/manage-users", "Manage Users"},
				navLink{"/dashboard/admin/manage-lesson", "Manage Lessons"},
				navLink{"/dashboard/admin/reported-lessons", "Reported Lessons"},
			)
		}
		for _, l := range links {
			h.raw("<li>")
			if l.path == p.Path {
				h.link(l.path, l.label, "aria-current", "page")
			} else {
				h.link(l.path, l.label)
			}
			h.raw("</li>")
		}
		h.raw("</ul></aside>")
	})
}

func footer() templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw("<footer><p>WisdomVault</p><nav>")
		h.link("/terms", "Terms & Conditions")
		h.link("/privacy", "Privacy Policy")
		h.raw("</nav></footer>")
	})
}
