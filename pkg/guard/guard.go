// Package guard decides whether a route may be rendered for a session.
//
// Decide is pure and synchronous; the Guard middleware applies it to every
// request of a guarded route and turns the decision into a response.
package guard

import (
	"net/url"
	"strings"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

// Outcome is the kind of a Decision.
type Outcome int

const (
	// Render shows the requested view.
	Render Outcome = iota
	// Pending shows a neutral loading view while the session resolves.
	Pending
	// Redirect sends the browser to Decision.Target.
	Redirect
	// Forbidden refuses the route. It is chosen when the redirect target is
	// the requested path itself.
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case Forbidden:
		return "forbidden"
	default:
		return "render"
	}
}

// Decision is the result of Decide.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Decide maps the route requirements and the session snapshot to a
// decision. path is the requested path, optionally with its query string;
// it is remembered as the login "from" parameter.
func Decide(route routes.Route, path string, s session.Session) Decision {
	if s.IsLoading() {
		return Decision{Outcome: Pending}
	}

	if route.RequiresAuth && !s.IsAuthenticated() {
		return redirect(path, LoginURL(path))
	}

	if s.IsAdmin() && trimPath(path) == routes.DashboardPath {
		return redirect(path, routes.AdminPath)
	}

	if route.RequiredRole != "" && !s.HasRole(route.RequiredRole) {
		return redirect(path, routes.Landing(s))
	}

	return Decision{Outcome: Render}
}

// LoginURL is the login page remembering from as the return target.
func LoginURL(from string) string {
	if from == "" || from == routes.LoginPath {
		return routes.LoginPath
	}
	return routes.LoginPath + "?" + url.Values{"from": {from}}.Encode()
}

// redirect refuses instead when path already is the target. Rendering there
// would show a denied route.
func redirect(path, target string) Decision {
	if trimPath(path) == trimPath(target) {
		return Decision{Outcome: Forbidden}
	}
	return Decision{Outcome: Redirect, Target: target}
}

func trimPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
