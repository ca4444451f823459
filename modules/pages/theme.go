package pages

import (
	"strconv"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

// toggleTheme flips and persists the preference. Datastar clients get the
// root class switched in place; plain form posts go back where they came
// from.
func (s *Service) toggleTheme(ctx handler.Context, _ struct{}) handler.Response {
	pref := s.themes.Toggle(ctx.ResponseWriter(), ctx.Request())
	if !handler.IsDataStar(ctx.Request()) {
		return handler.RedirectBack(routes.HomePath)
	}
	return handler.SSE(func(stream handler.StreamContext) error {
		script := "document.documentElement.classList.toggle('dark', " + strconv.FormatBool(pref.IsDark()) + ")"
		if err := stream.ExecuteScript(script); err != nil {
			return err
		}
		return stream.SendComponent(views.ThemeToggle(pref))
	})
}
