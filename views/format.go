package views

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

// DefaultAvatar is shown for accounts without a photo.
const DefaultAvatar = "https://i.ibb.co/2FsfXqM/user.png"

var (
	printer = message.NewPrinter(language.English)
	title   = cases.Title(language.English)
)

// FormatPrice renders a whole-unit amount with its ISO currency code and
// digit grouping, e.g. "BDT 1,500".
func FormatPrice(code string, amount int) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return printer.Sprintf("%d", amount)
	}
	return unit.String() + " " + printer.Sprintf("%d", amount)
}

// RoleLabel is the display name of a role.
func RoleLabel(r session.Role) string {
	if r == "" {
		r = session.RoleUser
	}
	return title.String(string(r))
}

// DisplayName is the best available name for s.
func DisplayName(s session.Session) string {
	for _, v := range []string{s.DisplayName, s.Email} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return "User"
}

func avatar(s session.Session) string {
	if s.AvatarURL != "" {
		return s.AvatarURL
	}
	return DefaultAvatar
}
