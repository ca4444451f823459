// Package theme holds the light/dark presentation preference.
//
// The preference lives in a durable "theme" cookie so it survives browser and
// server restarts, and is exposed to views through the request context.
package theme

// Preference is the visual theme.
type Preference string

const (
	Light Preference = "light"
	Dark  Preference = "dark"
)

// Default is used when no preference has been stored.
const Default = Light

// Parse reads a stored value. Anything other than "dark" is Light.
func Parse(s string) Preference {
	if Preference(s) == Dark {
		return Dark
	}
	return Light
}

// Toggle returns the other preference. Toggle(Toggle(p)) == p.
func Toggle(p Preference) Preference {
	if p == Dark {
		return Light
	}
	return Dark
}

// Class is the class set on the root <html> element.
func (p Preference) Class() string {
	if p == Dark {
		return "dark"
	}
	return ""
}

// IsDark reports whether p is the dark theme.
func (p Preference) IsDark() bool { return p == Dark }

func (p Preference) String() string { return string(p) }
