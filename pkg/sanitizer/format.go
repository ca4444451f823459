package sanitizer

import (
	"net/url"
	"strings"
)

// Email trims and lower-cases an address. Anything that does not look like
// local@domain is returned trimmed but otherwise untouched so the provider
// can reject it with its own message.
func Email(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return email
	}
	return strings.ToLower(local + "@" + domain)
}

// ImageURL returns raw when it is an absolute http or https URL with a host,
// and the empty string otherwise.
func ImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.User != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return ""
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}
