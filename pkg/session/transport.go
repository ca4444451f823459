package session

import (
	"net/http"
	"time"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/cookie"
)

// Transport carries the session ID between browser and server.
type Transport interface {
	// ID extracts the session ID from the request.
	ID(r *http.Request) (string, error)
	// Set sends the session ID with the response.
	Set(w http.ResponseWriter, id string) error
	// Clear removes the session ID from the browser.
	Clear(w http.ResponseWriter)
}

// CookieTransport keeps the session ID in an encrypted, HttpOnly cookie.
// Tokens never leave the server; the cookie carries only the ID.
type CookieTransport struct {
	cookies *cookie.Manager
	name    string
	ttl     time.Duration
	secure  bool
}

// NewCookieTransport creates a CookieTransport named after cfg.CookieName.
func NewCookieTransport(cookies *cookie.Manager, cfg Config) *CookieTransport {
	name := cfg.CookieName
	if name == "" {
		name = DefaultConfig().CookieName
	}
	return &CookieTransport{
		cookies: cookies,
		name:    name,
		ttl:     cfg.TTL,
		secure:  cfg.SecureCookies,
	}
}

func (t *CookieTransport) ID(r *http.Request) (string, error) {
	id, err := t.cookies.GetEncrypted(r, t.name)
	if err != nil || id == "" {
		return "", ErrSessionNotFound
	}
	return id, nil
}

func (t *CookieTransport) Set(w http.ResponseWriter, id string) error {
	return t.cookies.SetEncrypted(w, t.name, id,
		cookie.WithPath("/"),
		cookie.WithMaxAge(int(t.ttl.Seconds())),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithSecure(t.secure),
	)
}

func (t *CookieTransport) Clear(w http.ResponseWriter) {
	t.cookies.Delete(w, t.name)
}
