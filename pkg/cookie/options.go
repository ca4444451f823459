package cookie

import (
	"net/http"
	"strings"
)

// Config is the environment configuration for NewFromConfig.
type Config struct {
	// Secrets is a comma separated list; the first entry signs and encrypts.
	Secrets string `env:"COOKIE_SECRETS,required"`
	Path    string `env:"COOKIE_PATH" envDefault:"/"`
	Domain  string `env:"COOKIE_DOMAIN"`
	Secure  bool   `env:"COOKIE_SECURE" envDefault:"false"`
}

func (c Config) secrets() []string {
	parts := strings.Split(c.Secrets, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Options are the attributes written with a cookie.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

type Option func(*Options)

func WithPath(path string) Option {
	return func(o *Options) {
		if path != "" {
			o.Path = path
		}
	}
}

func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

// WithMaxAge sets the lifetime in seconds. Zero makes a browser-session cookie.
func WithMaxAge(seconds int) Option {
	return func(o *Options) { o.MaxAge = seconds }
}

func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) { o.HttpOnly = httpOnly }
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) { o.SameSite = sameSite }
}

func applyOptions(base Options, opts []Option) Options {
	for _, opt := range opts {
		opt(&base)
	}
	return base
}
