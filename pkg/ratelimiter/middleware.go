package ratelimiter

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/clientip"
)

const maxKeyLength = 64

// KeyFunc extracts a rate limit key from the request.
type KeyFunc func(r *http.Request) string

// ByIP keys by client IP.
func ByIP(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.FromRequest(r)
}

// ByPath keys by the request path.
func ByPath(r *http.Request) string { return r.URL.Path }

// Composite joins the non-empty keys of fns. Keys longer than 64 bytes are
// replaced by their FNV-1a hash.
func Composite(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		key := strings.Join(parts, ":")
		if len(key) <= maxKeyLength {
			return key
		}
		h := fnv.New64a()
		h.Write([]byte(key))
		return strconv.FormatUint(h.Sum64(), 36)
	}
}

type middlewareConfig struct {
	key    KeyFunc
	denied http.Handler
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithKeyFunc replaces the default ByIP key.
func WithKeyFunc(fn KeyFunc) MiddlewareOption {
	return func(c *middlewareConfig) { c.key = fn }
}

// WithDeniedHandler serves throttled requests. The default writes a plain
// 429 response.
func WithDeniedHandler(h http.Handler) MiddlewareOption {
	return func(c *middlewareConfig) { c.denied = h }
}

// Middleware throttles requests through l.
func Middleware(l *Limiter, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{
		key: ByIP,
		denied: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(cfg.key(r))
			if err != nil {
				// No usable key: let the request through unthrottled.
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				secs := int(res.RetryAfter(l.now()).Seconds() + 0.999)
				h.Set("Retry-After", strconv.Itoa(max(1, secs)))
				cfg.denied.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
