// Package ratelimiter throttles requests per key with token buckets from
// golang.org/x/time/rate.
//
// A Limiter keeps one bucket per key and forgets buckets that stay idle for
// Config.IdleTTL. Middleware applies a Limiter to an http.Handler, keying by
// client IP unless told otherwise, and sets the X-RateLimit-* headers.
//
//	lim, err := ratelimiter.New(ratelimiter.Config{PerMinute: 10, Burst: 5})
//	if err != nil {
//		return err
//	}
//	defer lim.Close()
//	r.With(ratelimiter.Middleware(lim)).Post("/login", h)
package ratelimiter
