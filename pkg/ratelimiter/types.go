package ratelimiter

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Config defines a bucket: Burst tokens, refilled at PerMinute per minute.
type Config struct {
	PerMinute       float64       `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	Burst           int           `env:"RATE_LIMIT_BURST" envDefault:"5"`
	IdleTTL         time.Duration `env:"RATE_LIMIT_IDLE_TTL" envDefault:"1h"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
}

func (c Config) limit() rate.Limit {
	return rate.Limit(c.PerMinute / 60)
}

func (c Config) validate() error {
	if c.PerMinute <= 0 {
		return fmt.Errorf("%w: per-minute rate must be positive, got %v", ErrInvalidConfig, c.PerMinute)
	}
	if c.Burst <= 0 {
		return fmt.Errorf("%w: burst must be positive, got %d", ErrInvalidConfig, c.Burst)
	}
	return nil
}

// Result contains the result of a rate limit check.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // whole tokens left after this request
	ResetAt   time.Time // when the next token is available
	allowed   bool
}

// Allowed reports whether the request may proceed.
func (r Result) Allowed() bool { return r.allowed }

// RetryAfter returns how long to wait before the next request, measured
// from now. It is zero for allowed requests.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.allowed || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}
