package ratelimiter

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	lim        *rate.Limiter
	lastAccess time.Time
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter and starts its idle bucket sweeper when
// cfg.CleanupInterval is positive. It returns ErrInvalidConfig for a
// non-positive rate or burst.
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = time.Hour
	}
	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if cfg.CleanupInterval > 0 {
		l.wg.Add(1)
		go l.sweep(cfg.CleanupInterval)
	}
	return l, nil
}

// Allow takes one token from key's bucket. A denied request consumes nothing.
func (l *Limiter) Allow(key string) (Result, error) {
	if key == "" {
		return Result{}, ErrEmptyKey
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.cfg.limit(), l.cfg.Burst)}
		l.buckets[key] = b
	}
	b.lastAccess = now

	res := Result{Limit: l.cfg.Burst}
	r := b.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.ResetAt = now.Add(delay)
		return res, nil
	}

	res.allowed = true
	tokens := b.lim.TokensAt(now)
	res.Remaining = max(0, int(math.Floor(tokens)))
	if tokens < float64(l.cfg.Burst) {
		res.ResetAt = now.Add(time.Duration((1 - (tokens - math.Floor(tokens))) / float64(l.cfg.limit()) * float64(time.Second)))
	} else {
		res.ResetAt = now
	}
	return res, nil
}

// Reset forgets key's bucket.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Sweep removes buckets idle for longer than Config.IdleTTL.
func (l *Limiter) Sweep() {
	cutoff := l.now().Add(-l.cfg.IdleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

func (l *Limiter) sweep(every time.Duration) {
	defer l.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.Sweep()
		case <-l.stop:
			return
		}
	}
}

// Close stops the sweeper. Safe to call multiple times.
func (l *Limiter) Close() error {
	l.once.Do(func() { close(l.stop) })
	l.wg.Wait()
	return nil
}
