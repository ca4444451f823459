// Package redis connects to Redis with bounded retries and exposes a
// readiness check for the HTTP server.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect parses cfg.ConnectionURL and pings until the server answers,
// giving up after cfg.RetryAttempts tries or when ctx (bounded by
// cfg.ConnectTimeout) ends.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}
	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrParseURL, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	var lastErr error
	for attempt := range max(cfg.RetryAttempts, 1) {
		if attempt > 0 {
			t := time.NewTimer(cfg.RetryInterval)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, errors.Join(ErrNotReady, ctx.Err())
			case <-t.C:
			}
		}

		client := redis.NewClient(opt)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()
	}
	return nil, errors.Join(ErrNotReady, lastErr)
}
