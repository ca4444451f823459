package session

import (
	"context"
	"time"
)

// Store persists sessions by ID.
type Store interface {
	// Get returns ErrSessionNotFound for unknown or expired IDs.
	Get(ctx context.Context, id string) (Session, error)
	// Save creates or replaces the session and restarts its TTL.
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
