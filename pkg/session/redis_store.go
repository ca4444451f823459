package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON values with a Redis TTL, so they
// survive restarts and are shared between replicas.
type RedisStore struct {
	db     redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore. Keys are prefix+ID; an empty prefix
// defaults to "session:".
func NewRedisStore(db redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisStore{db: db, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	data, err := s.db.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, errors.Join(ErrInvalidSession, err)
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess Session, ttl time.Duration) error {
	if sess.ID == "" {
		return ErrInvalidSession
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.db.Set(ctx, s.prefix+sess.ID, data, max(ttl, 0)).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.db.Del(ctx, s.prefix+id).Err()
}
