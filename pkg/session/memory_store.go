package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Expired entries are
// removed lazily on Get and by an optional cleanup loop.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// NewMemoryStore creates a MemoryStore. A positive cleanupInterval starts a
// background sweep that Close stops.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go m.cleanupLoop(cleanupInterval)
	} else {
		close(m.done)
	}
	return m
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}
	return e.session, nil
}

func (m *MemoryStore) Save(_ context.Context, s Session, ttl time.Duration) error {
	if s.ID == "" {
		return ErrInvalidSession
	}
	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.sessions[s.ID] = memoryEntry{session: s, expiresAt: exp}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// DeleteExpired removes every expired session.
func (m *MemoryStore) DeleteExpired() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(m.sessions, id)
		}
	}
}

// Close stops the cleanup loop and waits for it to exit.
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.stop) })
	<-m.done
	return nil
}

func (m *MemoryStore) cleanupLoop(interval time.Duration) {
	defer close(m.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.DeleteExpired()
		case <-m.stop:
			return
		}
	}
}
