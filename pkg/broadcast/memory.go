package broadcast

import (
	"context"
	"sync"
)

// Memory is an in-process Broadcaster.
type Memory[T any] struct {
	size int

	mu     sync.Mutex
	subs   map[*subscriber[T]]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewMemory creates a broadcaster whose subscribers buffer up to size
// values. Sizes below 1 are raised to 1.
func NewMemory[T any](size int) *Memory[T] {
	return &Memory[T]{
		size: max(size, 1),
		subs: make(map[*subscriber[T]]struct{}),
	}
}

func (b *Memory[T]) Subscribe(ctx context.Context, opts ...SubscribeOption) Subscriber[T] {
	var o subscribeOptions
	for _, opt := range opts {
		opt(&o)
	}
	sub := newSubscriber[T](b.size, o.reliable)
	if fn, ok := o.filter.(func(T) bool); ok {
		sub.accept = fn
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		_ = sub.Close()
		return sub
	}
	b.subs[sub] = struct{}{}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		select {
		case <-ctx.Done():
		case <-sub.done:
		}
		b.remove(sub)
	}()
	return sub
}

// Broadcast delivers v to every subscriber. Lossy subscribers that cannot
// take v are dropped. The broadcaster lock is not held while delivering.
func (b *Memory[T]) Broadcast(ctx context.Context, v T) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	subs := make([]*subscriber[T], 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		if s.accept != nil && !s.accept(v) {
			continue
		}
		if !s.send(ctx, v) {
			_ = s.Close()
		}
	}
	return ctx.Err()
}

// Close closes every subscriber and waits for their watchers to exit.
func (b *Memory[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[*subscriber[T]]struct{})
	b.mu.Unlock()

	for s := range subs {
		_ = s.Close()
	}
	b.wg.Wait()
	return nil
}

// Len reports the number of live subscribers.
func (b *Memory[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Memory[T]) remove(sub *subscriber[T]) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
	_ = sub.Close()
}
