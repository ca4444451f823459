// Package broadcast fans values out to many subscribers.
//
// Subscribers are either lossy (the default) or reliable. A lossy subscriber
// whose buffer is full misses the value and is dropped, so a stalled view
// never holds up the publisher. A reliable subscriber makes Broadcast wait
// until the value is buffered, the subscriber closes, or the publish context
// ends; it sees every value in publish order.
package broadcast

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Broadcast after Close.
var ErrClosed = errors.New("broadcast.closed")

// Subscriber receives published values until it is closed.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed when the
	// subscriber is closed, dropped, or the broadcaster shuts down.
	Receive() <-chan T
	// Close is idempotent.
	Close() error
}

// Broadcaster publishes values to every live subscriber.
type Broadcaster[T any] interface {
	// Subscribe registers a subscriber that lives until ctx is done or
	// Close is called on it.
	Subscribe(ctx context.Context, opts ...SubscribeOption) Subscriber[T]
	Broadcast(ctx context.Context, v T) error
	Close() error
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeOptions)

type subscribeOptions struct {
	reliable bool
	filter   any
}

// Reliable makes the subscription lossless and ordered.
func Reliable() SubscribeOption {
	return func(o *subscribeOptions) { o.reliable = true }
}

// Filter limits the subscription to values accepted by fn. Rejected values
// never reach the subscriber's buffer, so they cannot crowd out the ones it
// wants. fn runs on the publisher's goroutine and must not block.
func Filter[T any](fn func(T) bool) SubscribeOption {
	return func(o *subscribeOptions) { o.filter = fn }
}

type subscriber[T any] struct {
	ch       chan T
	done     chan struct{}
	reliable bool
	accept   func(T) bool

	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

func newSubscriber[T any](size int, reliable bool) *subscriber[T] {
	return &subscriber[T]{
		ch:       make(chan T, size),
		done:     make(chan struct{}),
		reliable: reliable,
	}
}

func (s *subscriber[T]) Receive() <-chan T { return s.ch }

func (s *subscriber[T]) Close() error {
	s.once.Do(func() {
		// Wake senders blocked on a reliable send before taking the lock.
		close(s.done)
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
	return nil
}

func (s *subscriber[T]) send(ctx context.Context, v T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	if !s.reliable {
		select {
		case s.ch <- v:
			return true
		default:
			return false
		}
	}
	select {
	case s.ch <- v:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		// The subscriber is still healthy; only this publish gave up.
		return true
	}
}
