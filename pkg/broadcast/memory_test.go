package broadcast_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/broadcast"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive[T any](t *testing.T, sub broadcast.Subscriber[T]) (T, bool) {
	t.Helper()
	select {
	case v, ok := <-sub.Receive():
		return v, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
		var zero T
		return zero, false
	}
}

func TestMemory_Broadcast(t *testing.T) {
	b := broadcast.NewMemory[string](4)
	defer b.Close()

	ctx := context.Background()
	first := b.Subscribe(ctx)
	second := b.Subscribe(ctx)

	require.NoError(t, b.Broadcast(ctx, "authenticated"))

	v, ok := receive(t, first)
	require.True(t, ok)
	assert.Equal(t, "authenticated", v)

	v, ok = receive(t, second)
	require.True(t, ok)
	assert.Equal(t, "authenticated", v)
}

func TestMemory_LossySubscriberIsDropped(t *testing.T) {
	b := broadcast.NewMemory[int](1)
	defer b.Close()

	ctx := context.Background()
	slow := b.Subscribe(ctx)

	require.NoError(t, b.Broadcast(ctx, 1))
	require.NoError(t, b.Broadcast(ctx, 2))

	v, ok := receive(t, slow)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = receive(t, slow)
	assert.False(t, ok, "overflowing subscriber is closed")
	assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemory_ReliableSubscriberKeepsOrder(t *testing.T) {
	b := broadcast.NewMemory[int](1)
	defer b.Close()

	ctx := context.Background()
	sub := b.Subscribe(ctx, broadcast.Reliable())

	const n = 50
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range n {
			_ = b.Broadcast(ctx, i)
		}
	}()

	for i := range n {
		v, ok := receive(t, sub)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	wg.Wait()
}

func TestMemory_ReliableSendGivesUpOnContext(t *testing.T) {
	b := broadcast.NewMemory[int](1)
	defer b.Close()

	sub := b.Subscribe(context.Background(), broadcast.Reliable())
	require.NoError(t, b.Broadcast(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := b.Broadcast(ctx, 2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	v, ok := receive(t, sub)
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, b.Len(), "reliable subscriber stays registered")
}

func TestMemory_FilterSkipsRejectedValues(t *testing.T) {
	b := broadcast.NewMemory[int](1)
	defer b.Close()

	ctx := context.Background()
	even := b.Subscribe(ctx, broadcast.Filter(func(v int) bool { return v%2 == 0 }))

	for i := 1; i <= 7; i += 2 {
		require.NoError(t, b.Broadcast(ctx, i))
	}
	require.NoError(t, b.Broadcast(ctx, 8))

	v, ok := receive(t, even)
	require.True(t, ok, "rejected values do not overflow the buffer")
	assert.Equal(t, 8, v)
	assert.Equal(t, 1, b.Len())
}

func TestMemory_ContextCancelUnsubscribes(t *testing.T) {
	b := broadcast.NewMemory[string](1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)
	cancel()

	_, ok := receive(t, sub)
	assert.False(t, ok)
	assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemory_Close(t *testing.T) {
	b := broadcast.NewMemory[string](1)
	sub := b.Subscribe(context.Background())

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, ok := receive(t, sub)
	assert.False(t, ok)

	assert.ErrorIs(t, b.Broadcast(context.Background(), "x"), broadcast.ErrClosed)

	late := b.Subscribe(context.Background())
	_, ok = receive(t, late)
	assert.False(t, ok)
}
