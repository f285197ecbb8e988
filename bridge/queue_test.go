package bridge_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsInOrder(t *testing.T) {
	b := newBridge()
	q := bridge.NewQueue()

	var order []int
	q.Defer(func(b *bridge.Bridge) { order = append(order, b.SpawnEntity("marker", 0, 0, 0)) })
	q.Defer(func(b *bridge.Bridge) { order = append(order, b.SpawnEntity("marker", 0, 0, 0)) })
	q.Defer(func(b *bridge.Bridge) { b.DestroyEntity(0) })

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 0, b.GetEntityCount(), "nothing runs before flush")

	assert.Equal(t, 3, q.Flush(b))
	assert.Equal(t, []int{0, 1}, order)
	assert.Equal(t, "[1]", b.ListEntityIds())
	assert.Equal(t, 0, q.Len())
}

func TestQueueDoWaitsForFlush(t *testing.T) {
	b := newBridge()
	q := bridge.NewQueue()

	var (
		wg sync.WaitGroup
		id = -2
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := q.Do(context.Background(), func(b *bridge.Bridge) {
			id = b.SpawnEntity("tree_birch", 0, 0, 0)
		})
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)
	q.Flush(b)
	wg.Wait()

	assert.Equal(t, 0, id)
}

func TestQueueDoHonoursContext(t *testing.T) {
	q := bridge.NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Do(ctx, func(*bridge.Bridge) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueueManyProducers(t *testing.T) {
	b := newBridge()
	q := bridge.NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				q.Flush(b)
			}
		}
	}()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				err := q.Do(ctx, func(b *bridge.Bridge) { b.SpawnEntity("marker", 0, 0, 0) })
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	done := make(chan int)
	q.Defer(func(b *bridge.Bridge) { done <- b.GetEntityCount() })
	assert.Equal(t, 80, <-done)
}
