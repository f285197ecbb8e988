package bridge

import (
	"context"
	"sync"
)

// Queue buffers work for the goroutine that owns a Bridge. Any goroutine may
// enqueue; only the owner flushes. Commands run in the order they were
// queued.
type Queue struct {
	mu      sync.Mutex
	pending []command
}

type command struct {
	fn   func(*Bridge)
	done chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Defer queues fn without waiting for it to run.
func (q *Queue) Defer(fn func(*Bridge)) {
	q.mu.Lock()
	q.pending = append(q.pending, command{fn: fn})
	q.mu.Unlock()
}

// Do queues fn and blocks until the owner has run it or ctx is done. When ctx
// ends first fn may still run later.
func (q *Queue) Do(ctx context.Context, fn func(*Bridge)) error {
	done := make(chan struct{})
	q.mu.Lock()
	q.pending = append(q.pending, command{fn: fn, done: done})
	q.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of commands waiting to be flushed.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs every queued command against b and returns how many ran.
// Commands queued while flushing wait for the next flush.
func (q *Queue) Flush(b *Bridge) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, cmd := range batch {
		cmd.fn(b)
		if cmd.done != nil {
			close(cmd.done)
		}
	}
	return len(batch)
}
