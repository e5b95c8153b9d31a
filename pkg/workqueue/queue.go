// Package workqueue provides a thread-safe FIFO work queue for the
// controller/worker pattern: any number of producers push discrete work
// items, any number of consumers pop them, and an explicit closed state lets
// consumers tell "no work right now" apart from "no more work ever".
//
// A Queue is shared by pointer; the Producer and Consumer handles minted by
// Queue.Producer and Queue.Consumer are thin views over the same interior.
// Producer handles are reference counted: when the last minted producer is
// closed, the queue closes itself. A queue that never minted a producer is
// only ever closed explicitly.
package workqueue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quadgatefoundation/workctl/internal/syncx"
)

// Config configures a Queue.
type Config struct {
	// Name identifies the queue in metrics. Defaults to a random UUID.
	Name string

	// Capacity bounds the queue. Zero or negative means unbounded.
	Capacity int
}

// Queue is a multi-producer multi-consumer FIFO queue of work items.
//
// Pop order is FIFO over the merged stream of all pushes, serialized by the
// internal lock. Once closed, pushes fail with ErrQueueClosed but queued
// items remain poppable until drained.
type Queue[T any] struct {
	name     string
	capacity int

	mu        sync.Mutex
	items     []T
	closed    bool
	producers int
	notEmpty  syncx.Pulse
	notFull   syncx.Pulse
}

// New creates an empty, open, unbounded queue.
func New[T any]() *Queue[T] {
	return NewWithConfig[T](Config{})
}

// NewBounded creates an empty, open queue holding at most capacity items.
// A capacity below one falls back to unbounded.
func NewBounded[T any](capacity int) *Queue[T] {
	return NewWithConfig[T](Config{Capacity: capacity})
}

// NewWithConfig creates a queue from an explicit configuration.
func NewWithConfig[T any](cfg Config) *Queue[T] {
	if cfg.Name == "" {
		cfg.Name = uuid.NewString()
	}
	if cfg.Capacity < 0 {
		cfg.Capacity = 0
	}
	return &Queue[T]{
		name:     cfg.Name,
		capacity: cfg.Capacity,
		notEmpty: syncx.NewPulse(),
		notFull:  syncx.NewPulse(),
	}
}

// Name returns the queue's identity used as a metrics label.
func (q *Queue[T]) Name() string {
	return q.name
}

// Cap returns the configured capacity; zero means unbounded.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// Len returns the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsClosed reports whether Close has been called.
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// full reports capacity exhaustion. Callers hold q.mu.
func (q *Queue[T]) full() bool {
	return q.capacity > 0 && len(q.items) >= q.capacity
}

// Push appends item at the tail and wakes waiting consumers. On a bounded
// queue at capacity, Push blocks until a consumer makes room or the queue is
// closed. Returns ErrQueueClosed if the queue is (or becomes) closed.
func (q *Queue[T]) Push(item T) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrQueueClosed
		}
		if !q.full() {
			q.items = append(q.items, item)
			q.notEmpty.Broadcast()
			q.mu.Unlock()
			return nil
		}
		room := q.notFull.Ready()
		q.mu.Unlock()
		syncx.Wait(room)
	}
}

// TryPush appends item without blocking. Returns ErrQueueFull if a bounded
// queue is at capacity, ErrQueueClosed if the queue is closed.
func (q *Queue[T]) TryPush(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.full() {
		return ErrQueueFull
	}
	q.items = append(q.items, item)
	q.notEmpty.Broadcast()
	return nil
}

// PushTimeout is Push with a deadline. Returns ErrTimedOut if no room opened
// up within timeout.
func (q *Queue[T]) PushTimeout(item T, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrQueueClosed
		}
		if !q.full() {
			q.items = append(q.items, item)
			q.notEmpty.Broadcast()
			q.mu.Unlock()
			return nil
		}
		room := q.notFull.Ready()
		q.mu.Unlock()
		if !syncx.WaitTimer(room, timer) {
			return ErrTimedOut
		}
	}
}

// Pop removes and returns the head item, blocking while the queue is empty
// and open. Once the queue is both empty and closed, Pop returns
// ErrQueueClosed; that is how workers detect shutdown.
func (q *Queue[T]) Pop() (T, error) {
	for {
		item, ok, err := q.takeHead()
		if ok || err != nil {
			return item, err
		}
		q.mu.Lock()
		if len(q.items) == 0 && !q.closed {
			ready := q.notEmpty.Ready()
			q.mu.Unlock()
			syncx.Wait(ready)
			continue
		}
		q.mu.Unlock()
	}
}

// TryPop removes and returns the head item if one is present. The second
// return value reports success. An empty queue yields (zero, false) whether
// open or closed; use Pop or IsClosed when the distinction matters.
func (q *Queue[T]) TryPop() (T, bool) {
	item, ok, _ := q.takeHead()
	return item, ok
}

// PopTimeout is Pop with a deadline. Returns ErrTimedOut if no item arrived
// and the queue did not close within timeout.
func (q *Queue[T]) PopTimeout(timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		item, ok, err := q.takeHead()
		if ok || err != nil {
			return item, err
		}
		q.mu.Lock()
		if len(q.items) == 0 && !q.closed {
			ready := q.notEmpty.Ready()
			q.mu.Unlock()
			if !syncx.WaitTimer(ready, timer) {
				var zero T
				return zero, ErrTimedOut
			}
			continue
		}
		q.mu.Unlock()
	}
}

// PopContext is Pop with cancellation. Returns ctx.Err() if ctx is done
// before an item arrives or the queue closes. Workers that loop on a
// shutdown signal derive ctx from it and treat cancellation like closure.
func (q *Queue[T]) PopContext(ctx context.Context) (T, error) {
	for {
		item, ok, err := q.takeHead()
		if ok || err != nil {
			return item, err
		}
		q.mu.Lock()
		if len(q.items) == 0 && !q.closed {
			ready := q.notEmpty.Ready()
			q.mu.Unlock()
			if werr := syncx.WaitContext(ctx, ready); werr != nil {
				var zero T
				return zero, werr
			}
			continue
		}
		q.mu.Unlock()
	}
}

// takeHead removes the head item under the lock. ok reports an item was
// taken; err is ErrQueueClosed once the queue is empty and closed.
func (q *Queue[T]) takeHead() (T, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) > 0 {
		item := q.items[0]
		q.items[0] = zero
		q.items = q.items[1:]
		if q.capacity > 0 {
			q.notFull.Broadcast()
		}
		return item, true, nil
	}
	if q.closed {
		return zero, false, ErrQueueClosed
	}
	return zero, false, nil
}

// Close marks the queue closed. Pending items remain poppable; every blocked
// push, and every pop that finds the queue drained, is released with
// ErrQueueClosed. Idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}
