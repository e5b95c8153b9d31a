package workqueue

import (
	"context"
	"sync"
	"time"
)

// Producer is a push-side handle to a Queue. Handles are reference counted:
// the queue closes itself when its last minted producer is closed. Pushing
// through a handle after closing that handle is a caller error; the push is
// simply forwarded to the queue, which by then may already be closed.
type Producer[T any] struct {
	q    *Queue[T]
	once sync.Once
}

// Producer mints a new producer handle, incrementing the producer count.
func (q *Queue[T]) Producer() *Producer[T] {
	q.mu.Lock()
	q.producers++
	q.mu.Unlock()
	return &Producer[T]{q: q}
}

// Clone mints another producer handle for the same queue, typically to move
// into a different goroutine.
func (p *Producer[T]) Clone() *Producer[T] {
	return p.q.Producer()
}

// Push appends item at the tail of the underlying queue. See Queue.Push.
func (p *Producer[T]) Push(item T) error {
	return p.q.Push(item)
}

// TryPush appends item without blocking. See Queue.TryPush.
func (p *Producer[T]) TryPush(item T) error {
	return p.q.TryPush(item)
}

// PushTimeout is Push with a deadline. See Queue.PushTimeout.
func (p *Producer[T]) PushTimeout(item T, timeout time.Duration) error {
	return p.q.PushTimeout(item, timeout)
}

// Close releases the handle. When the count of minted producers reaches
// zero the queue is closed, signalling consumers that no more work is
// coming. Idempotent per handle.
func (p *Producer[T]) Close() {
	p.once.Do(func() {
		q := p.q
		q.mu.Lock()
		q.producers--
		last := q.producers == 0 && !q.closed
		if last {
			q.closed = true
			q.notEmpty.Broadcast()
			q.notFull.Broadcast()
		}
		q.mu.Unlock()
	})
}

// Consumer is a pop-side handle to a Queue. Consumers carry no reference
// count; dropping one has no effect on the queue's lifecycle.
type Consumer[T any] struct {
	q *Queue[T]
}

// Consumer mints a new consumer handle.
func (q *Queue[T]) Consumer() *Consumer[T] {
	return &Consumer[T]{q: q}
}

// Clone mints another consumer handle for the same queue.
func (c *Consumer[T]) Clone() *Consumer[T] {
	return c.q.Consumer()
}

// Pop removes and returns the head item, blocking while the queue is empty
// and open. See Queue.Pop.
func (c *Consumer[T]) Pop() (T, error) {
	return c.q.Pop()
}

// TryPop removes and returns the head item if one is present. See
// Queue.TryPop.
func (c *Consumer[T]) TryPop() (T, bool) {
	return c.q.TryPop()
}

// PopTimeout is Pop with a deadline. See Queue.PopTimeout.
func (c *Consumer[T]) PopTimeout(timeout time.Duration) (T, error) {
	return c.q.PopTimeout(timeout)
}

// PopContext is Pop with cancellation. See Queue.PopContext.
func (c *Consumer[T]) PopContext(ctx context.Context) (T, error) {
	return c.q.PopContext(ctx)
}

// Len returns the number of items currently queued.
func (c *Consumer[T]) Len() int {
	return c.q.Len()
}

// IsClosed reports whether the queue has been closed.
func (c *Consumer[T]) IsClosed() bool {
	return c.q.IsClosed()
}
