package workqueue

import "errors"

var (
	// ErrQueueClosed is returned by pushes after Close, and by pops once a
	// closed queue has drained.
	ErrQueueClosed = errors.New("workqueue: queue is closed")

	// ErrQueueFull is returned by TryPush on a bounded queue at capacity
	// (backpressure).
	ErrQueueFull = errors.New("workqueue: queue is full")

	// ErrTimedOut is returned by the timed push/pop variants when the
	// deadline passes before the operation can complete.
	ErrTimedOut = errors.New("workqueue: timed out")
)
