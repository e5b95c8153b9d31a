// Package syncx holds the wait/wake machinery shared by the workqueue,
// syncflag and barrier packages.
//
// All three primitives block the same way: hold the primitive's lock, check
// the predicate, and if it does not hold, snapshot the pulse's Ready channel
// before releasing the lock, then select on that channel (plus an optional
// timer or context). Any Broadcast issued after the snapshot closes the
// snapshotted channel, so a waiter can never sleep through a wake that
// happened between its predicate check and its select.
package syncx

import (
	"context"
	"time"
)

// Pulse is a reusable broadcast signal. The zero value is not usable; create
// one with NewPulse.
//
// Pulse carries no lock of its own: Ready and Broadcast must be called while
// holding the lock that guards the predicate the waiters are checking.
// Receiving from a snapshotted Ready channel happens outside that lock.
type Pulse struct {
	ch chan struct{}
}

// NewPulse returns a Pulse with no pending broadcast.
func NewPulse() Pulse {
	return Pulse{ch: make(chan struct{})}
}

// Ready returns the channel that the next Broadcast will close. Callers
// snapshot it under the owning lock, release the lock, and receive.
func (p *Pulse) Ready() <-chan struct{} {
	return p.ch
}

// Broadcast wakes every goroutine holding a snapshot of the current Ready
// channel and installs a fresh channel for future waiters.
func (p *Pulse) Broadcast() {
	close(p.ch)
	p.ch = make(chan struct{})
}

// Wait blocks until ready is closed.
func Wait(ready <-chan struct{}) {
	<-ready
}

// WaitTimer blocks until ready is closed or the timer fires. It reports
// whether the wake arrived before the deadline. The timer is shared across
// iterations of a wait loop; the caller owns stopping it.
func WaitTimer(ready <-chan struct{}, timer *time.Timer) bool {
	select {
	case <-ready:
		return true
	case <-timer.C:
		return false
	}
}

// WaitContext blocks until ready is closed or ctx is done, returning
// ctx.Err() in the latter case.
func WaitContext(ctx context.Context, ready <-chan struct{}) error {
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
