// Package syncflag provides a shared boolean control signal for the
// controller/worker pattern. A controller flips the flag (for example
// "stop" or "pause") and any number of workers observe it: Get is a
// lock-free read for the hot check-and-continue path, Wait blocks without
// spinning until the flag reaches a wanted value, and a Checker handle
// answers "has this changed since I last looked?" without touching the
// shared lock.
//
// The flag is level-triggered: there is nothing to close or drain, and no
// operation fails under normal use.
package syncflag

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/quadgatefoundation/workctl/internal/syncx"
)

// ErrTimedOut is returned by WaitTimeout when the deadline passes before
// the flag reaches the wanted value.
var ErrTimedOut = errors.New("syncflag: timed out")

// Flag is a shared boolean. It is shared by pointer; every goroutine
// holding the pointer may both read and write (multi-writer,
// multi-reader).
type Flag struct {
	name string

	// value and gen are published under mu but read lock-free. gen
	// advances once per actual value transition.
	value atomic.Bool
	gen   atomic.Uint64

	mu    sync.Mutex
	pulse syncx.Pulse
}

// New creates a flag holding initial, named with a random UUID.
func New(initial bool) *Flag {
	return NewNamed(uuid.NewString(), initial)
}

// NewNamed creates a flag holding initial with an explicit name for
// metrics.
func NewNamed(name string, initial bool) *Flag {
	f := &Flag{
		name:  name,
		pulse: syncx.NewPulse(),
	}
	f.value.Store(initial)
	return f
}

// Name returns the flag's identity used as a metrics label.
func (f *Flag) Name() string {
	return f.name
}

// Get returns the current value. It never blocks and takes no lock.
func (f *Flag) Get() bool {
	return f.value.Load()
}

// Generation returns the number of value transitions so far. It pairs with
// Checker for cheap change detection.
func (f *Flag) Generation() uint64 {
	return f.gen.Load()
}

// Set stores value and wakes every goroutine blocked in a Wait variant
// whose predicate now holds. Setting the value the flag already holds is a
// no-op (waiters for that value were released on the earlier transition).
func (f *Flag) Set(value bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.value.Load() == value {
		return
	}
	f.value.Store(value)
	f.gen.Add(1)
	f.pulse.Broadcast()
}

// Wait blocks until Get would return want. Returns immediately if it
// already does.
func (f *Flag) Wait(want bool) {
	for {
		ready, ok := f.arm(want)
		if ok {
			return
		}
		syncx.Wait(ready)
	}
}

// WaitTimeout is Wait with a deadline; it returns ErrTimedOut if the flag
// did not reach want within timeout.
func (f *Flag) WaitTimeout(want bool, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		ready, ok := f.arm(want)
		if ok {
			return nil
		}
		if !syncx.WaitTimer(ready, timer) {
			return ErrTimedOut
		}
	}
}

// WaitContext is Wait with cancellation; it returns ctx.Err() if ctx is
// done before the flag reaches want.
func (f *Flag) WaitContext(ctx context.Context, want bool) error {
	for {
		ready, ok := f.arm(want)
		if ok {
			return nil
		}
		if err := syncx.WaitContext(ctx, ready); err != nil {
			return err
		}
	}
}

// arm checks the predicate under the lock and, when it does not hold,
// snapshots the wake channel the next Set will close. A Set between the
// check and the caller's receive lands on the snapshotted channel, so the
// wake cannot be lost.
func (f *Flag) arm(want bool) (<-chan struct{}, bool) {
	if f.value.Load() == want {
		return nil, true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.value.Load() == want {
		return nil, true
	}
	return f.pulse.Ready(), false
}

// Checker is a per-goroutine view of a Flag that caches the last observed
// value and generation. Changed probes for staleness without contending
// the flag's lock; Sync refreshes the cache. A Checker is not safe for
// concurrent use; mint one per goroutine.
type Checker struct {
	f     *Flag
	gen   uint64
	value bool
}

// Checker mints a local checker primed with the flag's current state.
func (f *Flag) Checker() *Checker {
	c := &Checker{f: f}
	c.Sync()
	return c
}

// Changed reports whether the flag has transitioned since the last Sync.
func (c *Checker) Changed() bool {
	return c.f.gen.Load() != c.gen
}

// Value returns the value observed at the last Sync, without touching the
// shared flag.
func (c *Checker) Value() bool {
	return c.value
}

// Sync refreshes the cache against the shared flag and returns the current
// value.
func (c *Checker) Sync() bool {
	c.f.mu.Lock()
	c.gen = c.f.gen.Load()
	c.value = c.f.value.Load()
	c.f.mu.Unlock()
	return c.value
}
