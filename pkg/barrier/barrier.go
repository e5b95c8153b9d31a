// Package barrier provides a cyclic rendezvous point: N participants block
// in Wait until all N have arrived, then all are released at once and the
// barrier resets for the next phase.
//
// Misuse is the caller's responsibility: more than N concurrent arrivals in
// one phase, or a participant that never arrives, is not detected. A
// participant that must be able to abandon the rendezvous (for example on
// shutdown) uses WaitContext, which withdraws its arrival cleanly.
package barrier

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/quadgatefoundation/workctl/internal/syncx"
)

// Barrier blocks parties participants per phase. It is shared by pointer
// and usable repeatedly across phases.
type Barrier struct {
	name    string
	parties int

	mu      sync.Mutex
	arrived int
	phase   uint64
	pulse   syncx.Pulse
}

// New creates a barrier for parties participants, named with a random
// UUID. Panics if parties is less than one.
func New(parties int) *Barrier {
	return NewNamed(uuid.NewString(), parties)
}

// NewNamed creates a barrier with an explicit name for metrics. Panics if
// parties is less than one.
func NewNamed(name string, parties int) *Barrier {
	if parties < 1 {
		panic("barrier: parties must be at least 1")
	}
	return &Barrier{
		name:    name,
		parties: parties,
		pulse:   syncx.NewPulse(),
	}
}

// Name returns the barrier's identity used as a metrics label.
func (b *Barrier) Name() string {
	return b.name
}

// Parties returns the number of participants per phase.
func (b *Barrier) Parties() int {
	return b.parties
}

// Waiting returns the number of participants currently blocked in the
// present phase.
func (b *Barrier) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.arrived
}

// Phase returns the number of completed rendezvous so far.
func (b *Barrier) Phase() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Wait blocks until the Nth participant of the current phase arrives, then
// returns to all N. The phase counter guards against a waiter from an
// earlier phase slipping into a later one on a shared wake.
func (b *Barrier) Wait() {
	b.mu.Lock()

	b.arrived++
	if b.arrived == b.parties {
		b.release()
		b.mu.Unlock()
		return
	}

	phase := b.phase
	for b.phase == phase {
		ready := b.pulse.Ready()
		b.mu.Unlock()
		syncx.Wait(ready)
		b.mu.Lock()
	}
	b.mu.Unlock()
}

// WaitContext is Wait with cancellation. If ctx is done before the phase
// completes, the participant's arrival is withdrawn and ctx.Err() is
// returned; the remaining participants keep waiting for a full party. If
// the phase completed concurrently with cancellation, the rendezvous wins
// and WaitContext returns nil.
func (b *Barrier) WaitContext(ctx context.Context) error {
	b.mu.Lock()

	b.arrived++
	if b.arrived == b.parties {
		b.release()
		b.mu.Unlock()
		return nil
	}

	phase := b.phase
	for b.phase == phase {
		ready := b.pulse.Ready()
		b.mu.Unlock()
		err := syncx.WaitContext(ctx, ready)
		b.mu.Lock()
		if err != nil && b.phase == phase {
			b.arrived--
			b.mu.Unlock()
			return err
		}
	}
	b.mu.Unlock()
	return nil
}

// release completes the current phase. Callers hold b.mu.
func (b *Barrier) release() {
	b.arrived = 0
	b.phase++
	b.pulse.Broadcast()
}
