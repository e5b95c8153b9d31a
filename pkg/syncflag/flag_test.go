package syncflag

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFlag_GetSet(t *testing.T) {
	f := New(false)

	if f.Get() {
		t.Error("Get() = true, want initial false")
	}
	f.Set(true)
	if !f.Get() {
		t.Error("Get() = false after Set(true)")
	}
	f.Set(false)
	if f.Get() {
		t.Error("Get() = true after Set(false)")
	}
}

func TestFlag_SetIdempotent(t *testing.T) {
	f := New(true)

	gen := f.Generation()
	f.Set(true)
	f.Set(true)

	if f.Generation() != gen {
		t.Errorf("Generation() advanced to %d on no-op sets, want %d", f.Generation(), gen)
	}
	if !f.Get() {
		t.Error("Get() = false, want true")
	}
}

func TestFlag_WaitReturnsImmediately(t *testing.T) {
	f := New(true)

	done := make(chan struct{})
	go func() {
		f.Wait(true)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait(true) blocked although the flag already holds true")
	}
}

// Ten workers block on the flag; all must return within a bounded grace
// period once the controller sets it.
func TestFlag_SetReleasesAllWaiters(t *testing.T) {
	f := New(false)

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Wait(true)
		}()
	}

	time.Sleep(10 * time.Millisecond)
	f.Set(true)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("not all waiters returned within 100ms of Set(true)")
	}
}

func TestFlag_WaitSeesOnlyFinalSet(t *testing.T) {
	f := New(false)

	released := make(chan struct{})
	go func() {
		f.Wait(true)
		close(released)
	}()

	time.Sleep(10 * time.Millisecond)

	// A transition the waiter is not waiting for must not release it.
	f.Set(false)
	select {
	case <-released:
		t.Fatal("Wait(true) returned while the flag is still false")
	case <-time.After(30 * time.Millisecond):
	}

	f.Set(true)
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Wait(true) did not return after Set(true)")
	}
}

func TestFlag_WaitTimeout(t *testing.T) {
	f := New(false)

	if err := f.WaitTimeout(true, 30*time.Millisecond); !errors.Is(err, ErrTimedOut) {
		t.Errorf("WaitTimeout() error = %v, want ErrTimedOut", err)
	}

	f.Set(true)
	if err := f.WaitTimeout(true, 30*time.Millisecond); err != nil {
		t.Errorf("WaitTimeout() error = %v on satisfied predicate", err)
	}
}

func TestFlag_WaitContext(t *testing.T) {
	f := New(false)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		errs <- f.WaitContext(ctx, true)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errs:
		if err != context.Canceled {
			t.Errorf("WaitContext() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitContext() was not released by cancellation")
	}
}

func TestChecker_TracksGenerations(t *testing.T) {
	f := New(false)
	c := f.Checker()

	if c.Changed() {
		t.Error("Changed() = true on a freshly minted checker")
	}
	if c.Value() {
		t.Error("Value() = true, want primed false")
	}

	f.Set(true)
	if !c.Changed() {
		t.Error("Changed() = false after a transition")
	}

	if got := c.Sync(); !got {
		t.Error("Sync() = false after Set(true)")
	}
	if c.Changed() {
		t.Error("Changed() = true immediately after Sync")
	}

	// No-op set: nothing to notice.
	f.Set(true)
	if c.Changed() {
		t.Error("Changed() = true after an idempotent Set")
	}
}

func TestFlag_Name(t *testing.T) {
	f := NewNamed("shutdown", false)
	if got := f.Name(); got != "shutdown" {
		t.Errorf("Name() = %q, want shutdown", got)
	}
	if New(false).Name() == "" {
		t.Error("Name() on unnamed flag is empty, want generated id")
	}
}

func TestFlag_ConcurrentSetGet(t *testing.T) {
	f := New(false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v bool) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				f.Set(v)
				f.Get()
			}
		}(i%2 == 0)
	}
	wg.Wait()

	// The final value is whichever writer won; the flag must simply still
	// answer coherently.
	f.Set(true)
	if !f.Get() {
		t.Error("Get() = false after final Set(true)")
	}
}
