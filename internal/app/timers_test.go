package app

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerRegistryScheduleReplaces(t *testing.T) {
	reg := NewTimerRegistry(NewKeyedMutex())
	var first, second atomic.Int32

	reg.Schedule("1234", 20*time.Millisecond, func() { first.Add(1) })
	reg.Schedule("1234", 20*time.Millisecond, func() { second.Add(1) })
	if reg.Len() != 1 {
		t.Fatalf("expected one pending timer, got %d", reg.Len())
	}

	time.Sleep(60 * time.Millisecond)
	if first.Load() != 0 || second.Load() != 1 {
		t.Fatalf("expected only the replacement to fire, got first=%d second=%d", first.Load(), second.Load())
	}
	if reg.Pending("1234") {
		t.Fatalf("expected registry empty after firing")
	}
}

func TestTimerRegistryCancel(t *testing.T) {
	reg := NewTimerRegistry(NewKeyedMutex())
	var fired atomic.Int32

	if reg.Cancel("1234") {
		t.Fatalf("cancel with nothing pending must report false")
	}
	reg.Schedule("1234", 20*time.Millisecond, func() { fired.Add(1) })
	if !reg.Cancel("1234") {
		t.Fatalf("expected cancel to report a pending timer")
	}
	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("cancelled timer fired")
	}
}

func TestTimerRegistryCallbackHoldsRoomLock(t *testing.T) {
	locks := NewKeyedMutex()
	reg := NewTimerRegistry(locks)
	var fired atomic.Int32

	// Hold the room lock while the timer expires, then cancel before releasing it. The
	// callback is already waiting for the lock but must not run.
	locks.Lock("1234")
	reg.Schedule("1234", 5*time.Millisecond, func() { fired.Add(1) })
	time.Sleep(30 * time.Millisecond)
	reg.Cancel("1234")
	locks.Unlock("1234")

	time.Sleep(30 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("stale callback ran after cancel")
	}
	if locks.Len() != 0 {
		t.Fatalf("expected no lock entries left, got %d", locks.Len())
	}
}

func TestTimerRegistryRoomsAreIndependent(t *testing.T) {
	reg := NewTimerRegistry(NewKeyedMutex())
	var wg sync.WaitGroup
	wg.Add(2)
	reg.Schedule("1111", 5*time.Millisecond, wg.Done)
	reg.Schedule("2222", 5*time.Millisecond, wg.Done)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timers for distinct rooms did not both fire")
	}
}

func TestTimerRegistryStop(t *testing.T) {
	reg := NewTimerRegistry(NewKeyedMutex())
	var fired atomic.Int32
	reg.Schedule("1111", 10*time.Millisecond, func() { fired.Add(1) })
	reg.Schedule("2222", 10*time.Millisecond, func() { fired.Add(1) })

	reg.Stop()
	time.Sleep(40 * time.Millisecond)
	if fired.Load() != 0 || reg.Len() != 0 {
		t.Fatalf("expected stop to cancel everything, fired=%d pending=%d", fired.Load(), reg.Len())
	}
}
