package app

import (
	"sync"
	"time"
)

// TimerRegistry keeps at most one pending deferred callback per room.
//
// Schedule replaces (and stops) whatever was pending for the room. A callback runs with the
// room's lock held and only if it is still the registered timer when it acquires that lock,
// so a callback that lost a race against Cancel or a newer Schedule never runs.
type TimerRegistry struct {
	locks *KeyedMutex

	mu     sync.Mutex
	timers map[string]*pendingTimer
}

type pendingTimer struct {
	timer *time.Timer
	fn    func()
}

func NewTimerRegistry(locks *KeyedMutex) *TimerRegistry {
	return &TimerRegistry{
		locks:  locks,
		timers: make(map[string]*pendingTimer),
	}
}

// Schedule registers fn to run after delay. Callers that hold the room lock get the
// guarantee that no previously scheduled callback for the room will run afterwards.
func (r *TimerRegistry) Schedule(roomCode string, delay time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.timers[roomCode]; ok {
		prev.timer.Stop()
	}
	p := &pendingTimer{fn: fn}
	r.timers[roomCode] = p
	p.timer = time.AfterFunc(delay, func() { r.fire(roomCode, p) })
}

// Cancel stops and removes the pending callback for the room. It reports whether one was
// pending; calling it with nothing pending is a no-op.
func (r *TimerRegistry) Cancel(roomCode string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.timers[roomCode]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(r.timers, roomCode)
	return true
}

// Pending reports whether a callback is registered for the room.
func (r *TimerRegistry) Pending(roomCode string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[roomCode]
	return ok
}

// Len returns the number of rooms with a pending callback.
func (r *TimerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Stop cancels every pending callback.
func (r *TimerRegistry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, p := range r.timers {
		p.timer.Stop()
		delete(r.timers, code)
	}
}

func (r *TimerRegistry) fire(roomCode string, p *pendingTimer) {
	r.locks.Lock(roomCode)
	defer r.locks.Unlock(roomCode)

	r.mu.Lock()
	if r.timers[roomCode] != p {
		r.mu.Unlock()
		return
	}
	delete(r.timers, roomCode)
	r.mu.Unlock()

	p.fn()
}
