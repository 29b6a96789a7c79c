package server

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// ActionTimer enforces the per-seat action clock for one table. Arm schedules
// the timeout callback for a seat; any later Arm or Stop invalidates the
// pending timer, so a stale callback for an already-resolved turn never
// fires through.
type ActionTimer struct {
	clock   quartz.Clock
	timeout time.Duration

	mu    sync.Mutex
	timer *quartz.Timer
	gen   int
}

// NewActionTimer creates a timer using the given clock. Tests inject a
// quartz mock clock to drive timeouts deterministically.
func NewActionTimer(clock quartz.Clock, timeout time.Duration) *ActionTimer {
	return &ActionTimer{
		clock:   clock,
		timeout: timeout,
	}
}

// Arm schedules expire(seat) after the configured timeout, replacing any
// pending timer.
func (t *ActionTimer) Arm(seat int, expire func(seat int)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen

	t.timer = t.clock.AfterFunc(t.timeout, func() {
		t.mu.Lock()
		stale := gen != t.gen
		t.mu.Unlock()
		if stale {
			return
		}
		expire(seat)
	})
}

// Stop cancels any pending timeout.
func (t *ActionTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// Timeout returns the configured action clock duration.
func (t *ActionTimer) Timeout() time.Duration {
	return t.timeout
}
