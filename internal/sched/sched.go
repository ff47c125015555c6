// Package sched runs delayed and posted callbacks on a single logical thread.
//
// Every timer in the login flow (stage auto-advance, simulated latency,
// recording ticks) is a scheduled event carrying a cancellation Token. A
// cancelled token guarantees its callback never runs, even when the timer had
// already fired and the callback was sitting in a dispatch queue.
package sched

import (
	"sync/atomic"
	"time"
)

// Scheduler schedules callbacks. Implementations run all callbacks
// sequentially, never concurrently with each other.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time
	// After runs fn once d has elapsed.
	After(d time.Duration, fn func()) *Token
	// Post runs fn as soon as possible, after already queued callbacks.
	// It is safe to call from any goroutine.
	Post(fn func()) *Token
}

// Token cancels a scheduled callback. The zero value and nil are valid and
// behave as an already-fired token.
type Token struct {
	cancelled atomic.Bool
	stop      func() bool
}

// Cancel prevents the callback from running. Safe to call multiple times.
func (t *Token) Cancel() {
	if t == nil {
		return
	}

	t.cancelled.Store(true)

	if t.stop != nil {
		t.stop()
	}
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	if t == nil {
		return false
	}

	return t.cancelled.Load()
}

// guard wraps fn so it becomes a no-op once the token is cancelled.
func (t *Token) guard(fn func()) func() {
	return func() {
		if t.Cancelled() {
			return
		}

		fn()
	}
}
