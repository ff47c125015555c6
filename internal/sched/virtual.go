package sched

import (
	"sync"
	"time"
)

type event struct {
	due time.Time
	seq uint64
	tok *Token
	fn  func()
}

// Virtual is a deterministic Scheduler driven by Advance. Nothing runs until
// the owner advances time, and callbacks run on the advancing goroutine in
// due-time order, ties broken by scheduling order.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	events []*event
}

// NewVirtual creates a virtual scheduler starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Now returns the virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.now
}

// After schedules fn at Now()+d.
func (v *Virtual) After(d time.Duration, fn func()) *Token {
	v.mu.Lock()
	defer v.mu.Unlock()

	if d < 0 {
		d = 0
	}

	tok := &Token{}
	v.seq++
	v.events = append(v.events, &event{
		due: v.now.Add(d),
		seq: v.seq,
		tok: tok,
		fn:  fn,
	})

	return tok
}

// Post schedules fn at the current virtual time. It runs on the next
// Advance, including Advance(0).
func (v *Virtual) Post(fn func()) *Token {
	return v.After(0, fn)
}

// Advance moves virtual time forward by d, running every callback that
// becomes due, including callbacks scheduled by other callbacks.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	for {
		ev := v.popDue(target)
		if ev == nil {
			break
		}

		if !ev.tok.Cancelled() {
			ev.fn()
		}
	}

	v.mu.Lock()
	if target.After(v.now) {
		v.now = target
	}
	v.mu.Unlock()
}

// Flush runs everything that is already due without moving time.
func (v *Virtual) Flush() {
	v.Advance(0)
}

// Pending returns the number of scheduled, non-cancelled callbacks.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := 0

	for _, ev := range v.events {
		if !ev.tok.Cancelled() {
			n++
		}
	}

	return n
}

func (v *Virtual) popDue(target time.Time) *event {
	v.mu.Lock()
	defer v.mu.Unlock()

	best := -1

	for i, ev := range v.events {
		if ev.due.After(target) {
			continue
		}

		if best < 0 || ev.due.Before(v.events[best].due) ||
			(ev.due.Equal(v.events[best].due) && ev.seq < v.events[best].seq) {
			best = i
		}
	}

	if best < 0 {
		return nil
	}

	ev := v.events[best]
	v.events = append(v.events[:best], v.events[best+1:]...)

	if ev.due.After(v.now) {
		v.now = ev.due
	}

	return ev
}
