package sched

import (
	"context"
	"sync"
	"time"
)

// Dispatcher hands a callback to the goroutine that owns the state.
// It must not block and must preserve order.
type Dispatcher func(fn func())

// Loop is the wall-clock Scheduler. Timers fire on runtime goroutines and
// their callbacks are routed through the dispatcher, so state owned by the
// dispatch target is only ever touched from one goroutine.
type Loop struct {
	dispatch Dispatcher
}

// NewLoop creates a wall-clock scheduler that routes callbacks to dispatch.
func NewLoop(dispatch Dispatcher) *Loop {
	return &Loop{dispatch: dispatch}
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// After schedules fn after d.
func (l *Loop) After(d time.Duration, fn func()) *Token {
	tok := &Token{}
	guarded := tok.guard(fn)

	timer := time.AfterFunc(d, func() {
		l.dispatch(guarded)
	})
	tok.stop = timer.Stop

	return tok
}

// Post dispatches fn immediately.
func (l *Loop) Post(fn func()) *Token {
	tok := &Token{}
	l.dispatch(tok.guard(fn))

	return tok
}

// Queue is an unbounded FIFO of callbacks. Dispatch never blocks, which makes
// it safe to call from inside a callback that is currently being executed.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	signal  chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// Dispatch appends fn to the queue. It satisfies Dispatcher.
func (q *Queue) Dispatch(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Run pumps queued callbacks into exec, one at a time and in order, until ctx
// is done. exec may run the callback directly or forward it to another event
// loop (e.g. a bubbletea program).
func (q *Queue) Run(ctx context.Context, exec func(fn func())) {
	for {
		for {
			fn, ok := q.pop()
			if !ok {
				break
			}

			exec(fn)
		}

		select {
		case <-ctx.Done():
			return
		case <-q.signal:
		}
	}
}

// Len returns the number of callbacks waiting to be pumped.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}

func (q *Queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil, false
	}

	fn := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]

	return fn, true
}
