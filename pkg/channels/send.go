// Package channels holds small helpers for moving values between goroutines
// without letting a slow receiver stall the sender.
package channels

import (
	"errors"
	"time"
)

var (
	ErrChannelClosed  = errors.New("channel closed")
	ErrChannelTimeout = errors.New("send timeout")
	ErrChannelFull    = errors.New("channel full")
)

// SendNonBlock delivers msg if ch has room right now. It returns
// ErrChannelFull otherwise and ErrChannelClosed if ch was closed.
func SendNonBlock[T any](ch chan<- T, msg T) (err error) {
	defer recoverClosed(&err)

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// SendWithTimeout delivers msg, waiting at most timeout.
func SendWithTimeout[T any](ch chan<- T, msg T, timeout time.Duration) (err error) {
	defer recoverClosed(&err)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- msg:
		return nil
	case <-timer.C:
		return ErrChannelTimeout
	}
}

// ReceiveAll collects values from ch until it is closed, no value arrives
// within idle, or limit values have been read. A limit of zero means no limit.
func ReceiveAll[T any](ch <-chan T, idle time.Duration, limit int) []T {
	var out []T

	timer := time.NewTimer(idle)
	defer timer.Stop()

	for limit <= 0 || len(out) < limit {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}

			out = append(out, v)
			timer.Reset(idle)
		case <-timer.C:
			return out
		}
	}

	return out
}

// sending on a closed channel panics; turn that into ErrChannelClosed.
func recoverClosed(err *error) {
	if r := recover(); r != nil {
		*err = ErrChannelClosed
	}
}
