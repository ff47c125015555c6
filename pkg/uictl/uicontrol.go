// Package uictl defines read-only controls that let UI components poll
// live values owned elsewhere.
package uictl

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

// Dial reads a single value.
type Dial[N Number] interface {
	Read() N
}

// CappedDial is a Dial with an upper bound, e.g. elapsed seconds against a
// recording ceiling.
type CappedDial[N Number] interface {
	Dial[N]
	Cap() (num, max N)
}

// Levels reads a window of samples.
type Levels[N Number] interface {
	Read() []N
}

// DialFunc adapts a function to Dial.
type DialFunc[N Number] func() N

func (f DialFunc[N]) Read() N { return f() }

// Capped pairs a Dial with a fixed maximum.
type Capped[N Number] struct {
	Dial[N]
	Max N
}

// Cap returns the current value and the maximum.
func (c Capped[N]) Cap() (num, max N) {
	return c.Read(), c.Max
}

// Fraction returns num/max clamped to [0, 1].
func Fraction[N Number](d CappedDial[N]) float64 {
	num, max := d.Cap()
	if max <= 0 {
		return 0
	}

	f := float64(num) / float64(max)

	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
