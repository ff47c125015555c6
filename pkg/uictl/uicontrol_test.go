package uictl_test

import (
	"testing"

	"github.com/alkime/healthvoice/pkg/uictl"
	"github.com/stretchr/testify/assert"
)

func TestFraction(t *testing.T) {
	elapsed := 0
	dial := uictl.Capped[int]{Dial: uictl.DialFunc[int](func() int { return elapsed }), Max: 5}

	assert.InDelta(t, 0.0, uictl.Fraction[int](dial), 1e-9)

	elapsed = 2
	num, max := dial.Cap()
	assert.Equal(t, 2, num)
	assert.Equal(t, 5, max)
	assert.InDelta(t, 0.4, uictl.Fraction[int](dial), 1e-9)

	elapsed = 9
	assert.InDelta(t, 1.0, uictl.Fraction[int](dial), 1e-9)

	assert.InDelta(t, 0.0, uictl.Fraction[int](uictl.Capped[int]{Dial: dial, Max: 0}), 1e-9)
}
