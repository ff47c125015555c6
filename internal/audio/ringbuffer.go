package audio

import (
	"encoding/binary"
	"sync"
)

// SampleRingBuffer keeps the most recent samples for the level meter. One
// goroutine writes; any number may read.
type SampleRingBuffer struct {
	mu      sync.RWMutex
	samples []int16
	head    int // next write position
	count   int
}

// NewSampleRingBuffer creates a ring buffer holding up to capacity samples.
func NewSampleRingBuffer(capacity int) *SampleRingBuffer {
	return &SampleRingBuffer{samples: make([]int16, capacity)}
}

// Write appends samples, overwriting the oldest once full.
func (b *SampleRingBuffer) Write(samples []int16) {
	if len(samples) == 0 || len(b.samples) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	size := len(b.samples)

	for _, s := range samples {
		b.samples[b.head] = s
		b.head = (b.head + 1) % size
	}

	b.count = min(b.count+len(samples), size)
}

// ReadSamples returns up to n of the newest samples, oldest first.
func (b *SampleRingBuffer) ReadSamples(n int) []int16 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 || n <= 0 {
		return nil
	}

	n = min(n, b.count)
	size := len(b.samples)
	start := (b.head - n + size) % size

	out := make([]int16, n)
	for i := range out {
		out[i] = b.samples[(start+i)%size]
	}

	return out
}

// Count returns how many samples are held.
func (b *SampleRingBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.count
}

// Reset drops all samples.
func (b *SampleRingBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.head = 0
	b.count = 0
}

// BytesToInt16 decodes S16LE bytes. A trailing odd byte is ignored.
func BytesToInt16(data []byte) []int16 {
	n := len(data) / 2
	if n == 0 {
		return nil
	}

	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:])) //nolint:gosec // reinterpreting sample bits
	}

	return samples
}

// Meter exposes the newest window of samples as uictl.Levels[int16].
type Meter struct {
	buf    *SampleRingBuffer
	window int
}

// NewMeter reads window samples at a time from buf.
func NewMeter(buf *SampleRingBuffer, window int) *Meter {
	return &Meter{buf: buf, window: window}
}

// Read returns the newest samples.
func (m *Meter) Read() []int16 {
	return m.buf.ReadSamples(m.window)
}
