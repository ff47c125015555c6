package audio_test

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/alkime/healthvoice/internal/audio"
	"github.com/alkime/healthvoice/internal/recorder"
	"github.com/alkime/healthvoice/pkg/channels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	captureErr error
	startErr   error

	dataC       chan<- audio.DataPacket
	started     bool
	deallocated bool
	dropped     int64
}

func (d *fakeDevice) EnumerateDevices(context.Context) ([]audio.Info, error) {
	return []audio.Info{{Name: "fake", IsDefault: true}}, nil
}

func (d *fakeDevice) CaptureInto(_ context.Context, dataC chan<- audio.DataPacket) error {
	if d.captureErr != nil {
		return d.captureErr
	}

	d.dataC = dataC

	return nil
}

func (d *fakeDevice) Start(context.Context) error {
	if d.startErr != nil {
		return d.startErr
	}

	d.started = true

	return nil
}

func (d *fakeDevice) Stop(context.Context) error {
	d.started = false
	return nil
}

func (d *fakeDevice) IsStarted() bool        { return d.started }
func (d *fakeDevice) Dealloc(context.Context) { d.deallocated = true }
func (d *fakeDevice) Dropped() int64          { return d.dropped }

// push delivers a packet the way the malgo callback does.
func (d *fakeDevice) push(p audio.DataPacket) {
	for channels.SendNonBlock(d.dataC, p) != nil {
		time.Sleep(time.Millisecond)
	}
}

// tone returns n samples of a 440Hz sine as S16LE.
func tone(n int) []byte {
	out := make([]byte, n*2)
	for i := range n {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/16000))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}

	return out
}

func newMic(dev *fakeDevice) *audio.Microphone {
	mic := audio.NewMicrophone(audio.DefaultDeviceConfig(), nil)
	mic.NewDevice = func(*audio.DeviceConfig) audio.Device { return dev }

	return mic
}

func TestMicrophone_CapturesToClip(t *testing.T) {
	dev := &fakeDevice{}
	mic := newMic(dev)

	capture, err := mic.Open(context.Background())
	require.NoError(t, err)
	require.True(t, dev.started)

	// One second of audio in 100ms packets.
	pcm := tone(16000)
	for off := 0; off < len(pcm); off += 3200 {
		dev.push(pcm[off : off+3200])
	}

	first := <-capture.PCM()
	assert.Len(t, first, 3200)

	require.Eventually(t, func() bool {
		return len(mic.Meter().Read()) > 0
	}, time.Second, 5*time.Millisecond)

	handle, err := capture.Finalize()
	require.NoError(t, err)
	assert.False(t, dev.started)
	assert.True(t, dev.deallocated)

	clip, ok := handle.(*audio.Clip)
	require.True(t, ok)
	assert.Greater(t, clip.Size(), int64(0))
	assert.Equal(t, time.Second, clip.Duration())

	r, err := clip.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Len(t, data, int(clip.Size()))

	// The speech tap is closed once the capture is finalized.
	for range capture.PCM() {
	}
}

func TestMicrophone_Release(t *testing.T) {
	dev := &fakeDevice{}
	capture, err := newMic(dev).Open(context.Background())
	require.NoError(t, err)

	dev.push(tone(160))
	capture.Release()
	capture.Release()

	assert.True(t, dev.deallocated)
}

func TestMicrophone_DeniedAccess(t *testing.T) {
	tests := []struct {
		name string
		dev  *fakeDevice
	}{
		{name: "device init fails", dev: &fakeDevice{captureErr: errors.New("no input device")}},
		{name: "device start fails", dev: &fakeDevice{startErr: errors.New("access denied")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newMic(tt.dev).Open(context.Background())
			require.ErrorIs(t, err, recorder.ErrPermissionDenied)
			assert.True(t, tt.dev.deallocated)
		})
	}
}
