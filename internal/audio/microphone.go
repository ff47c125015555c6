package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alkime/healthvoice/internal/recorder"
	"github.com/alkime/healthvoice/pkg/channels"
)

const (
	// meterCapacity holds about two seconds of 16kHz audio.
	meterCapacity = 32000
	// meterWindow is what the waveform reads per frame.
	meterWindow = 1600

	encoderSendTimeout = 100 * time.Millisecond
)

// Clip is an in-memory MP3 recording.
type Clip struct {
	data     []byte
	duration time.Duration
}

// NewClip wraps encoded MP3 bytes.
func NewClip(data []byte, duration time.Duration) *Clip {
	return &Clip{data: data, duration: duration}
}

// Open returns a reader over the MP3 data.
func (c *Clip) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(c.data)), nil
}

// Size returns the MP3 size in bytes.
func (c *Clip) Size() int64 {
	return int64(len(c.data))
}

// Duration returns the length of the captured PCM.
func (c *Clip) Duration() time.Duration {
	return c.duration
}

// Microphone opens the capture device for one recording at a time and fans
// its packets out to the MP3 encoder, the speech tap and the level meter.
type Microphone struct {
	// NewDevice builds the device for each capture. Defaults to NewDevice.
	NewDevice func(conf *DeviceConfig) Device

	conf   DeviceConfig
	enc    EncoderConfig
	ring   *SampleRingBuffer
	logger *slog.Logger
}

// NewMicrophone creates a microphone for conf.
func NewMicrophone(conf DeviceConfig, logger *slog.Logger) *Microphone {
	if logger == nil {
		logger = slog.Default()
	}

	return &Microphone{
		NewDevice: NewDevice,
		conf:      conf,
		enc:       conf.Encoder(),
		ring:      NewSampleRingBuffer(meterCapacity),
		logger:    logger.With("component", "microphone"),
	}
}

// Meter returns the live level meter of the current capture.
func (m *Microphone) Meter() *Meter {
	return NewMeter(m.ring, meterWindow)
}

// Open allocates and starts the device. Any failure to acquire it is
// reported as recorder.ErrPermissionDenied.
func (m *Microphone) Open(ctx context.Context) (recorder.Capture, error) {
	buffer := max(m.conf.PacketBuffer, 1)

	c := &capture{
		dev:    m.NewDevice(&m.conf),
		bcast:  channels.NewBroadcaster[DataPacket](),
		encC:   make(chan []byte, buffer),
		tapC:   make(chan []byte, buffer),
		meterC: make(chan []byte, buffer),
		done:   make(chan struct{}),
		ring:   m.ring,
		rate:   m.enc.SampleRate,
		logger: m.logger,
	}

	if err := c.bcast.SubscribeWithTimeout(c.encC, encoderSendTimeout); err != nil {
		return nil, fmt.Errorf("failed to subscribe encoder: %w", err)
	}

	if err := c.bcast.Subscribe(c.tapC); err != nil {
		return nil, fmt.Errorf("failed to subscribe speech tap: %w", err)
	}

	if err := c.bcast.Subscribe(c.meterC); err != nil {
		return nil, fmt.Errorf("failed to subscribe level meter: %w", err)
	}

	enc, err := NewStreamingEncoder(m.enc, c.encC, &c.mp3)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	c.enc = enc.WithLogger(m.logger)

	bctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel

	input, err := c.bcast.Run(bctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start broadcaster: %w", err)
	}

	if err := c.dev.CaptureInto(ctx, input); err != nil {
		c.abort()
		return nil, fmt.Errorf("%w: %w", recorder.ErrPermissionDenied, err)
	}

	if err := c.dev.Start(ctx); err != nil {
		c.abort()
		return nil, fmt.Errorf("%w: %w", recorder.ErrPermissionDenied, err)
	}

	// Encoding ends when encC is closed, never by cancellation.
	if err := c.enc.Start(context.WithoutCancel(ctx)); err != nil {
		c.abort()
		return nil, fmt.Errorf("failed to start encoder: %w", err)
	}

	m.ring.Reset()

	go c.meter()

	m.logger.Debug("capture started", "sampleRate", m.conf.SampleRate)

	return c, nil
}

type capture struct {
	dev    Device
	bcast  *channels.Broadcaster[DataPacket]
	cancel context.CancelFunc
	enc    *StreamingEncoder
	mp3    bytes.Buffer

	encC   chan []byte
	tapC   chan []byte
	meterC chan []byte
	done   chan struct{}

	ring   *SampleRingBuffer
	rate   int
	logger *slog.Logger

	once sync.Once
}

func (c *capture) PCM() <-chan []byte {
	return c.tapC
}

func (c *capture) Finalize() (recorder.AudioHandle, error) {
	c.shutdown()

	if err := c.enc.Wait(); err != nil {
		return nil, fmt.Errorf("failed to encode recording: %w", err)
	}

	pcm := c.enc.PCMBytes()
	duration := time.Duration(pcm/2) * time.Second / time.Duration(c.rate)

	c.logger.Debug("capture finalized",
		"pcmBytes", pcm,
		"mp3Bytes", c.mp3.Len(),
		"dropped", c.dev.Dropped(),
		"stats", c.bcast.Stats())

	return NewClip(c.mp3.Bytes(), duration), nil
}

func (c *capture) Release() {
	c.shutdown()
}

// shutdown stops the device, drains the broadcaster and closes every
// subscriber so the encoder, meter and speech tap all finish.
func (c *capture) shutdown() {
	c.once.Do(func() {
		if err := c.dev.Stop(context.Background()); err != nil {
			c.logger.Warn("failed to stop capture device", "error", err)
		}

		c.dev.Dealloc(context.Background())

		c.cancel()
		c.bcast.Wait()

		close(c.encC)
		close(c.tapC)
		close(c.meterC)
		<-c.done
	})
}

// abort tears down a capture that never started.
func (c *capture) abort() {
	c.dev.Dealloc(context.Background())
	c.cancel()
	c.bcast.Wait()
}

func (c *capture) meter() {
	defer close(c.done)

	for packet := range c.meterC {
		c.ring.Write(BytesToInt16(packet))
	}
}
