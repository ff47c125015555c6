package audio

import (
	"errors"

	"github.com/gen2brain/malgo"
)

const (
	// DefaultSampleRate is Whisper's native rate.
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	// DefaultBufferThreshold batches about 128ms of 16kHz mono audio per
	// MP3 encode.
	DefaultBufferThreshold = 4096

	defaultPacketBuffer = 64
)

// DeviceConfig describes the capture format. Recording is S16LE mono.
type DeviceConfig struct {
	Format          malgo.FormatType
	CaptureChannels int
	SampleRate      int
	// PacketBuffer is how many device packets may queue before new ones
	// are dropped.
	PacketBuffer int
}

// DefaultDeviceConfig returns 16kHz S16LE mono, the format the encoder and
// Whisper both expect.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Format:          malgo.FormatS16,
		CaptureChannels: DefaultChannels,
		SampleRate:      DefaultSampleRate,
		PacketBuffer:    defaultPacketBuffer,
	}
}

// WithSampleRate returns a copy of c capturing at rate. Non-positive rates
// are ignored.
func (c DeviceConfig) WithSampleRate(rate int) DeviceConfig {
	if rate > 0 {
		c.SampleRate = rate
	}

	return c
}

// Encoder returns the encoder settings matching this capture format.
func (c DeviceConfig) Encoder() EncoderConfig {
	return EncoderConfig{SampleRate: c.SampleRate, Channels: c.CaptureChannels}.WithDefaults()
}

// EncoderConfig configures the MP3 streaming encoder.
type EncoderConfig struct {
	SampleRate int
	// Channels must be 1.
	Channels int
	// BufferThreshold is how many PCM bytes accumulate before a batch is
	// encoded. It must hold whole samples.
	BufferThreshold int
}

// Validate reports every unusable field.
func (c EncoderConfig) Validate() error {
	var errs []error

	if c.SampleRate <= 0 {
		errs = append(errs, errors.New("sample rate must be positive"))
	}

	if c.Channels != 1 {
		errs = append(errs, errors.New("only mono (1 channel) is supported"))
	}

	switch {
	case c.BufferThreshold <= 0:
		errs = append(errs, errors.New("buffer threshold must be positive"))
	case c.BufferThreshold%2 != 0:
		errs = append(errs, errors.New("buffer threshold must be a whole number of samples"))
	}

	return errors.Join(errs...)
}

// WithDefaults fills zero fields.
func (c EncoderConfig) WithDefaults() EncoderConfig {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}

	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}

	if c.BufferThreshold == 0 {
		c.BufferThreshold = DefaultBufferThreshold
	}

	return c
}
