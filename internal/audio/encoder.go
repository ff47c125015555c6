package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// StreamingEncoder consumes S16LE mono PCM packets from a channel and writes
// MP3 frames to an io.Writer, encoding in batches of BufferThreshold bytes.
// It stops when the input is closed (flushing what is left) or when its
// context is cancelled.
type StreamingEncoder struct {
	config EncoderConfig
	input  <-chan []byte
	output io.Writer
	logger *slog.Logger

	encoder *mp3encoder.Encoder
	buffer  []byte
	pcm     int64

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

// NewStreamingEncoder validates its arguments and returns an idle encoder.
func NewStreamingEncoder(
	config EncoderConfig,
	input <-chan []byte,
	output io.Writer,
) (*StreamingEncoder, error) {
	if input == nil {
		return nil, errors.New("input channel cannot be nil")
	}

	if output == nil {
		return nil, errors.New("output writer cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder config: %w", err)
	}

	return &StreamingEncoder{
		config: config,
		input:  input,
		output: output,
		logger: slog.Default(),
		buffer: make([]byte, 0, config.BufferThreshold),
	}, nil
}

// WithLogger sets the logger used for batch diagnostics.
func (e *StreamingEncoder) WithLogger(logger *slog.Logger) *StreamingEncoder {
	if logger != nil {
		e.logger = logger
	}

	return e
}

// Start launches the encoding goroutine.
func (e *StreamingEncoder) Start(ctx context.Context) error {
	if e.encoder != nil {
		return errors.New("encoder already started")
	}

	// shine-mp3 mis-advances its read position for mono input, so frames are
	// encoded as stereo with both channels carrying the same samples.
	e.encoder = mp3encoder.NewEncoder(e.config.SampleRate, 2)

	e.wg.Go(func() {
		defer func() {
			if err := e.Flush(); err != nil {
				e.setError(fmt.Errorf("failed to flush encoder on shutdown: %w", err))
			}
		}()

		for {
			select {
			case data, ok := <-e.input:
				if !ok {
					return
				}

				e.buffer = append(e.buffer, data...)
				e.pcm += int64(len(data))

				if len(e.buffer) >= e.config.BufferThreshold {
					if err := e.encodeBatch(); err != nil {
						e.setError(err)
						return
					}
				}

			case <-ctx.Done():
				e.setError(fmt.Errorf("encoder context cancelled: %w", ctx.Err()))
				return
			}
		}
	})

	return nil
}

func (e *StreamingEncoder) encodeBatch() error {
	if len(e.buffer) < 2 {
		return nil
	}

	n := len(e.buffer) / 2
	mono := make([]int16, n)

	if err := binary.Read(bytes.NewReader(e.buffer[:n*2]), binary.LittleEndian, mono); err != nil {
		return fmt.Errorf("failed to read PCM samples: %w", err)
	}

	stereo := make([]int16, n*2)
	for i, s := range mono {
		stereo[i*2] = s
		stereo[i*2+1] = s
	}

	e.logger.Debug("encoding MP3 batch", "samples", n)

	if err := e.encoder.Write(e.output, stereo); err != nil {
		return fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	// Keep a trailing odd byte for the next batch.
	rest := copy(e.buffer, e.buffer[n*2:])
	e.buffer = e.buffer[:rest]

	return nil
}

// Flush encodes whatever is buffered. Only call it after Wait, or from the
// encoding goroutine.
func (e *StreamingEncoder) Flush() error {
	if err := e.encodeBatch(); err != nil {
		return fmt.Errorf("failed to flush MP3 encoder: %w", err)
	}

	return nil
}

// Wait blocks until the encoding goroutine exits and returns its first error.
func (e *StreamingEncoder) Wait() error {
	e.wg.Wait()

	return e.err
}

// PCMBytes returns how many PCM bytes were consumed. Only valid after Wait.
func (e *StreamingEncoder) PCMBytes() int64 {
	return e.pcm
}

func (e *StreamingEncoder) setError(err error) {
	e.errOnce.Do(func() {
		e.err = err
		e.logger.Debug("streaming encoder error", "error", err)
	})
}
