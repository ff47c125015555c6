package speech

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alkime/healthvoice/internal/recorder"
)

const (
	DefaultInterval   = 1500 * time.Millisecond
	DefaultSampleRate = 16000
	// DefaultMaxAudio bounds how much audio is re-sent per pass.
	DefaultMaxAudio = 30 * time.Second
)

// Options tune a Recognizer.
type Options struct {
	// Interval between transcription passes.
	Interval   time.Duration
	SampleRate int
	MaxAudio   time.Duration
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}

	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}

	if o.MaxAudio <= 0 {
		o.MaxAudio = DefaultMaxAudio
	}

	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	return o
}

// Recognizer produces a live transcript by periodically re-transcribing
// everything captured so far. Each pass replaces the previous one and is
// reported as a single interim segment.
type Recognizer struct {
	transcriber Transcriber
	opts        Options
}

// NewRecognizer creates a recognizer backed by t.
func NewRecognizer(t Transcriber, opts Options) *Recognizer {
	return &Recognizer{transcriber: t, opts: opts.withDefaults()}
}

// Start implements recorder.SpeechRecognizer.
func (r *Recognizer) Start(
	ctx context.Context,
	pcm <-chan []byte,
	emit func(recorder.RecognitionEvent),
) (recorder.Recognition, error) {
	if pcm == nil {
		return nil, errors.New("pcm channel cannot be nil")
	}

	if emit == nil {
		return nil, errors.New("emit func cannot be nil")
	}

	ctx, cancel := context.WithCancel(ctx)

	s := &session{
		r:       r,
		emit:    emit,
		cancel:  cancel,
		maxSize: int(r.opts.MaxAudio.Seconds() * float64(r.opts.SampleRate) * 2),
		logger:  r.opts.Logger.With("component", "speech"),
	}

	s.wg.Add(2)

	go s.collect(ctx, pcm)
	go s.transcribeLoop(ctx)

	return s, nil
}

type session struct {
	r       *Recognizer
	emit    func(recorder.RecognitionEvent)
	cancel  context.CancelFunc
	maxSize int
	logger  *slog.Logger
	wg      sync.WaitGroup

	mu    sync.Mutex
	audio []byte
	dirty bool
}

// Stop cancels the session. Events already in flight may still be emitted.
func (s *session) Stop() {
	s.cancel()
}

// Wait blocks until both session goroutines have exited.
func (s *session) Wait() {
	s.wg.Wait()
}

func (s *session) collect(ctx context.Context, pcm <-chan []byte) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-pcm:
			if !ok {
				return
			}

			s.mu.Lock()
			s.audio = append(s.audio, p...)
			if over := len(s.audio) - s.maxSize; over > 0 {
				s.audio = s.audio[over+over%2:]
			}
			s.dirty = true
			s.mu.Unlock()
		}
	}
}

func (s *session) transcribeLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.r.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

func (s *session) pass(ctx context.Context) {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}

	snapshot := bytes.Clone(s.audio)
	s.dirty = false
	s.mu.Unlock()

	start := time.Now()
	text, err := s.r.transcriber.Transcribe(ctx, bytes.NewReader(EncodeWAV(snapshot, s.r.opts.SampleRate)))

	if ctx.Err() != nil {
		return
	}

	if err != nil {
		s.logger.Warn("transcription pass failed", "error", err, "elapsed", time.Since(start))
		s.emit(recorder.RecognitionEvent{Err: err})

		return
	}

	s.logger.Debug("transcription pass", "bytes", len(snapshot), "elapsed", time.Since(start), "text", text)
	s.emit(recorder.RecognitionEvent{Results: []recorder.Segment{{Text: text}}})
}
