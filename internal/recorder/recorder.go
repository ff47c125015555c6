// Package recorder drives a single microphone recording session: capture,
// live transcript, elapsed time and the auto-stop policy.
//
// A Recorder is not safe for concurrent use. All of its methods, and all
// callbacks it schedules, must run on the scheduler's logical thread.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/alkime/healthvoice/internal/sched"
)

// Mode selects the recording ceiling and whether auto-start applies.
type Mode int

const (
	// ModeCapture is free-form recording.
	ModeCapture Mode = iota
	// ModeAuthentication is the short passphrase capture used for login.
	ModeAuthentication
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeCapture:
		return "capture"
	case ModeAuthentication:
		return "authentication"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Limits holds the timing policy of a recording.
type Limits struct {
	AuthCeiling    time.Duration // auto-stop ceiling in ModeAuthentication
	CaptureCeiling time.Duration // auto-stop ceiling in ModeCapture
	EarlyStopChars int           // transcript must be longer than this...
	EarlyStopAfter time.Duration // ...and at least this much time elapsed
	AutoStartDelay time.Duration
	Tick           time.Duration
}

// DefaultLimits returns the standard recording policy.
func DefaultLimits() Limits {
	return Limits{
		AuthCeiling:    5 * time.Second,
		CaptureCeiling: 15 * time.Second,
		EarlyStopChars: 15,
		EarlyStopAfter: 2 * time.Second,
		AutoStartDelay: 500 * time.Millisecond,
		Tick:           time.Second,
	}
}

// normalized replaces the fields that cannot be zero or negative. A zero
// early-stop threshold or delay is a valid policy and is kept.
func (l Limits) normalized() Limits {
	def := DefaultLimits()

	if l.AuthCeiling <= 0 {
		l.AuthCeiling = def.AuthCeiling
	}

	if l.CaptureCeiling <= 0 {
		l.CaptureCeiling = def.CaptureCeiling
	}

	if l.EarlyStopChars < 0 {
		l.EarlyStopChars = def.EarlyStopChars
	}

	if l.EarlyStopAfter < 0 {
		l.EarlyStopAfter = 0
	}

	if l.AutoStartDelay < 0 {
		l.AutoStartDelay = 0
	}

	if l.Tick <= 0 {
		l.Tick = def.Tick
	}

	return l
}

// Ceiling returns the auto-stop ceiling for mode.
func (l Limits) Ceiling(mode Mode) time.Duration {
	if mode == ModeAuthentication {
		return l.AuthCeiling
	}

	return l.CaptureCeiling
}

// Config configures a Recorder.
type Config struct {
	Mode Mode
	// AutoComplete enables the auto-stop policy and, in authentication
	// mode, the auto-start on mount.
	AutoComplete bool
	Limits       Limits
}

// Deps are the capabilities a Recorder runs against.
type Deps struct {
	Microphone Microphone
	Speech     SpeechRecognizer // optional
	Scheduler  sched.Scheduler
	Logger     *slog.Logger
}

// Session is a snapshot of the recording state.
type Session struct {
	IsRecording bool
	Elapsed     int // whole ticks since start
	Transcript  string
	Audio       AudioHandle
}

// CompleteFunc receives the finished recording.
type CompleteFunc func(audio AudioHandle, transcript string)

// ErrorFunc receives recoverable capture and recognition errors.
type ErrorFunc func(err error)

// Recorder is the recording state machine.
type Recorder struct {
	cfg        Config
	deps       Deps
	logger     *slog.Logger
	onComplete CompleteFunc
	onError    ErrorFunc

	session Session
	capture Capture
	recog   Recognition
	cancel  context.CancelFunc

	tick      *sched.Token
	autoStart *sched.Token

	// gen invalidates platform events that belong to an earlier session.
	gen      uint64
	torndown bool
}

// New creates a recorder. onComplete and onError may be nil.
func New(cfg Config, deps Deps, onComplete CompleteFunc, onError ErrorFunc) *Recorder {
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}

	cfg.Limits = cfg.Limits.normalized()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		cfg:        cfg,
		deps:       deps,
		logger:     logger.With("component", "recorder", "mode", cfg.Mode.String()),
		onComplete: onComplete,
		onError:    onError,
	}
}

// Mount arms the auto-start timer in authentication mode.
func (r *Recorder) Mount() {
	if r.torndown || r.session.IsRecording {
		return
	}

	if r.cfg.Mode != ModeAuthentication || !r.cfg.AutoComplete {
		return
	}

	r.autoStart.Cancel()
	r.autoStart = r.deps.Scheduler.After(r.cfg.Limits.AutoStartDelay, func() {
		r.autoStart = nil
		_ = r.Start() //nolint:errcheck // reported through onError
	})
}

// Start acquires the microphone and begins capture.
func (r *Recorder) Start() error {
	if r.torndown {
		return errors.New("recorder torn down")
	}

	if r.session.IsRecording {
		return nil
	}

	r.autoStart.Cancel()
	r.autoStart = nil

	ctx, cancel := context.WithCancel(context.Background())

	capture, err := r.deps.Microphone.Open(ctx)
	if err != nil {
		cancel()

		err = fmt.Errorf("%w: %w", ErrMicrophoneUnavailable, err)
		r.logger.Warn("microphone unavailable", "error", err,
			"permissionDenied", errors.Is(err, ErrPermissionDenied))
		r.reportError(err)

		return err
	}

	r.gen++
	r.capture = capture
	r.cancel = cancel
	r.session = Session{IsRecording: true}

	if r.deps.Speech != nil && capture.PCM() != nil {
		recog, err := r.deps.Speech.Start(ctx, capture.PCM(), r.emitter(r.gen))
		if err != nil {
			// Capture continues without a transcript.
			r.logger.Warn("speech recognition unavailable", "error", err)
			r.reportError(&RecognitionError{Err: err})
		} else {
			r.recog = recog
		}
	}

	r.scheduleTick()
	r.logger.Debug("recording started")

	return nil
}

// Stop finalizes the recording and reports it through onComplete.
func (r *Recorder) Stop() {
	if !r.session.IsRecording {
		return
	}

	r.halt()

	audio, err := r.capture.Finalize()
	if err != nil {
		r.logger.Error("failed to finalize recording", "error", err)
		r.reportError(fmt.Errorf("failed to finalize recording: %w", err))
	}

	r.capture = nil
	r.cancel()
	r.cancel = nil

	r.session.IsRecording = false
	r.session.Audio = audio

	r.logger.Info("recording stopped",
		"elapsed", r.session.Elapsed,
		"transcriptLen", utf8.RuneCountInString(r.session.Transcript))

	if r.onComplete != nil {
		r.onComplete(audio, r.session.Transcript)
	}
}

// Toggle starts an idle recorder or stops a running one.
func (r *Recorder) Toggle() error {
	if r.session.IsRecording {
		r.Stop()

		return nil
	}

	return r.Start()
}

// Teardown cancels timers, stops recognition and releases the device without
// invoking any callback. The recorder cannot be restarted afterwards.
func (r *Recorder) Teardown() {
	if r.torndown {
		return
	}

	r.torndown = true
	r.autoStart.Cancel()
	r.autoStart = nil

	if r.session.IsRecording {
		r.halt()
		r.capture.Release()
		r.capture = nil
		r.session.IsRecording = false
	}

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	r.logger.Debug("recorder torn down")
}

// Session returns a snapshot of the current session.
func (r *Recorder) Session() Session {
	return r.session
}

// Mode returns the configured mode.
func (r *Recorder) Mode() Mode {
	return r.cfg.Mode
}

// Ceiling returns the auto-stop ceiling for this recorder's mode.
func (r *Recorder) Ceiling() time.Duration {
	return r.cfg.Limits.Ceiling(r.cfg.Mode)
}

// halt stops the tick and recognition and drops in-flight platform events.
func (r *Recorder) halt() {
	r.gen++

	r.tick.Cancel()
	r.tick = nil

	if r.recog != nil {
		r.recog.Stop()
		r.recog = nil
	}
}

func (r *Recorder) scheduleTick() {
	r.tick = r.deps.Scheduler.After(r.cfg.Limits.Tick, r.onTick)
}

func (r *Recorder) onTick() {
	if !r.session.IsRecording {
		return
	}

	r.session.Elapsed++
	r.scheduleTick()
	r.checkAutoStop()
}

// emitter returns a recognition sink bound to generation gen. Events are
// posted to the scheduler and dropped once the session has moved on.
func (r *Recorder) emitter(gen uint64) func(RecognitionEvent) {
	return func(ev RecognitionEvent) {
		r.deps.Scheduler.Post(func() {
			if gen != r.gen || !r.session.IsRecording {
				return
			}

			r.onRecognition(ev)
		})
	}
}

func (r *Recorder) onRecognition(ev RecognitionEvent) {
	if ev.Err != nil {
		err := &RecognitionError{Err: ev.Err}
		r.logger.Warn("speech recognition error", "error", ev.Err)
		r.reportError(err)

		return
	}

	r.session.Transcript = MergeSegments(ev.Results)
	r.checkAutoStop()
}

func (r *Recorder) checkAutoStop() {
	if !r.session.IsRecording || !r.cfg.AutoComplete {
		return
	}

	elapsed := time.Duration(r.session.Elapsed) * r.cfg.Limits.Tick

	if elapsed >= r.Ceiling() {
		r.logger.Debug("auto-stop", "reason", "ceiling", "elapsed", elapsed)
		r.Stop()

		return
	}

	if utf8.RuneCountInString(r.session.Transcript) > r.cfg.Limits.EarlyStopChars &&
		elapsed >= r.cfg.Limits.EarlyStopAfter {
		r.logger.Debug("auto-stop", "reason", "transcript", "elapsed", elapsed)
		r.Stop()
	}
}

func (r *Recorder) reportError(err error) {
	if r.onError != nil {
		r.onError(err)
	}
}
