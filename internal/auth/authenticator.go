// Package auth runs the voice authentication attempt: instructions, recording,
// processing and result.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alkime/healthvoice/internal/recorder"
	"github.com/alkime/healthvoice/internal/sched"
	"github.com/google/uuid"
)

// Timings are the simulated delays of the attempt flow.
type Timings struct {
	InstructionsDelay time.Duration
	ProcessingDelay   time.Duration
	SuccessDelay      time.Duration
}

// DefaultTimings returns the standard flow delays.
func DefaultTimings() Timings {
	return Timings{
		InstructionsDelay: 2 * time.Second,
		ProcessingDelay:   1500 * time.Millisecond,
		SuccessDelay:      time.Second,
	}
}

// RecorderFactory builds the recorder used for one recording stage.
type RecorderFactory func(onComplete recorder.CompleteFunc, onError recorder.ErrorFunc) *recorder.Recorder

// NewRecorderFactory returns a factory for auto-completing authentication
// recorders running against deps.
func NewRecorderFactory(deps recorder.Deps, limits recorder.Limits) RecorderFactory {
	return func(onComplete recorder.CompleteFunc, onError recorder.ErrorFunc) *recorder.Recorder {
		return recorder.New(recorder.Config{
			Mode:         recorder.ModeAuthentication,
			AutoComplete: true,
			Limits:       limits,
		}, deps, onComplete, onError)
	}
}

// State is a snapshot of the current attempt.
type State struct {
	Stage      Stage
	Outcome    Outcome
	Transcript string
	AttemptID  string
	Attempt    int
	// Err is the last capture or recognition error of this attempt.
	Err error
}

// Deps are the collaborators of an Authenticator.
type Deps struct {
	Scheduler   sched.Scheduler
	Evaluator   Evaluator
	NewRecorder RecorderFactory
	Logger      *slog.Logger
}

// Callbacks report results upward. Both may be nil.
type Callbacks struct {
	// OnComplete fires with true once an attempt succeeds.
	OnComplete func(success bool)
	// OnError receives recoverable capability errors.
	OnError func(err error)
}

// Authenticator is the attempt state machine. Like the recorder it drives, it
// must only be used from the scheduler's logical thread.
type Authenticator struct {
	deps    Deps
	timings Timings
	cb      Callbacks
	logger  *slog.Logger

	state    State
	rec      *recorder.Recorder
	timer    *sched.Token
	torndown bool
}

// New creates an authenticator. Call Mount to start the first attempt.
func New(deps Deps, timings Timings, cb Callbacks) *Authenticator {
	if deps.Evaluator == nil {
		deps.Evaluator = NewHeuristic(nil)
	}

	if timings == (Timings{}) {
		timings = DefaultTimings()
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Authenticator{
		deps:    deps,
		timings: timings,
		cb:      cb,
		logger:  logger.With("component", "authenticator"),
	}
}

// Mount enters the instructions stage of the first attempt.
func (a *Authenticator) Mount() {
	if a.torndown || a.state.Attempt > 0 {
		return
	}

	a.enterInstructions()
}

// State returns a snapshot of the current attempt.
func (a *Authenticator) State() State {
	return a.state
}

// Recorder returns the recorder of the current recording stage, or nil.
func (a *Authenticator) Recorder() *recorder.Recorder {
	return a.rec
}

// Begin skips the instructions delay.
func (a *Authenticator) Begin() error {
	if err := a.require(StageInstructions); err != nil {
		return err
	}

	a.enterRecording()

	return nil
}

// StopRecording ends the recording early. Called before the microphone has
// started, it skips the capture altogether.
func (a *Authenticator) StopRecording() error {
	if err := a.require(StageRecording); err != nil {
		return err
	}

	// Before the microphone has opened there is nothing to finalize; the
	// attempt is decided on an empty transcript.
	if !a.rec.Session().IsRecording {
		a.releaseRecorder()
		a.enterProcessing("")

		return nil
	}

	a.rec.Stop()

	return nil
}

// ToggleRecording starts or stops the microphone during the recording stage.
func (a *Authenticator) ToggleRecording() error {
	if err := a.require(StageRecording); err != nil {
		return err
	}

	return a.rec.Toggle()
}

// Retry starts a new attempt after a failure.
func (a *Authenticator) Retry() error {
	if err := a.requireFailure(); err != nil {
		return err
	}

	a.logger.Info("retrying authentication", "attempt", a.state.AttemptID)
	a.enterInstructions()

	return nil
}

// UseBackup is the backup-method affordance. There is no separate backup
// flow, so it starts a new attempt like Retry.
func (a *Authenticator) UseBackup() error {
	if err := a.requireFailure(); err != nil {
		return err
	}

	a.logger.Info("backup method requested", "attempt", a.state.AttemptID)
	a.enterInstructions()

	return nil
}

// Teardown cancels pending timers and releases the recorder. No callback
// fires afterwards.
func (a *Authenticator) Teardown() {
	if a.torndown {
		return
	}

	a.torndown = true
	a.timer.Cancel()
	a.timer = nil
	a.releaseRecorder()
}

func (a *Authenticator) require(stage Stage) error {
	if a.torndown {
		return fmt.Errorf("authenticator torn down: %w", ErrInvalidTransition)
	}

	if a.state.Stage != stage || a.state.Attempt == 0 {
		return fmt.Errorf("%w: not allowed in stage %s", ErrInvalidTransition, a.state.Stage)
	}

	return nil
}

func (a *Authenticator) requireFailure() error {
	if err := a.require(StageResult); err != nil {
		return err
	}

	if a.state.Outcome != OutcomeFailure {
		return fmt.Errorf("%w: attempt did not fail", ErrInvalidTransition)
	}

	return nil
}

func (a *Authenticator) moveTo(stage Stage) {
	if a.state.Attempt > 0 && !CanTransition(a.state.Stage, stage) {
		// Unreachable through the public API.
		panic(fmt.Sprintf("auth: %s -> %s", a.state.Stage, stage))
	}

	a.logger.Debug("stage", "from", a.state.Stage, "to", stage, "attempt", a.state.AttemptID)
	a.state.Stage = stage
}

func (a *Authenticator) schedule(d time.Duration, fn func()) {
	a.timer.Cancel()
	a.timer = a.deps.Scheduler.After(d, func() {
		a.timer = nil
		fn()
	})
}

func (a *Authenticator) enterInstructions() {
	a.releaseRecorder()

	if a.state.Attempt > 0 {
		a.moveTo(StageInstructions)
	}

	a.state = State{
		Stage:     StageInstructions,
		Outcome:   OutcomeNone,
		AttemptID: uuid.NewString(),
		Attempt:   a.state.Attempt + 1,
	}

	a.logger.Info("authentication attempt", "attempt", a.state.AttemptID, "n", a.state.Attempt)
	a.schedule(a.timings.InstructionsDelay, a.enterRecording)
}

func (a *Authenticator) enterRecording() {
	a.timer.Cancel()
	a.timer = nil
	a.moveTo(StageRecording)

	a.rec = a.deps.NewRecorder(a.onRecorded, a.onRecorderError)
	a.rec.Mount()
}

func (a *Authenticator) onRecorded(_ recorder.AudioHandle, transcript string) {
	if a.torndown || a.state.Stage != StageRecording {
		return
	}

	a.rec = nil
	a.enterProcessing(transcript)
}

func (a *Authenticator) onRecorderError(err error) {
	if a.torndown {
		return
	}

	a.state.Err = err

	if a.cb.OnError != nil {
		a.cb.OnError(err)
	}

	// Without a microphone there is nothing to wait for; the attempt is
	// decided on an empty transcript.
	if errors.Is(err, recorder.ErrMicrophoneUnavailable) && a.state.Stage == StageRecording {
		a.releaseRecorder()
		a.enterProcessing("")
	}
}

func (a *Authenticator) enterProcessing(transcript string) {
	a.moveTo(StageProcessing)
	a.state.Transcript = transcript

	a.schedule(a.timings.ProcessingDelay, a.decide)
}

func (a *Authenticator) decide() {
	outcome := a.deps.Evaluator.Evaluate(a.state.Transcript)

	a.moveTo(StageResult)
	a.state.Outcome = outcome

	a.logger.Info("authentication result",
		"attempt", a.state.AttemptID,
		"outcome", outcome,
		"transcript", a.state.Transcript)

	if outcome != OutcomeSuccess {
		return
	}

	a.schedule(a.timings.SuccessDelay, func() {
		if a.cb.OnComplete != nil {
			a.cb.OnComplete(true)
		}
	})
}

func (a *Authenticator) releaseRecorder() {
	if a.rec != nil {
		a.rec.Teardown()
		a.rec = nil
	}
}
