package portal

import (
	"log/slog"

	"github.com/alkime/healthvoice/internal/auth"
	"github.com/alkime/healthvoice/internal/login"
	"github.com/alkime/healthvoice/internal/recorder"
	"github.com/alkime/healthvoice/internal/sched"
)

// Wiring assembles the login stack: shell, authenticator and recorder, all
// sharing one scheduler.
type Wiring struct {
	Scheduler  sched.Scheduler
	Microphone recorder.Microphone
	// Speech is optional. Without it the transcript stays empty.
	Speech    recorder.SpeechRecognizer
	Evaluator auth.Evaluator

	Limits  recorder.Limits
	Timings auth.Timings
	Login   login.Options

	// OnError receives recoverable voice errors, e.g. a denied microphone.
	OnError func(err error)
	Logger  *slog.Logger
}

// ShellFactory returns a factory that builds a fresh login shell per call.
func (w Wiring) ShellFactory() ShellFactory {
	newRecorder := auth.NewRecorderFactory(recorder.Deps{
		Microphone: w.Microphone,
		Speech:     w.Speech,
		Scheduler:  w.Scheduler,
		Logger:     w.Logger,
	}, w.Limits)

	return func(onLoginSuccess func()) *login.Shell {
		return login.New(login.Deps{
			Scheduler: w.Scheduler,
			NewAuthenticator: func(cb auth.Callbacks) *auth.Authenticator {
				return auth.New(auth.Deps{
					Scheduler:   w.Scheduler,
					Evaluator:   w.Evaluator,
					NewRecorder: newRecorder,
					Logger:      w.Logger,
				}, w.Timings, cb)
			},
			Logger:  w.Logger,
			OnError: w.OnError,
		}, w.Login, onLoginSuccess)
	}
}
