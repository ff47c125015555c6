// Package login is the login shell: a voice tab backed by the authenticator
// and a traditional username/password tab.
package login

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alkime/healthvoice/internal/auth"
	"github.com/alkime/healthvoice/internal/sched"
)

var (
	// ErrMissingCredentials is returned when a required form field is empty.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrWrongMethod is returned when an operation does not belong to the
	// selected tab.
	ErrWrongMethod = errors.New("operation not available for the selected login method")
)

// DefaultTraditionalDelay is how long the traditional form takes to sign in.
const DefaultTraditionalDelay = time.Second

// Method is a login tab.
type Method int

const (
	MethodVoice Method = iota
	MethodTraditional
)

func (m Method) String() string {
	switch m {
	case MethodVoice:
		return "voice"
	case MethodTraditional:
		return "traditional"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Credentials are the traditional form values. They are never checked
// against anything.
type Credentials struct {
	Username string
	Password string
}

// VoiceFactory builds the authenticator for a fresh visit to the voice tab.
type VoiceFactory func(cb auth.Callbacks) *auth.Authenticator

// Deps are the collaborators of a Shell.
type Deps struct {
	Scheduler        sched.Scheduler
	NewAuthenticator VoiceFactory
	Logger           *slog.Logger
	// OnError receives recoverable errors from the voice tab. Optional.
	OnError func(err error)
}

// Options tune the shell.
type Options struct {
	TraditionalDelay time.Duration
}

// Shell switches between login methods and reports the first success.
type Shell struct {
	deps      Deps
	opts      Options
	onSuccess func()
	logger    *slog.Logger

	method     Method
	voice      *auth.Authenticator
	submitting *sched.Token
	succeeded  bool
	torndown   bool
}

// New creates a shell. onLoginSuccess is called at most once.
func New(deps Deps, opts Options, onLoginSuccess func()) *Shell {
	if opts.TraditionalDelay <= 0 {
		opts.TraditionalDelay = DefaultTraditionalDelay
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Shell{
		deps:      deps,
		opts:      opts,
		onSuccess: onLoginSuccess,
		logger:    logger.With("component", "login"),
		method:    MethodVoice,
	}
}

// Mount shows the voice tab.
func (s *Shell) Mount() {
	if s.torndown || s.voice != nil {
		return
	}

	if s.method == MethodVoice {
		s.mountVoice()
	}
}

// Method returns the selected tab.
func (s *Shell) Method() Method {
	return s.method
}

// Authenticator returns the voice tab's authenticator, or nil when the
// traditional tab is selected.
func (s *Shell) Authenticator() *auth.Authenticator {
	return s.voice
}

// Submitting reports whether a traditional sign-in is in flight.
func (s *Shell) Submitting() bool {
	return s.submitting != nil
}

// Succeeded reports whether login has completed.
func (s *Shell) Succeeded() bool {
	return s.succeeded
}

// Select switches tabs. Leaving a tab abandons whatever it was doing.
func (s *Shell) Select(m Method) {
	if s.torndown || s.succeeded || m == s.method {
		return
	}

	s.logger.Debug("switching login method", "from", s.method, "to", m)

	switch s.method {
	case MethodVoice:
		s.unmountVoice()
	case MethodTraditional:
		s.submitting.Cancel()
		s.submitting = nil
	}

	s.method = m

	if m == MethodVoice {
		s.mountVoice()
	}
}

// Submit signs in with the traditional form after a short delay. Any
// non-empty username and password are accepted.
func (s *Shell) Submit(c Credentials) error {
	if s.torndown || s.succeeded {
		return fmt.Errorf("login closed: %w", ErrWrongMethod)
	}

	if s.method != MethodTraditional {
		return fmt.Errorf("submit on %s tab: %w", s.method, ErrWrongMethod)
	}

	if strings.TrimSpace(c.Username) == "" || c.Password == "" {
		return ErrMissingCredentials
	}

	if s.submitting != nil {
		return nil
	}

	s.logger.Info("traditional sign-in", "username", c.Username)
	s.submitting = s.deps.Scheduler.After(s.opts.TraditionalDelay, func() {
		s.submitting = nil
		s.succeed(MethodTraditional)
	})

	return nil
}

// Teardown cancels pending work in both tabs. No callback fires afterwards.
func (s *Shell) Teardown() {
	if s.torndown {
		return
	}

	s.torndown = true
	s.unmountVoice()
	s.submitting.Cancel()
	s.submitting = nil
}

func (s *Shell) mountVoice() {
	s.voice = s.deps.NewAuthenticator(auth.Callbacks{
		OnComplete: func(success bool) {
			if success {
				s.succeed(MethodVoice)
			}
		},
		OnError: s.deps.OnError,
	})
	s.voice.Mount()
}

func (s *Shell) unmountVoice() {
	if s.voice != nil {
		s.voice.Teardown()
		s.voice = nil
	}
}

func (s *Shell) succeed(m Method) {
	if s.succeeded || s.torndown {
		return
	}

	s.succeeded = true
	s.logger.Info("login succeeded", "method", m)

	if s.onSuccess != nil {
		s.onSuccess()
	}
}
