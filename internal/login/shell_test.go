package login_test

import (
	"context"
	"testing"
	"time"

	"github.com/alkime/healthvoice/internal/auth"
	"github.com/alkime/healthvoice/internal/login"
	"github.com/alkime/healthvoice/internal/recorder"
	"github.com/alkime/healthvoice/internal/sched"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deniedMic struct{ opened int }

func (m *deniedMic) Open(context.Context) (recorder.Capture, error) {
	m.opened++

	return nil, recorder.ErrPermissionDenied
}

type fixture struct {
	clock   *sched.Virtual
	mic     *deniedMic
	built   int
	logins  int
	errs    []error
	outcome auth.Outcome
	shell   *login.Shell
}

func newFixture(t *testing.T, outcome auth.Outcome) *fixture {
	t.Helper()

	f := &fixture{
		clock:   sched.NewVirtual(time.Date(2025, time.May, 16, 9, 0, 0, 0, time.UTC)),
		mic:     &deniedMic{},
		outcome: outcome,
	}

	recorders := auth.NewRecorderFactory(recorder.Deps{
		Microphone: f.mic,
		Scheduler:  f.clock,
	}, recorder.DefaultLimits())

	f.shell = login.New(login.Deps{
		Scheduler: f.clock,
		NewAuthenticator: func(cb auth.Callbacks) *auth.Authenticator {
			f.built++

			return auth.New(auth.Deps{
				Scheduler:   f.clock,
				Evaluator:   auth.EvaluatorFunc(func(string) auth.Outcome { return f.outcome }),
				NewRecorder: recorders,
			}, auth.DefaultTimings(), cb)
		},
		OnError: func(err error) { f.errs = append(f.errs, err) },
	}, login.Options{}, func() { f.logins++ })

	return f
}

func TestShellVoice(t *testing.T) {
	f := newFixture(t, auth.OutcomeSuccess)
	f.shell.Mount()

	require.Equal(t, login.MethodVoice, f.shell.Method())
	require.NotNil(t, f.shell.Authenticator())

	// 2s instructions + 0.5s auto-start (denied) + 1.5s processing + 1s redirect.
	f.clock.Advance(4999 * time.Millisecond)
	assert.Zero(t, f.logins)

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, 1, f.logins)
	assert.True(t, f.shell.Succeeded())
	require.Len(t, f.errs, 1)
	require.ErrorIs(t, f.errs[0], recorder.ErrPermissionDenied)

	f.clock.Advance(time.Minute)
	assert.Equal(t, 1, f.logins)
}

func TestShellTraditional(t *testing.T) {
	t.Run("signs in one second after submit", func(t *testing.T) {
		f := newFixture(t, auth.OutcomeFailure)
		f.shell.Mount()
		f.shell.Select(login.MethodTraditional)
		assert.Nil(t, f.shell.Authenticator())

		require.NoError(t, f.shell.Submit(login.Credentials{Username: "sjohnson", Password: "x"}))
		assert.True(t, f.shell.Submitting())

		// A second submit while pending does not schedule another sign-in.
		require.NoError(t, f.shell.Submit(login.Credentials{Username: "sjohnson", Password: "x"}))

		f.clock.Advance(999 * time.Millisecond)
		assert.Zero(t, f.logins)

		f.clock.Advance(time.Millisecond)
		assert.Equal(t, 1, f.logins)
		assert.False(t, f.shell.Submitting())

		f.clock.Advance(time.Minute)
		assert.Equal(t, 1, f.logins)
	})

	t.Run("requires both fields", func(t *testing.T) {
		f := newFixture(t, auth.OutcomeFailure)
		f.shell.Select(login.MethodTraditional)

		require.ErrorIs(t, f.shell.Submit(login.Credentials{Password: "x"}), login.ErrMissingCredentials)
		require.ErrorIs(t, f.shell.Submit(login.Credentials{Username: "  ", Password: "x"}), login.ErrMissingCredentials)
		require.ErrorIs(t, f.shell.Submit(login.Credentials{Username: "a"}), login.ErrMissingCredentials)
		assert.False(t, f.shell.Submitting())
	})

	t.Run("submit on voice tab is rejected", func(t *testing.T) {
		f := newFixture(t, auth.OutcomeFailure)
		f.shell.Mount()

		err := f.shell.Submit(login.Credentials{Username: "a", Password: "b"})
		require.ErrorIs(t, err, login.ErrWrongMethod)
	})

	t.Run("switching away cancels a pending sign-in", func(t *testing.T) {
		f := newFixture(t, auth.OutcomeFailure)
		f.shell.Mount()
		f.shell.Select(login.MethodTraditional)
		require.NoError(t, f.shell.Submit(login.Credentials{Username: "a", Password: "b"}))

		f.shell.Select(login.MethodVoice)
		f.clock.Advance(time.Minute)
		assert.Zero(t, f.logins)
	})
}

func TestShellSelect(t *testing.T) {
	f := newFixture(t, auth.OutcomeSuccess)
	f.shell.Mount()
	require.Equal(t, 1, f.built)

	// Leave the voice tab mid-flow: the old authenticator must stay silent.
	f.clock.Advance(time.Second)
	f.shell.Select(login.MethodTraditional)
	f.clock.Advance(time.Minute)
	assert.Zero(t, f.logins)
	assert.Zero(t, f.mic.opened)

	// Coming back starts a fresh attempt.
	f.shell.Select(login.MethodVoice)
	assert.Equal(t, 2, f.built)
	assert.Equal(t, auth.StageInstructions, f.shell.Authenticator().State().Stage)
	assert.Equal(t, 1, f.shell.Authenticator().State().Attempt)

	f.shell.Select(login.MethodVoice)
	assert.Equal(t, 2, f.built)
}

func TestShellTeardown(t *testing.T) {
	f := newFixture(t, auth.OutcomeSuccess)
	f.shell.Mount()
	f.clock.Advance(4 * time.Second)

	f.shell.Teardown()
	f.clock.Advance(time.Minute)
	assert.Zero(t, f.logins)
	assert.Equal(t, 0, f.clock.Pending())
}
