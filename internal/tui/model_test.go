package tui_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkime/healthvoice/internal/auth"
	"github.com/alkime/healthvoice/internal/login"
	"github.com/alkime/healthvoice/internal/portal"
	"github.com/alkime/healthvoice/internal/recorder"
	"github.com/alkime/healthvoice/internal/sched"
	"github.com/alkime/healthvoice/internal/tui"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var start = time.Date(2025, time.May, 16, 9, 0, 0, 0, time.UTC)

type clip struct{}

func (clip) Open() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("")), nil }
func (clip) Size() int64                  { return 0 }

type capture struct{ pcm chan []byte }

func (c capture) PCM() <-chan []byte                      { return c.pcm }
func (c capture) Finalize() (recorder.AudioHandle, error) { return clip{}, nil }
func (c capture) Release()                                {}

type mic struct{ denied bool }

func (m mic) Open(context.Context) (recorder.Capture, error) {
	if m.denied {
		return nil, recorder.ErrPermissionDenied
	}

	return capture{pcm: make(chan []byte)}, nil
}

type recognition struct{}

func (recognition) Stop() {}

type speech struct {
	emit func(recorder.RecognitionEvent)
}

func (s *speech) Start(_ context.Context, _ <-chan []byte, emit func(recorder.RecognitionEvent)) (recorder.Recognition, error) {
	s.emit = emit
	return recognition{}, nil
}

func (s *speech) say(text string) {
	s.emit(recorder.RecognitionEvent{Results: []recorder.Segment{{Text: text}}})
}

type harness struct {
	clock  *sched.Virtual
	speech *speech
	model  *tui.Model
}

func newHarness(t *testing.T, m mic, eval auth.Evaluator) *harness {
	t.Helper()

	h := &harness{clock: sched.NewVirtual(start), speech: &speech{}}
	h.model = tui.New(tui.Deps{
		Wiring: portal.Wiring{
			Scheduler:  h.clock,
			Microphone: m,
			Speech:     h.speech,
			Evaluator:  eval,
			Limits:     recorder.DefaultLimits(),
		},
		Now: func() time.Time { return start },
	})
	h.model.Init()

	return h
}

func (h *harness) press(msgs ...tea.KeyMsg) {
	for _, msg := range msgs {
		h.model.Update(msg)
	}
}

func (h *harness) typeText(s string) {
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) stage() auth.Stage {
	return h.model.Portal().Shell().Authenticator().State().Stage
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	space = tea.KeyMsg{Type: tea.KeySpace}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestVoiceLogin(t *testing.T) {
	h := newHarness(t, mic{}, nil)

	view := h.model.View()
	assert.Contains(t, view, "Voice Login")
	assert.Contains(t, view, "Secure and hands-free login with your voice")
	assert.Contains(t, view, "My voice is my secure password")
	assert.Equal(t, tui.PhaseLogin, h.model.Phase())

	h.clock.Advance(2 * time.Second)
	assert.Contains(t, h.model.View(), "Please speak your passphrase")
	assert.Contains(t, h.model.View(), "00:00 / 00:05")

	h.clock.Advance(500 * time.Millisecond)
	h.speech.say("my voice is my secure password")

	h.clock.Advance(time.Second)
	view = h.model.View()
	assert.Contains(t, view, `Heard: "my voice is my secure password"`)
	assert.Contains(t, view, "00:01 / 00:05")

	// long transcript plus two seconds stops early
	h.clock.Advance(time.Second)
	view = h.model.View()
	assert.Contains(t, view, "Analyzing your voice biometrics...")
	assert.Contains(t, view, `Detected: "my voice is my secure password"`)

	h.clock.Advance(1500 * time.Millisecond)
	view = h.model.View()
	assert.Contains(t, view, "Authentication successful!")
	assert.Contains(t, view, `You said: "my voice is my secure password"`)
	assert.Equal(t, tui.PhaseLogin, h.model.Phase())

	h.clock.Advance(time.Second)
	require.Equal(t, tui.PhaseDashboard, h.model.Phase())

	view = h.model.View()
	assert.Contains(t, view, "Welcome back, Dr. Sarah Johnson")
	assert.Contains(t, view, "Friday, May 16, 2025")
	assert.Contains(t, view, "Michael Thompson")
	assert.Contains(t, view, "Voice biometrics verified with 98.2% confidence")
	assert.Equal(t, 0, h.clock.Pending())
}

func TestVoiceLogin_ManualControlsAndRetry(t *testing.T) {
	reject := auth.EvaluatorFunc(func(string) auth.Outcome { return auth.OutcomeFailure })
	h := newHarness(t, mic{}, reject)

	h.press(enter)
	require.Equal(t, auth.StageRecording, h.stage())
	assert.Contains(t, h.model.View(), "Starting microphone...")

	// space starts the microphone without waiting for auto-start
	h.press(space)
	assert.True(t, h.model.Portal().Shell().Authenticator().Recorder().Session().IsRecording)
	assert.NotContains(t, h.model.View(), "Starting microphone...")

	h.clock.Advance(500 * time.Millisecond)
	assert.True(t, h.model.Portal().Shell().Authenticator().Recorder().Session().IsRecording)

	h.press(enter)
	require.Equal(t, auth.StageProcessing, h.stage())
	assert.Contains(t, h.model.View(), "No speech detected")

	// keys that do not belong to the stage are ignored
	h.press(enter, runes("r"))
	assert.Equal(t, auth.StageProcessing, h.stage())

	h.clock.Advance(1500 * time.Millisecond)
	view := h.model.View()
	assert.Contains(t, view, "Authentication failed")
	assert.Contains(t, view, "try again")
	assert.Contains(t, view, "use backup method")

	h.press(runes("r"))
	assert.Equal(t, auth.StageInstructions, h.stage())
	assert.Equal(t, 2, h.model.Portal().Shell().Authenticator().State().Attempt)
}

func TestVoiceLogin_MicrophoneDenied(t *testing.T) {
	h := newHarness(t, mic{denied: true}, nil)

	h.clock.Advance(2500 * time.Millisecond)
	assert.Contains(t, h.model.View(), "Microphone access denied")

	// switching tabs clears the error
	h.press(tab, tab)
	assert.NotContains(t, h.model.View(), "Microphone access denied")
}

func TestTraditionalLogin(t *testing.T) {
	h := newHarness(t, mic{}, nil)

	h.press(tab)
	require.Equal(t, login.MethodTraditional, h.model.Portal().Shell().Method())
	assert.Contains(t, h.model.View(), "Username")
	assert.Contains(t, h.model.View(), "Password")

	// voice timers are gone with the voice tab
	h.clock.Advance(time.Minute)
	assert.Equal(t, tui.PhaseLogin, h.model.Phase())

	h.typeText("sjohnson")
	h.press(enter)
	h.typeText("secret")
	assert.NotContains(t, h.model.View(), "secret")

	h.press(enter)
	assert.Contains(t, h.model.View(), "Signing in...")

	h.clock.Advance(time.Second)
	assert.Equal(t, tui.PhaseDashboard, h.model.Phase())
}

func TestTraditionalLogin_RequiresFields(t *testing.T) {
	h := newHarness(t, mic{}, nil)

	h.press(tab, enter, enter)
	assert.Contains(t, h.model.View(), "Username and password are required")
	assert.False(t, h.model.Portal().Shell().Submitting())

	h.press(tea.KeyMsg{Type: tea.KeyUp})
	h.typeText("sjohnson")
	h.press(enter)
	h.typeText("secret")
	h.press(enter)
	assert.NotContains(t, h.model.View(), "required")
	assert.True(t, h.model.Portal().Shell().Submitting())
}

func TestQuit(t *testing.T) {
	h := newHarness(t, mic{}, nil)

	h.clock.Advance(2500 * time.Millisecond)
	require.Equal(t, auth.StageRecording, h.stage())

	_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Nil(t, h.model.Portal().Shell())
	assert.Equal(t, 0, h.clock.Pending())
}

func TestRunMsg(t *testing.T) {
	h := newHarness(t, mic{}, nil)

	ran := false
	_, cmd := h.model.Update(tui.RunMsg(func() { ran = true }))
	assert.True(t, ran)
	assert.Nil(t, cmd)

	// A callback that finishes login switches phases before Update returns.
	h.press(tab)
	h.typeText("sjohnson")
	h.press(enter)
	h.typeText("secret")
	h.press(enter)

	h.model.Update(tui.RunMsg(func() { h.clock.Advance(time.Second) }))
	assert.Equal(t, tui.PhaseDashboard, h.model.Phase())
}

func TestProgram_TraditionalLogin(t *testing.T) {
	q := sched.NewQueue()

	m := tui.New(tui.Deps{
		Wiring: portal.Wiring{
			Scheduler:  sched.NewLoop(q.Dispatch),
			Microphone: mic{denied: true},
			Timings:    auth.Timings{InstructionsDelay: time.Hour},
			Login:      login.Options{TraditionalDelay: 10 * time.Millisecond},
		},
	})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(160, 60))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go tui.Pump(ctx, q, tm.Send)

	waitFor(t, tm, "Voice Login")

	tm.Send(tab)
	waitFor(t, tm, "Username")

	tm.Type("sjohnson")
	tm.Send(enter)
	tm.Type("secret")
	tm.Send(enter)

	waitFor(t, tm, "Welcome back")

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

func waitFor(t *testing.T, tm *teatest.TestModel, s string) {
	t.Helper()

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte(s))
	}, teatest.WithCheckInterval(10*time.Millisecond), teatest.WithDuration(3*time.Second))
}
