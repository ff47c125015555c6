package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alkime/healthvoice/internal/auth"
	"github.com/alkime/healthvoice/internal/login"
	"github.com/alkime/healthvoice/internal/portal"
	"github.com/alkime/healthvoice/internal/recorder"
	"github.com/alkime/healthvoice/internal/tui/components/labeledspinner"
	"github.com/alkime/healthvoice/internal/tui/components/waveform"
	"github.com/alkime/healthvoice/internal/tui/style"
	"github.com/alkime/healthvoice/pkg/uictl"
)

const (
	contentWidth = 56
	waveHeight   = 3

	fieldUsername = 0
	fieldPassword = 1
)

// loginView renders whichever tab the login shell has selected. It reads
// shell state on every frame and only writes through shell operations.
type loginView struct {
	portal *portal.Portal
	keys   KeyMap
	help   help.Model

	spinner labeledspinner.Model
	wave    waveform.Model
	bar     progress.Model

	fields  []textinput.Model
	focus   int
	formErr error

	// err is the last recoverable voice error, cleared when a new attempt
	// starts.
	err error
}

func newLoginView(keys KeyMap, meter uictl.Levels[int16]) *loginView {
	username := textinput.New()
	username.Placeholder = "jsmith"
	username.Prompt = "  "
	username.CharLimit = 64

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 64

	return &loginView{
		keys:    keys,
		help:    help.New(),
		spinner: labeledspinner.New(spinner.Dot, "Analyzing your voice biometrics...", ""),
		wave:    waveform.New(meter, contentWidth, waveHeight),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(contentWidth-8)),
		fields:  []textinput.Model{username, password},
	}
}

func (v *loginView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Init(), v.wave.Init())
}

func (v *loginView) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := teaMsg.(type) {
	case spinner.TickMsg:
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case waveform.TickMsg:
		v.wave, cmd = v.wave.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}

	// cursor blink and friends
	v.fields[v.focus], cmd = v.fields[v.focus].Update(teaMsg)

	return v, cmd
}

func (v *loginView) handleKey(msg tea.KeyMsg) tea.Cmd {
	shell := v.portal.Shell()
	if shell == nil {
		return nil
	}

	switch {
	case key.Matches(msg, v.keys.NextTab, v.keys.PrevTab):
		return v.switchMethod(shell)
	case shell.Method() == login.MethodVoice:
		v.handleVoiceKey(shell.Authenticator(), msg)
		return nil
	default:
		return v.handleFormKey(shell, msg)
	}
}

func (v *loginView) switchMethod(shell *login.Shell) tea.Cmd {
	v.err = nil
	v.formErr = nil

	if shell.Method() == login.MethodVoice {
		shell.Select(login.MethodTraditional)
		return v.focusField(v.focus)
	}

	v.fields[v.focus].Blur()
	shell.Select(login.MethodVoice)

	return nil
}

func (v *loginView) handleVoiceKey(a *auth.Authenticator, msg tea.KeyMsg) {
	if a == nil {
		return
	}

	var err error

	st := a.State()

	switch st.Stage {
	case auth.StageInstructions:
		if key.Matches(msg, v.keys.Begin) {
			v.err = nil
			err = a.Begin()
		}

	case auth.StageRecording:
		switch {
		case key.Matches(msg, v.keys.Stop):
			err = a.StopRecording()
		case key.Matches(msg, v.keys.Mic):
			err = a.ToggleRecording()
		}

	case auth.StageResult:
		if st.Outcome != auth.OutcomeFailure {
			return
		}

		switch {
		case key.Matches(msg, v.keys.Retry):
			v.err = nil
			err = a.Retry()
		case key.Matches(msg, v.keys.Backup):
			v.err = nil
			err = a.UseBackup()
		}

	case auth.StageProcessing:
	}

	if err != nil && !errors.Is(err, auth.ErrInvalidTransition) {
		v.err = err
	}
}

func (v *loginView) handleFormKey(shell *login.Shell, msg tea.KeyMsg) tea.Cmd {
	if shell.Submitting() {
		return nil
	}

	switch {
	case key.Matches(msg, v.keys.NextField):
		return v.focusField(v.focus + 1)
	case key.Matches(msg, v.keys.PrevField):
		return v.focusField(v.focus - 1)
	case key.Matches(msg, v.keys.Submit):
		if v.focus == fieldUsername {
			return v.focusField(fieldPassword)
		}

		v.formErr = shell.Submit(login.Credentials{
			Username: v.fields[fieldUsername].Value(),
			Password: v.fields[fieldPassword].Value(),
		})

		return nil
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)

	return cmd
}

func (v *loginView) focusField(i int) tea.Cmd {
	n := len(v.fields)
	v.fields[v.focus].Blur()
	v.focus = (i%n + n) % n

	return v.fields[v.focus].Focus()
}

func (v *loginView) View() string {
	shell := v.portal.Shell()
	if shell == nil {
		return style.Muted.Render("Loading...")
	}

	var body, helpLine string

	if shell.Method() == login.MethodVoice {
		body, helpLine = v.voiceView(shell.Authenticator())
	} else {
		body, helpLine = v.formView(shell)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		style.Title.Render("HealthVoice Portal"),
		style.Subtitle.Render("Secure access for healthcare professionals"),
		"",
		v.tabs(shell.Method()),
		"",
		body,
		"",
		helpLine,
	)
}

func (v *loginView) tabs(selected login.Method) string {
	voice, form := style.Tab, style.Tab
	if selected == login.MethodVoice {
		voice = style.ActiveTab
	} else {
		form = style.ActiveTab
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		voice.Render("Voice Login"),
		" ",
		form.Render("Traditional Login"),
	)
}

func (v *loginView) voiceView(a *auth.Authenticator) (string, string) {
	if a == nil {
		return "", ""
	}

	st := a.State()
	lines := []string{style.Label.Render(stageHeading(st)), style.Subtitle.Render(stageDescription(st)), ""}
	bindings := []key.Binding{v.keys.NextTab, v.keys.Quit}

	switch st.Stage {
	case auth.StageInstructions:
		lines = append(lines,
			"When recording starts, say:",
			style.Passphrase.Render(`"My voice is my secure password"`),
			style.Muted.Render("Recording starts automatically."),
		)
		bindings = append([]key.Binding{v.keys.Begin}, bindings...)

	case auth.StageRecording:
		lines = append(lines, v.recordingView(a.Recorder())...)
		bindings = append([]key.Binding{v.keys.Stop, v.keys.Mic}, bindings...)

	case auth.StageProcessing:
		lines = append(lines, v.spinner.WithDetail(detected(st.Transcript)).View())

	case auth.StageResult:
		lines = append(lines, resultView(st)...)

		if st.Outcome == auth.OutcomeFailure {
			bindings = append([]key.Binding{v.keys.Retry, v.keys.Backup}, bindings...)
		}
	}

	if v.err != nil {
		lines = append(lines, "", style.Error.Render(describeError(v.err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...), v.help.ShortHelpView(bindings)
}

func (v *loginView) recordingView(rec *recorder.Recorder) []string {
	if rec == nil {
		return nil
	}

	sess := rec.Session()
	elapsed := uictl.Capped[int]{
		Dial: uictl.DialFunc[int](func() int { return sess.Elapsed }),
		Max:  int(rec.Ceiling().Seconds()),
	}

	num, ceiling := elapsed.Cap()
	lines := []string{
		v.wave.SetLive(sess.IsRecording).View(),
		"",
		v.bar.ViewAs(uictl.Fraction[int](elapsed)),
		style.Muted.Render(clock(num) + " / " + clock(ceiling)),
	}

	if !sess.IsRecording {
		lines = append(lines, style.Warning.Render("Starting microphone..."))
	}

	if sess.Transcript != "" {
		lines = append(lines, "", fmt.Sprintf("Heard: %q", sess.Transcript))
	}

	return lines
}

func resultView(st auth.State) []string {
	var lines []string

	if st.Outcome == auth.OutcomeSuccess {
		lines = append(lines, style.Success.Render("✓ Voice verified"))
	} else {
		lines = append(lines,
			style.Error.Render("✗ Voice not recognized"),
			"We couldn't verify your voice. Try again or use the backup method.",
		)
	}

	if st.Transcript != "" {
		lines = append(lines, "", style.Muted.Render(fmt.Sprintf("You said: %q", st.Transcript)))
	}

	if st.Outcome == auth.OutcomeSuccess {
		lines = append(lines, "", style.Muted.Render("Redirecting to your dashboard..."))
	}

	return lines
}

func (v *loginView) formView(shell *login.Shell) (string, string) {
	lines := []string{
		style.Label.Render("Username"),
		v.fields[fieldUsername].View(),
		"",
		style.Label.Render("Password"),
		v.fields[fieldPassword].View(),
	}

	if shell.Submitting() {
		lines = append(lines, "", style.Accent.Render("Signing in..."))
	}

	if v.formErr != nil {
		lines = append(lines, "", style.Error.Render(capitalize(v.formErr.Error())))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...), v.help.ShortHelpView([]key.Binding{
		v.keys.Submit, v.keys.NextField, v.keys.NextTab, v.keys.Quit,
	})
}

func stageHeading(st auth.State) string {
	switch st.Stage {
	case auth.StageInstructions:
		return "Voice Authentication"
	case auth.StageRecording:
		return "Listening..."
	case auth.StageProcessing:
		return "Verifying"
	default:
		if st.Attempt > 1 {
			return fmt.Sprintf("Result (attempt %d)", st.Attempt)
		}

		return "Result"
	}
}

func stageDescription(st auth.State) string {
	switch st.Stage {
	case auth.StageInstructions:
		return "Secure and hands-free login with your voice"
	case auth.StageRecording:
		return "Please speak your passphrase"
	case auth.StageProcessing:
		return "Analyzing your voice biometrics..."
	default:
		if st.Outcome == auth.OutcomeSuccess {
			return "Authentication successful!"
		}

		return "Authentication failed"
	}
}

func detected(transcript string) string {
	if transcript == "" {
		return "No speech detected"
	}

	return fmt.Sprintf("Detected: %q", transcript)
}

func describeError(err error) string {
	var recErr *recorder.RecognitionError

	switch {
	case errors.Is(err, recorder.ErrPermissionDenied):
		return "Microphone access denied. Check your audio input permissions."
	case errors.As(err, &recErr):
		return "Speech recognition error: " + recErr.Err.Error()
	default:
		return capitalize(err.Error())
	}
}

func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
