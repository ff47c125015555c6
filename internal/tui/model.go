// Package tui is the terminal front end of the portal.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alkime/healthvoice/internal/portal"
	"github.com/alkime/healthvoice/internal/sched"
	"github.com/alkime/healthvoice/internal/tui/components/phases"
	"github.com/alkime/healthvoice/pkg/uictl"
)

const (
	PhaseLogin     = "Login"
	PhaseDashboard = "Dashboard"
)

// RunMsg carries a scheduled callback onto the program goroutine, which owns
// all portal state.
type RunMsg func()

// Pump forwards callbacks from q into the program until ctx is done.
func Pump(ctx context.Context, q *sched.Queue, send func(tea.Msg)) {
	q.Run(ctx, func(fn func()) { send(RunMsg(fn)) })
}

// Deps configure the UI.
type Deps struct {
	// Wiring builds the login stack. Its scheduler must deliver callbacks
	// as RunMsg, see Pump.
	Wiring portal.Wiring
	// Meter feeds the waveform. Optional.
	Meter  uictl.Levels[int16]
	Now    func() time.Time
	Logger *slog.Logger
	// Cancel is called on quit. Optional.
	Cancel context.CancelFunc
}

// Model is the root model: a login phase and a dashboard phase driven by the
// portal's view switch.
type Model struct {
	keys   KeyMap
	portal *portal.Portal
	phases phases.Model
	login  *loginView
	cancel context.CancelFunc
	logger *slog.Logger

	pending []tea.Cmd
}

func New(deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if deps.Now == nil {
		deps.Now = time.Now
	}

	m := &Model{
		keys:   DefaultKeyMap(),
		cancel: deps.Cancel,
		logger: logger.With("component", "tui"),
	}

	m.login = newLoginView(m.keys, deps.Meter)

	w := deps.Wiring
	next := w.OnError
	w.OnError = func(err error) {
		m.login.err = err
		if next != nil {
			next(err)
		}
	}

	m.portal = portal.New(w.ShellFactory(), logger, m.viewChanged)
	m.login.portal = m.portal

	m.phases = phases.New(
		phases.NewPhase(PhaseLogin, m.login),
		phases.NewPhase(PhaseDashboard, newDashboardView(deps.Now)),
	)

	return m
}

// Portal exposes the underlying portal, mainly for tests.
func (m *Model) Portal() *portal.Portal {
	return m.portal
}

// Phase returns the name of the visible phase.
func (m *Model) Phase() string {
	return m.phases.Current()
}

func (m *Model) Init() tea.Cmd {
	m.portal.Mount()
	return m.phases.Init()
}

func (m *Model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case RunMsg:
		msg()
		return m, tea.Batch(m.drain()...)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.portal.Teardown()

			if m.cancel != nil {
				m.cancel()
			}

			return m, tea.Quit
		}
	}

	updated, cmd := m.phases.Update(teaMsg)
	m.phases = updated.(phases.Model) //nolint:forcetypeassert // phases.Model always returns phases.Model

	return m, tea.Batch(append(m.drain(), cmd)...)
}

func (m *Model) View() string {
	return m.phases.View()
}

func (m *Model) viewChanged(v portal.View) {
	if v != portal.ViewDashboard {
		return
	}

	m.logger.Info("login succeeded")

	updated, cmd := m.phases.Update(phases.GotoPhaseMsg{Name: PhaseDashboard})
	m.phases = updated.(phases.Model) //nolint:forcetypeassert // phases.Model always returns phases.Model
	m.pending = append(m.pending, cmd)
}

func (m *Model) drain() []tea.Cmd {
	cmds := m.pending
	m.pending = nil

	return cmds
}
