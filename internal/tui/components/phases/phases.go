// Package phases is a container that shows one named child model at a time.
package phases

import (
	tea "github.com/charmbracelet/bubbletea"
)

// NextPhaseMsg advances to the following phase. It is ignored on the last one.
type NextPhaseMsg struct{}

// GotoPhaseMsg jumps to the phase called Name. Unknown names are ignored.
type GotoPhaseMsg struct {
	Name string
}

// Goto returns a command that jumps to the named phase.
func Goto(name string) tea.Cmd {
	return func() tea.Msg { return GotoPhaseMsg{Name: name} }
}

type Phase struct {
	Name string
	mdl  tea.Model
}

func NewPhase(name string, mdl tea.Model) Phase {
	return Phase{Name: name, mdl: mdl}
}

// Model routes messages to the current phase only. A phase is initialised
// each time it becomes current.
type Model struct {
	phases []Phase
	curr   int
}

func New(phases ...Phase) Model {
	return Model{phases: phases}
}

func (m Model) Init() tea.Cmd {
	if len(m.phases) == 0 {
		return nil
	}

	return m.phases[m.curr].mdl.Init()
}

func (m Model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.phases) == 0 {
		return m, nil
	}

	switch msg := teaMsg.(type) {
	case NextPhaseMsg:
		return m.enter(m.curr + 1)
	case GotoPhaseMsg:
		return m.enter(m.index(msg.Name))
	}

	updated, cmd := m.phases[m.curr].mdl.Update(teaMsg)
	m.phases[m.curr].mdl = updated

	return m, cmd
}

func (m Model) View() string {
	if len(m.phases) == 0 {
		return ""
	}

	return m.phases[m.curr].mdl.View()
}

// Current returns the name of the current phase.
func (m Model) Current() string {
	if len(m.phases) == 0 {
		return ""
	}

	return m.phases[m.curr].Name
}

func (m Model) index(name string) int {
	for i, p := range m.phases {
		if p.Name == name {
			return i
		}
	}

	return -1
}

func (m Model) enter(i int) (Model, tea.Cmd) {
	if i < 0 || i >= len(m.phases) || i == m.curr {
		return m, nil
	}

	m.curr = i

	return m, m.phases[i].mdl.Init()
}
