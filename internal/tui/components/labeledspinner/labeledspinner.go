// Package labeledspinner renders a spinner next to a title with a detail
// line and key help underneath.
package labeledspinner

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alkime/healthvoice/internal/tui/style"
)

type Model struct {
	Spinner spinner.Model
	Title   string
	// Detail is optional and may change between frames.
	Detail string
	Help   string
}

func New(s spinner.Spinner, title, help string) Model {
	return Model{
		Spinner: spinner.New(spinner.WithSpinner(s), spinner.WithStyle(style.Accent)),
		Title:   title,
		Help:    help,
	}
}

// WithDetail returns a copy showing detail under the title.
func (m Model) WithDetail(detail string) Model {
	m.Detail = detail
	return m
}

func (m Model) Init() tea.Cmd {
	return m.Spinner.Tick
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return m, nil
	}

	var cmd tea.Cmd
	m.Spinner, cmd = m.Spinner.Update(tick)

	return m, cmd
}

func (m Model) View() string {
	lines := []string{m.Spinner.View() + " " + style.Title.Render(m.Title)}

	if m.Detail != "" {
		lines = append(lines, "", style.Subtitle.Render(m.Detail))
	}

	if m.Help != "" {
		lines = append(lines, "", style.Help.Render(m.Help))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
