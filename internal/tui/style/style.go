// Package style holds the lipgloss styles shared by the TUI.
package style

import "github.com/charmbracelet/lipgloss"

// Names omit a "Style" suffix; they read as style.Title at call sites.
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))

	Subtitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	Accent = lipgloss.NewStyle().
		Foreground(lipgloss.Color("38"))

	Success = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("42"))

	Error = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196"))

	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	Progress = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255"))

	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	// Passphrase frames the phrase the user reads aloud.
	Passphrase = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("255")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 2)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	ActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("25")).
			Padding(0, 2)

	Tab = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Padding(0, 2)

	Badge = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))
)
