package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alkime/healthvoice/internal/dashboard"
	"github.com/alkime/healthvoice/internal/tui/style"
)

const cardWidth = 30

type dashboardView struct {
	now  func() time.Time
	data dashboard.Dashboard
}

func newDashboardView(now func() time.Time) *dashboardView {
	return &dashboardView{now: now}
}

// Init takes the snapshot, so the date is the day the dashboard was opened.
func (d *dashboardView) Init() tea.Cmd {
	d.data = dashboard.Snapshot(d.now())
	return nil
}

func (d *dashboardView) Update(tea.Msg) (tea.Model, tea.Cmd) {
	return d, nil
}

func (d *dashboardView) View() string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		style.Title.Render(d.data.Title),
		style.Subtitle.Render("Welcome back, "+d.data.Practitioner),
		style.Muted.Render(d.data.Date),
	)

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Today's Appointments", d.appointments()),
		" ",
		card("Notifications", d.notifications()),
		" ",
		card("Security Status", d.security()),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		cards,
		"",
		style.Label.Render("Recent Patient Activity"),
		d.activity(),
		"",
		style.Help.Render("esc quit"),
	)
}

func (d *dashboardView) appointments() string {
	lines := make([]string, 0, len(d.data.Appointments))
	for _, a := range d.data.Appointments {
		lines = append(lines, fmt.Sprintf("%s  %s\n%s", style.Accent.Render(a.Time), a.Patient, style.Muted.Render(a.Kind)))
	}

	return strings.Join(lines, "\n")
}

func (d *dashboardView) notifications() string {
	lines := make([]string, 0, len(d.data.Notifications))
	for _, n := range d.data.Notifications {
		lines = append(lines, n.Message+"\n"+style.Muted.Render(n.Age))
	}

	return strings.Join(lines, "\n")
}

func (d *dashboardView) security() string {
	lines := make([]string, 0, len(d.data.Security.Checks)+2)
	for _, c := range d.data.Security.Checks {
		lines = append(lines, fmt.Sprintf("%s  %s", c.Name, style.Badge.Render(c.Status)))
	}

	last := d.data.Security.LastLogin
	lines = append(lines, "", "Last login: "+last.When, style.Muted.Render(last.Detail))

	return strings.Join(lines, "\n")
}

func (d *dashboardView) activity() string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(style.Muted).
		Headers("PATIENT", "ACTION", "DATE", "STATUS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return style.Label.Padding(0, 1)
			}

			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, a := range d.data.Activity {
		t.Row(a.Patient, a.Action, a.Date, a.Status)
	}

	return t.Render()
}

func card(title, body string) string {
	return style.Card.Width(cardWidth).Render(style.Label.Render(title) + "\n\n" + body)
}
