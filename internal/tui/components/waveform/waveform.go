// Package waveform draws the live microphone level as vertical bars.
package waveform

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alkime/healthvoice/internal/tui/style"
	"github.com/alkime/healthvoice/pkg/uictl"
)

// eighths are the partial cell fills, empty to full.
var eighths = []rune(" ▁▂▃▄▅▆▇█")

const frameInterval = 50 * time.Millisecond

// TickMsg redraws the bars.
type TickMsg struct{}

// Model reads a window of samples from levels on every frame and renders one
// bar per column, oldest on the left. Bars are only drawn while live.
type Model struct {
	levels uictl.Levels[int16]
	width  int
	height int
	live   bool
}

// New creates a waveform width columns wide and height rows tall.
func New(levels uictl.Levels[int16], width, height int) Model {
	return Model{
		levels: levels,
		width:  max(width, 1),
		height: max(height, 1),
		live:   true,
	}
}

// SetLive toggles between bars and a flat baseline.
func (m Model) SetLive(live bool) Model {
	m.live = live
	return m
}

func (m Model) Init() tea.Cmd {
	return frame()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, frame()
	}

	return m, nil
}

func (m Model) View() string {
	var samples []int16
	if m.live && m.levels != nil {
		samples = m.levels.Read()
	}

	if len(samples) == 0 {
		return m.baseline()
	}

	bars := m.bars(samples)
	rows := make([]string, m.height)

	for row := range rows {
		// rows are drawn top down; floor is the fill level where this row starts
		floor := (m.height - 1 - row) * 8
		line := make([]rune, m.width)

		for col, bar := range bars {
			line[col] = eighths[min(max(bar-floor, 0), 8)]
		}

		rows[row] = style.Progress.Render(string(line))
	}

	return strings.Join(rows, "\n")
}

// bars splits samples into width buckets and maps each bucket's peak to a
// fill level in [0, height*8].
func (m Model) bars(samples []int16) []int {
	bars := make([]int, m.width)
	size := max(len(samples)/m.width, 1)
	top := float64(m.height * 8)

	for col := range bars {
		start := col * size
		if start >= len(samples) {
			break
		}

		p := peak(samples[start:min(start+size, len(samples))])
		// square root keeps quiet speech visible
		bars[col] = min(int(math.Sqrt(float64(p)/math.MaxInt16)*top), int(top))
	}

	return bars
}

func (m Model) baseline() string {
	rows := make([]string, m.height)
	for i := range rows {
		fill := " "
		if i == m.height-1 {
			fill = "▁"
		}

		rows[i] = style.Muted.Render(strings.Repeat(fill, m.width))
	}

	return strings.Join(rows, "\n")
}

func peak(samples []int16) int {
	var p int

	for _, s := range samples {
		a := int(s)
		if a < 0 {
			a = -a
		}

		p = max(p, a)
	}

	return min(p, math.MaxInt16)
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}
