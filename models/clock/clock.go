package clock

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultTickRate = time.Second

type clockTickMsg time.Time

func clockTick() tea.Cmd {
	return tea.Every(defaultTickRate, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

// Model shows the wall clock and the time since the last Restart.
type Model struct {
	time    time.Time
	start   time.Time
	hidden  bool
	builder *strings.Builder
	style   lipgloss.Style
}

func New() Model {
	now := time.Now()
	return Model{
		time:    now,
		start:   now,
		builder: &strings.Builder{},
	}
}

func (m *Model) SetStyle(style lipgloss.Style) {
	m.style = style
}

func (m *Model) Restart() {
	m.start = m.time
}

func (m *Model) Toggle() {
	m.hidden = !m.hidden
}

func (m Model) Hidden() bool {
	return m.hidden
}

func (m Model) Elapsed() time.Duration {
	return m.time.Sub(m.start).Truncate(time.Second)
}

func (m Model) Init() tea.Cmd {
	return clockTick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clockTickMsg:
		m.time = time.Time(msg)
		return m, clockTick()
	}
	return m, nil
}

func (m Model) View() string {
	if m.hidden {
		return ""
	}

	m.builder.Reset()
	render := m.style.Render
	elapsed := m.Elapsed()
	fmt.Fprintf(m.builder, "%s  +%02d:%02d", m.time.Format(time.Kitchen), int(elapsed.Minutes()), int(elapsed.Seconds())%60)
	return render(m.builder.String())
}
