package banner

import (
	"math"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

type Kind int

const (
	None Kind = iota
	Granted
	Denied
)

func (k Kind) Title() string {
	switch k {
	case Granted:
		return "ACCESS GRANTED"
	case Denied:
		return "ACCESS DENIED"
	}
	return ""
}

const fps = 60

var (
	bannerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			Padding(1, 6).
			Bold(true).
			Align(lipgloss.Center)
)

type frameMsg struct {
	id int
}

// Model is an access banner that fades in when shown.
type Model struct {
	kind     Kind
	id       int
	spring   harmonica.Spring
	level    float64
	velocity float64
	colors   map[Kind]lipgloss.Color
}

func New(granted, denied string) Model {
	return Model{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		colors: map[Kind]lipgloss.Color{
			Granted: lipgloss.Color(granted),
			Denied:  lipgloss.Color(denied),
		},
	}
}

func (m Model) Kind() Kind {
	return m.kind
}

func (m Model) Visible() bool {
	return m.kind != None
}

// Settled reports whether the fade-in has finished.
func (m Model) Settled() bool {
	return m.level >= 1
}

func (m *Model) ShowGranted() tea.Cmd {
	return m.show(Granted)
}

func (m *Model) ShowDenied() tea.Cmd {
	return m.show(Denied)
}

// Hide removes any banner and drops frames still in flight.
func (m *Model) Hide() {
	m.kind = None
	m.id++
	m.level = 0
	m.velocity = 0
}

func (m *Model) show(kind Kind) tea.Cmd {
	m.Hide()
	m.kind = kind
	return m.frame()
}

func (m Model) frame() tea.Cmd {
	id := m.id
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.id != m.id || m.kind == None || m.Settled() {
			return m, nil
		}

		m.level, m.velocity = m.spring.Update(m.level, m.velocity, 1.0)

		if math.Abs(1-m.level) < 0.01 && math.Abs(m.velocity) < 0.01 {
			m.level = 1
			m.velocity = 0
			return m, nil
		}

		return m, m.frame()
	}
	return m, nil
}

// shade maps the fade level onto the 24 step grayscale ramp of the 256 color palette.
func (m Model) shade() lipgloss.Color {
	level := min(max(m.level, 0), 1)
	return lipgloss.Color(strconv.Itoa(232 + int(level*23)))
}

func (m Model) View() string {
	if m.kind == None {
		return ""
	}

	color := m.colors[m.kind]
	style := bannerStyle.BorderForeground(color)

	if m.Settled() {
		style = style.Foreground(color)
	} else {
		style = style.Foreground(m.shade())
	}

	return style.Render(m.kind.Title())
}
