package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-typer/internal/history"
	"go-typer/internal/library"
	"go-typer/internal/typer"
	"go-typer/models/banner"
	"go-typer/models/clock"
)

const (
	surfaceID      = "console"
	resolveTimeout = 15 * time.Second
	headerHeight   = 2
	footerHeight   = 2
)

var (
	ErrNoScripts = errors.New("no scripts to choose from")
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("200"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000"))
	resultStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).Padding(0, 1)
)

type ConsoleState int

const (
	MENU ConsoleState = iota
	TYPING
	DONE
)

type teaUpdateFunc func(tea.KeyMsg) tea.Cmd
type teaViewFunc func() string

type textLoadedMsg struct {
	sessionID string
	text      string
	err       error
}

type Options struct {
	// Session holds speed, control, scroll target and allowed keys.
	Session typer.Config
	// Text or File start a session immediately and skip the script menu.
	Text string
	File string

	Library  *library.Library
	Resolver typer.Resolver
	History  *history.Store
	Logger   *slog.Logger

	TextColor    string
	CursorColor  string
	GrantedColor string
	DeniedColor  string
}

type Model struct {
	state           ConsoleState
	prevState       ConsoleState
	stateUpdateFunc map[ConsoleState]teaUpdateFunc
	stateViewFunc   map[ConsoleState]teaViewFunc

	currentUpdateFunc teaUpdateFunc
	currentViewFunc   teaViewFunc

	opts     Options
	logger   *slog.Logger
	keys     KeyMap
	menu     *scriptMenu
	loop     *teaLoop
	registry *typer.Registry
	surface  *viewportSurface
	session  *typer.Session
	script   *library.Script
	results  typer.Stats
	clock    clock.Model
	banner   banner.Model
	queued   []tea.Cmd
	lastErr  error

	width  int
	height int
}

func NewModel(opts Options) (*Model, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.Library == nil {
		opts.Library = library.New()
	}

	if opts.Text == "" && opts.File == "" && opts.Library.Len() == 0 {
		return nil, ErrNoScripts
	}

	m := &Model{
		stateUpdateFunc: make(map[ConsoleState]teaUpdateFunc),
		stateViewFunc:   make(map[ConsoleState]teaViewFunc),
		opts:            opts,
		logger:          opts.Logger,
		keys:            DefaultKeyMap(),
		menu:            newScriptMenu(opts.Library),
		loop:            newTeaLoop(),
		clock:           clock.New(),
		banner:          banner.New(opts.GrantedColor, opts.DeniedColor),
	}

	textStyle := lipgloss.NewStyle()

	if opts.TextColor != "" {
		textStyle = textStyle.Foreground(lipgloss.Color(opts.TextColor))
	}

	glyphStyle := cursorStyle

	if opts.CursorColor != "" {
		glyphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(opts.CursorColor))
	}

	m.surface = newViewportSurface(surfaceID, 80, 20, textStyle, glyphStyle)
	m.surface.cursorShown = func() bool {
		return m.session != nil && m.session.CursorVisible()
	}
	m.clock.SetStyle(headerStyle)

	m.registry = typer.NewRegistry(m.loop,
		typer.WithLogger(opts.Logger),
		typer.WithFinishHook(m.sessionFinished),
	)

	m.registerStateUpdateFunc(MENU, m.updateMenu)
	m.registerStateViewFunc(MENU, m.viewMenu)
	m.registerStateUpdateFunc(TYPING, m.updateTyping)
	m.registerStateViewFunc(TYPING, m.viewTyping)
	m.registerStateUpdateFunc(DONE, m.updateDone)
	m.registerStateViewFunc(DONE, m.viewDone)

	m.SetState(MENU)

	return m, nil
}

func (m *Model) Run() error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}

func (m *Model) State() ConsoleState {
	return m.state
}

func (m *Model) SetState(state ConsoleState) {
	m.prevState = m.state
	m.state = state

	m.currentUpdateFunc = m.stateUpdateFunc[m.state]
	m.currentViewFunc = m.stateViewFunc[m.state]
}

func (m *Model) registerStateUpdateFunc(state ConsoleState, updater teaUpdateFunc) {
	m.stateUpdateFunc[state] = updater
}

func (m *Model) registerStateViewFunc(state ConsoleState, viewer teaViewFunc) {
	m.stateViewFunc[state] = viewer
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.clock.Init()}

	if m.opts.Text != "" || m.opts.File != "" {
		script := &library.Script{Name: "custom", Text: m.opts.Text}
		cmds = append(cmds, m.start(script, m.opts.File))
	}

	cmds = append(cmds, m.loop.flush())

	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.surface.resize(msg.Width, msg.Height-headerHeight-footerHeight)
	case loopTimerMsg:
		m.loop.handleTimer(msg)
	case textLoadedMsg:
		m.textLoaded(msg)
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		cmds = append(cmds, m.currentUpdateFunc(msg))
	}

	var cmd tea.Cmd

	m.clock, cmd = m.clock.Update(msg)
	cmds = append(cmds, cmd)

	m.banner, cmd = m.banner.Update(msg)
	cmds = append(cmds, cmd)

	cmds = append(cmds, m.queued...)
	m.queued = nil

	cmds = append(cmds, m.loop.flush())

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	return m.currentViewFunc()
}

// start runs script on the console surface. A non-empty file is resolved
// asynchronously and replaces the script text.
func (m *Model) start(script *library.Script, file string) tea.Cmd {
	m.banner.Hide()
	m.surface.clear()
	m.lastErr = nil
	m.script = script

	cfg := m.opts.Session
	cfg.Text = script.Text
	cfg.File = file
	cfg.Complete = m.complete

	s, err := m.registry.Start(m.surface, cfg)

	if err != nil {
		m.lastErr = err
		m.logger.Error("start failed", "script", script.Name, "error", err)
		m.SetState(DONE)
		return nil
	}

	m.session = s
	m.clock.Restart()
	m.SetState(TYPING)

	if s.State() != typer.Idle {
		return nil
	}

	return resolveCmd(m.opts.Resolver, s.ID(), file)
}

func resolveCmd(resolver typer.Resolver, sessionID, ref string) tea.Cmd {
	return func() tea.Msg {
		if resolver == nil {
			return textLoadedMsg{sessionID: sessionID, err: fmt.Errorf("no resolver for %s", ref)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()

		text, err := resolver.Resolve(ctx, ref)

		return textLoadedMsg{sessionID: sessionID, text: text, err: err}
	}
}

func (m *Model) textLoaded(msg textLoadedMsg) {
	s := m.session

	if s == nil || s.ID() != msg.sessionID || s.State() != typer.Idle {
		return
	}

	if msg.err != nil {
		m.lastErr = msg.err
		m.logger.Error("load failed", "session", s.ID(), "file", s.Config().File, "error", msg.err)
		s.Abandon()
		return
	}

	m.script.Text = msg.text

	if err := s.Begin(msg.text); err != nil {
		m.lastErr = err
	}
}

// complete is the session's completion callback; it also runs on reset.
func (m *Model) complete() {
	if m.session == nil || !m.session.Done() || m.script == nil {
		return
	}

	switch m.script.Banner {
	case library.BannerGranted:
		m.queued = append(m.queued, m.banner.ShowGranted())
	case library.BannerDenied:
		m.queued = append(m.queued, m.banner.ShowDenied())
	}
}

func (m *Model) sessionFinished(s *typer.Session) {
	m.results = s.Stats()

	if m.opts.History != nil {
		name := ""

		if m.script != nil {
			name = m.script.Name
		}

		if err := m.opts.History.Insert(history.FromStats(name, m.results)); err != nil {
			m.logger.Error("record session failed", "session", s.ID(), "error", err)
		}
	}

	m.SetState(DONE)
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		return tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.menu.Next()
	case key.Matches(msg, m.keys.Up):
		m.menu.Prev()
	case key.Matches(msg, m.keys.Select):
		script := m.menu.Selected()

		if script == nil {
			return nil
		}

		copied := *script
		return m.start(&copied, "")
	}
	return nil
}

// updateTyping feeds keys to the session first; only keys the session lets
// through reach the console bindings.
func (m *Model) updateTyping(msg tea.KeyMsg) tea.Cmd {
	ev := keyEvent(msg)
	m.loop.dispatchKey(ev)

	if ev.DefaultPrevented() {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.ToggleClock):
		m.clock.Toggle()
	case key.Matches(msg, m.keys.Reset):
		m.registry.Reset(m.surface)
	case key.Matches(msg, m.keys.Granted):
		return m.banner.ShowGranted()
	case key.Matches(msg, m.keys.Denied):
		return m.banner.ShowDenied()
	case key.Matches(msg, m.keys.Back):
		m.registry.Reset(m.surface)
		m.backToMenu()
	}
	return nil
}

func (m *Model) updateDone(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.ToggleClock):
		m.clock.Toggle()
	case key.Matches(msg, m.keys.Granted):
		return m.banner.ShowGranted()
	case key.Matches(msg, m.keys.Denied):
		return m.banner.ShowDenied()
	case key.Matches(msg, m.keys.Restart):
		if m.script == nil {
			return nil
		}
		return m.start(m.script, "")
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Select):
		if m.menu.Len() == 0 {
			return tea.Quit
		}
		m.backToMenu()
	}
	return nil
}

func (m *Model) backToMenu() {
	m.banner.Hide()
	m.surface.clear()
	m.session = nil
	m.SetState(MENU)
}

func (m *Model) header() string {
	name := "-"

	if m.script != nil {
		name = m.script.Name
	}

	left := headerStyle.Render(fmt.Sprintf("go-typer  %s", name))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", m.clock.View()) + "\n"
}

func (m *Model) viewMenu() string {
	builder := &strings.Builder{}

	builder.WriteString(m.header())
	builder.WriteString("scripts\n\n")
	builder.WriteString(m.menu.View())

	if m.lastErr != nil {
		builder.WriteString(errorStyle.Render(m.lastErr.Error()))
		builder.WriteRune('\n')
	}

	builder.WriteRune('\n')
	builder.WriteString(helpStyle.Render("press enter to start, j/k to move, q to quit"))

	return builder.String()
}

func (m *Model) viewTyping() string {
	builder := &strings.Builder{}

	if !m.surface.pageScroll() {
		builder.WriteString(m.header())
	}

	if m.banner.Visible() {
		builder.WriteString(m.banner.View())
		builder.WriteRune('\n')
	}

	if m.session != nil && m.session.State() == typer.Idle {
		builder.WriteString(helpStyle.Render("loading " + m.session.Config().File + " ..."))
		builder.WriteRune('\n')
	}

	builder.WriteString(m.surface.View())

	return builder.String()
}

func (m *Model) viewDone() string {
	builder := &strings.Builder{}

	builder.WriteString(m.header())

	if m.banner.Visible() {
		builder.WriteString(m.banner.View())
		builder.WriteRune('\n')
	}

	builder.WriteString(m.surface.View())
	builder.WriteRune('\n')

	if m.lastErr != nil {
		builder.WriteString(errorStyle.Render(m.lastErr.Error()))
		builder.WriteRune('\n')
	}

	r := m.results
	summary := fmt.Sprintf("%s  mode: %s  speed: %d  revealed: %d/%d  ticks: %d  keys: %d  time: %s",
		r.Outcome, r.Mode, r.Speed, r.Index, r.Runes, r.Ticks, r.Keys, r.Elapsed.Truncate(time.Millisecond))
	builder.WriteString(resultStyle.Render(summary))
	builder.WriteRune('\n')
	builder.WriteString(helpStyle.Render("press r to run again, enter for scripts, q to quit"))

	return builder.String()
}
