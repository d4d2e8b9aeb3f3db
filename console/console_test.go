package console

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-typer/internal/library"
	"go-typer/internal/typer"
	"go-typer/models/banner"
)

// ids handed out by the loop for a fresh session: the blinker is armed first.
const (
	blinkTimerID = 1
	driveTimerID = 2
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTextModel(t *testing.T, text string, session typer.Config) *Model {
	t.Helper()

	m, err := NewModel(Options{Text: text, Session: session})

	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	m.Init()

	if m.State() != TYPING {
		t.Fatalf("state after init = %v, want TYPING", m.State())
	}

	return m
}

func TestNewModelWithoutScripts(t *testing.T) {
	_, err := NewModel(Options{})

	if !errors.Is(err, ErrNoScripts) {
		t.Errorf("got %v, want ErrNoScripts", err)
	}
}

func TestKeyPressReveals(t *testing.T) {
	m := newTextModel(t, "hello world", typer.Config{Speed: 4, Control: typer.KeyPress})

	m.Update(runes("a"))

	if got := m.surface.Content(); got != "hel" {
		t.Errorf("content after one key = %q, want %q", got, "hel")
	}

	for range 3 {
		m.Update(runes("a"))
	}

	if m.State() != DONE {
		t.Fatalf("state = %v, want DONE", m.State())
	}

	if m.results.Outcome != typer.OutcomeComplete {
		t.Errorf("outcome = %v, want %v", m.results.Outcome, typer.OutcomeComplete)
	}

	if m.results.Suppressed != 4 {
		t.Errorf("suppressed = %d, want 4", m.results.Suppressed)
	}

	if m.loop.armed() != 0 {
		t.Errorf("%d loop callbacks still armed", m.loop.armed())
	}
}

func TestAllowedKeyReachesBindings(t *testing.T) {
	m := newTextModel(t, "some long enough text", typer.Config{Speed: 2, Control: typer.KeyPress})

	m.Update(tea.KeyMsg{Type: tea.KeyF11})

	if !m.clock.Hidden() {
		t.Error("f11 should pass through and toggle the clock")
	}

	if m.session.Index() != 1 {
		t.Errorf("index = %d, want 1", m.session.Index())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})

	if m.banner.Visible() {
		t.Error("ctrl+g is not allowed and should have been swallowed")
	}

	if m.session.Index() != 2 {
		t.Errorf("index = %d, want 2", m.session.Index())
	}
}

func TestResetWhenAllowed(t *testing.T) {
	m := newTextModel(t, "some long enough text", typer.Config{
		Control:     typer.KeyPress,
		AllowedKeys: []typer.KeyCode{'R'},
	})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	if m.State() != DONE {
		t.Fatalf("state = %v, want DONE", m.State())
	}

	if m.results.Outcome != typer.OutcomeReset {
		t.Errorf("outcome = %v, want %v", m.results.Outcome, typer.OutcomeReset)
	}
}

func TestTimerDrivesToDone(t *testing.T) {
	m := newTextModel(t, "hi", typer.Config{Speed: 4, Control: typer.Timer})

	m.Update(loopTimerMsg{id: driveTimerID})

	if m.session.Index() != 1 {
		t.Errorf("index = %d, want 1", m.session.Index())
	}

	m.Update(loopTimerMsg{id: blinkTimerID})

	if !m.session.CursorVisible() {
		t.Error("cursor should be visible after a blink")
	}

	m.Update(loopTimerMsg{id: driveTimerID})

	if m.State() != DONE {
		t.Fatalf("state = %v, want DONE", m.State())
	}

	if got := m.surface.Content(); got != "hi" {
		t.Errorf("final content = %q, want %q", got, "hi")
	}

	if m.loop.armed() != 0 {
		t.Errorf("%d loop callbacks still armed", m.loop.armed())
	}

	m.Update(loopTimerMsg{id: driveTimerID})

	if m.results.Ticks != 2 {
		t.Errorf("ticks = %d, want 2", m.results.Ticks)
	}
}

func TestMenuStartsScriptWithBanner(t *testing.T) {
	lib := library.New()
	lib.Set(&library.Script{Name: "door", Banner: library.BannerGranted, Text: "abc"})

	m, err := NewModel(Options{Library: lib, Session: typer.Config{Speed: 4}})

	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	m.Init()
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.State() != TYPING {
		t.Fatalf("state = %v, want TYPING", m.State())
	}

	m.Update(runes("x"))

	if m.State() != DONE {
		t.Fatalf("state = %v, want DONE", m.State())
	}

	if m.banner.Kind() != banner.Granted {
		t.Errorf("banner = %v, want granted", m.banner.Kind())
	}

	m.Update(runes("r"))

	if m.State() != TYPING {
		t.Errorf("restart should return to TYPING, got %v", m.State())
	}

	if m.banner.Visible() {
		t.Error("banner should be hidden on restart")
	}
}

func TestFileLoaded(t *testing.T) {
	tests := []struct {
		name    string
		msg     textLoadedMsg
		state   ConsoleState
		outcome typer.Outcome
	}{
		{"ok", textLoadedMsg{text: "loaded"}, TYPING, typer.OutcomeNone},
		{"failed", textLoadedMsg{err: errors.New("boom")}, DONE, typer.OutcomeAbandoned},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, err := NewModel(Options{File: "remote.txt"})

			if err != nil {
				t.Fatalf("new model: %v", err)
			}

			m.Init()

			if m.session.State() != typer.Idle {
				t.Fatalf("session state = %v, want Idle", m.session.State())
			}

			msg := test.msg
			msg.sessionID = m.session.ID()
			m.Update(msg)

			if m.State() != test.state {
				t.Errorf("state = %v, want %v", m.State(), test.state)
			}

			if got := m.session.Stats().Outcome; got != test.outcome {
				t.Errorf("outcome = %v, want %v", got, test.outcome)
			}
		})
	}
}

func TestStaleFileLoadIgnored(t *testing.T) {
	m, err := NewModel(Options{File: "remote.txt"})

	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	m.Init()
	m.Update(textLoadedMsg{sessionID: "other", text: "x"})

	if m.session.State() != typer.Idle {
		t.Errorf("session state = %v, want Idle", m.session.State())
	}
}

func TestTypedBarIsNotTheCursor(t *testing.T) {
	m := newTextModel(t, "ab|cdefgh", typer.Config{Speed: 4, Control: typer.KeyPress})

	tests := []struct {
		name   string
		msg    tea.Msg
		body   string
		cursor bool
	}{
		{"typed bar", runes("a"), "ab|", false},
		{"blink on", loopTimerMsg{id: blinkTimerID}, "ab|", true},
		{"blink off", loopTimerMsg{id: blinkTimerID}, "ab|", false},
	}

	for _, test := range tests {
		m.Update(test.msg)

		body, cursor := m.surface.split()

		if body != test.body || cursor != test.cursor {
			t.Errorf("%s: split = %q, %v, want %q, %v", test.name, body, cursor, test.body, test.cursor)
		}
	}
}
