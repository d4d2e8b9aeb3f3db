package console

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"go-typer/internal/typer"
)

type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Select      key.Binding
	Back        key.Binding
	Restart     key.Binding
	Reset       key.Binding
	ToggleClock key.Binding
	Granted     key.Binding
	Denied      key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev script"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next script"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "scripts"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "again"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reset"),
		),
		ToggleClock: key.NewBinding(
			key.WithKeys("f11"),
			key.WithHelp("f11", "clock"),
		),
		Granted: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "access granted"),
		),
		Denied: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "access denied"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

var specialKeyCodes = map[tea.KeyType]typer.KeyCode{
	tea.KeyBackspace: 8,
	tea.KeyTab:       9,
	tea.KeyEnter:     13,
	tea.KeyEsc:       27,
	tea.KeySpace:     32,
	tea.KeyPgUp:      33,
	tea.KeyPgDown:    34,
	tea.KeyEnd:       35,
	tea.KeyHome:      36,
	tea.KeyLeft:      37,
	tea.KeyUp:        38,
	tea.KeyRight:     39,
	tea.KeyDown:      40,
	tea.KeyInsert:    45,
	tea.KeyDelete:    46,
	tea.KeyF1:        112,
	tea.KeyF2:        113,
	tea.KeyF3:        114,
	tea.KeyF4:        115,
	tea.KeyF5:        116,
	tea.KeyF6:        117,
	tea.KeyF7:        118,
	tea.KeyF8:        119,
	tea.KeyF9:        120,
	tea.KeyF10:       121,
	tea.KeyF11:       122,
	tea.KeyF12:       123,
}

// keyCode maps a terminal key onto browser keyCode numbering.
func keyCode(msg tea.KeyMsg) typer.KeyCode {
	if code, ok := specialKeyCodes[msg.Type]; ok {
		return code
	}

	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		return typer.KeyCode('A' + int(msg.Type-tea.KeyCtrlA))
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
		r := msg.Runes[0]

		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}

		return typer.KeyCode(r)
	}

	return typer.KeyCode(int(msg.Type))
}

func keyEvent(msg tea.KeyMsg) *typer.KeyEvent {
	return typer.NewKeyEvent(keyCode(msg), msg.String())
}
