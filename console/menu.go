package console

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go-typer/internal/library"
)

var bannerTags = map[library.Banner]string{
	library.BannerGranted: "granted",
	library.BannerDenied:  "denied",
}

// scriptMenu is the script picker. Movement wraps at both ends.
type scriptMenu struct {
	scripts []*library.Script
	cursor  int
}

func newScriptMenu(lib *library.Library) *scriptMenu {
	menu := &scriptMenu{}

	for _, name := range lib.Names() {
		if s, err := lib.Get(name); err == nil {
			menu.scripts = append(menu.scripts, s)
		}
	}

	return menu
}

func (m *scriptMenu) Len() int {
	return len(m.scripts)
}

func (m *scriptMenu) Next() {
	if len(m.scripts) > 0 {
		m.cursor = (m.cursor + 1) % len(m.scripts)
	}
}

func (m *scriptMenu) Prev() {
	if len(m.scripts) > 0 {
		m.cursor = (m.cursor - 1 + len(m.scripts)) % len(m.scripts)
	}
}

func (m *scriptMenu) Selected() *library.Script {
	if len(m.scripts) == 0 {
		return nil
	}
	return m.scripts[m.cursor]
}

func (m *scriptMenu) View() string {
	builder := &strings.Builder{}

	width := 0
	for _, s := range m.scripts {
		width = max(width, utf8.RuneCountInString(s.Name))
	}

	for idx, s := range m.scripts {
		row := fmt.Sprintf("%-*s  %6d chars", width, s.Name, utf8.RuneCountInString(s.Text))

		if tag, ok := bannerTags[s.Banner]; ok {
			row += "  [" + tag + "]"
		}

		if idx == m.cursor {
			builder.WriteString(cursorStyle.Render("> " + row))
		} else {
			builder.WriteString("  " + row)
		}
		builder.WriteRune('\n')
	}

	return builder.String()
}
