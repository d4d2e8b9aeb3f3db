package console

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"go-typer/internal/typer"
)

// viewportSurface is a typer.Surface drawn through a bubbles viewport.
type viewportSurface struct {
	id      string
	content string
	view    viewport.Model
	style   lipgloss.Style
	cursor  lipgloss.Style
	// cursorShown reports the writing session's cursor flag.
	cursorShown func() bool
	lastScroll  typer.ScrollTarget
}

func newViewportSurface(id string, width, height int, style, cursor lipgloss.Style) *viewportSurface {
	return &viewportSurface{
		id:     id,
		view:   viewport.New(width, height),
		style:  style,
		cursor: cursor,
	}
}

func (s *viewportSurface) ID() string {
	return s.id
}

func (s *viewportSurface) Content() string {
	return s.content
}

func (s *viewportSurface) SetContent(content string) {
	s.content = content
	s.view.SetContent(s.render())
}

// split separates the cursor glyph from the text. A "|" that is part of the
// text is only treated as the cursor while the session says it is showing.
func (s *viewportSurface) split() (string, bool) {
	if s.cursorShown == nil || !s.cursorShown() {
		return s.content, false
	}

	return strings.TrimSuffix(s.content, typer.Cursor), true
}

func (s *viewportSurface) render() string {
	body, cursor := s.split()
	text := s.style.Render(typer.Decode(body))

	if !cursor {
		return text
	}

	return text + s.cursor.Render(typer.Cursor)
}

func (s *viewportSurface) ScrollToBottom(target typer.ScrollTarget) {
	s.lastScroll = target
	s.view.GotoBottom()
}

// pageScroll reports whether the last write asked for the whole screen to
// follow the text rather than just the text pane.
func (s *viewportSurface) pageScroll() bool {
	return s.lastScroll == typer.ScrollViewport
}

func (s *viewportSurface) clear() {
	s.content = ""
	s.lastScroll = 0
	s.view.SetContent("")
	s.view.GotoTop()
}

func (s *viewportSurface) resize(width, height int) {
	s.view.Width = max(width, 1)
	s.view.Height = max(height, 1)
	s.view.SetContent(s.render())
	s.view.GotoBottom()
}

func (s *viewportSurface) View() string {
	return s.view.View()
}
