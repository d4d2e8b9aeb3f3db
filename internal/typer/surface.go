package typer

import (
	"html"
	"strings"
)

// Surface is where a session writes its output. Content is markup produced by
// RenderFragment, possibly followed by the cursor glyph.
type Surface interface {
	ID() string
	Content() string
	SetContent(content string)
	ScrollToBottom(target ScrollTarget)
}

// Buffer is an in-memory Surface.
type Buffer struct {
	id      string
	content string
	scrolls []ScrollTarget
	writes  int
}

func NewBuffer(id string) *Buffer {
	return &Buffer{id: id}
}

func (b *Buffer) ID() string {
	return b.id
}

func (b *Buffer) Content() string {
	return b.content
}

func (b *Buffer) SetContent(content string) {
	b.content = content
	b.writes++
}

func (b *Buffer) ScrollToBottom(target ScrollTarget) {
	b.scrolls = append(b.scrolls, target)
}

func (b *Buffer) Writes() int {
	return b.writes
}

func (b *Buffer) Scrolls() []ScrollTarget {
	return b.scrolls
}

const (
	lineBreak = "<br/>"
	nbsp      = "&nbsp;"
)

// Decode turns surface markup back into plain terminal text. Line breaks are
// split out before unescaping so an escaped "&lt;br/&gt;" in the source stays text.
func Decode(markup string) string {
	lines := strings.Split(markup, lineBreak)

	for i, line := range lines {
		lines[i] = strings.ReplaceAll(html.UnescapeString(line), "\u00a0", " ")
	}

	return strings.Join(lines, "\n")
}
