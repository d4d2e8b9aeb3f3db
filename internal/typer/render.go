package typer

import (
	"strings"
	"unicode"
)

var (
	tabStop = strings.Repeat(nbsp, 4)
	// only markup-significant characters; quotes stay literal
	escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// RenderFragment renders the first index runes of text as surface markup.
// An index past the end of text renders the whole text.
func RenderFragment(text string, index int) string {
	runes := []rune(text)

	if index > len(runes) {
		index = len(runes)
	}

	if index <= 0 {
		return ""
	}

	escaped := escaper.Replace(string(runes[:index]))

	builder := &strings.Builder{}
	builder.Grow(len(escaped))

	for _, r := range escaped {
		switch {
		case r == '\n':
			builder.WriteString(lineBreak)
		case r == '\t':
			builder.WriteString(tabStop)
		case unicode.IsSpace(r):
			builder.WriteString(nbsp)
		default:
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// stepSize is how far one drive tick moves the reveal index. Low speeds in
// timer mode always fall back to one rune per tick.
func stepSize(speed int, mode DriveMode) int {
	penalty := keyPressPenalty

	if mode == Timer {
		penalty = timerPenalty
	}

	if inc := speed - penalty; inc > 0 {
		return inc
	}

	return 1
}
