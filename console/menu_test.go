package console

import (
	"strings"
	"testing"

	"go-typer/internal/library"
)

func newTestMenu() *scriptMenu {
	lib := library.New()
	lib.Set(&library.Script{Name: "mainframe", Banner: library.BannerGranted, Text: "abc"})
	lib.Set(&library.Script{Name: "firewall", Banner: library.BannerDenied, Text: "de"})
	lib.Set(&library.Script{Name: "kernel", Text: "f"})

	return newScriptMenu(lib)
}

func TestScriptMenuWraps(t *testing.T) {
	menu := newTestMenu()

	tests := []struct {
		name string
		move func()
		want string
	}{
		{"first", func() {}, "firewall"},
		{"prev wraps to last", menu.Prev, "mainframe"},
		{"next wraps to first", menu.Next, "firewall"},
		{"next", menu.Next, "kernel"},
	}

	for _, test := range tests {
		test.move()

		if got := menu.Selected().Name; got != test.want {
			t.Errorf("%s: selected = %q, want %q", test.name, got, test.want)
		}
	}
}

func TestScriptMenuEmpty(t *testing.T) {
	menu := newScriptMenu(library.New())

	menu.Next()
	menu.Prev()

	if menu.Selected() != nil || menu.Len() != 0 {
		t.Error("empty menu should select nothing")
	}

	if menu.View() != "" {
		t.Errorf("view = %q, want empty", menu.View())
	}
}

func TestScriptMenuView(t *testing.T) {
	view := newTestMenu().View()

	lines := strings.Split(strings.TrimSuffix(view, "\n"), "\n")

	if len(lines) != 3 {
		t.Fatalf("got %d rows, want 3:\n%s", len(lines), view)
	}

	if !strings.Contains(lines[0], "> firewall") || !strings.Contains(lines[0], "[denied]") {
		t.Errorf("first row = %q", lines[0])
	}

	if strings.Contains(lines[1], "[") {
		t.Errorf("kernel has no banner, row = %q", lines[1])
	}
}
