package typer

import (
	"strings"
	"testing"
	"time"
)

func TestRenderFragment(t *testing.T) {
	nb := "&nbsp;"

	tests := []struct {
		name  string
		text  string
		index int
		want  string
	}{
		{"tab and newline", "a\tb\nc", 5, "a" + strings.Repeat(nb, 4) + "b<br/>c"},
		{"escapes markup", "<b>&", 4, "&lt;b&gt;&amp;"},
		{"spaces", "a b  c", 6, "a" + nb + "b" + nb + nb + "c"},
		{"prefix only", "hello", 2, "he"},
		{"clamps overshoot", "hi", 40, "hi"},
		{"zero index", "hi", 0, ""},
		{"empty text", "", 3, ""},
		{"runes not bytes", "héllo", 2, "hé"},
		{"quotes stay literal", `"x"`, 3, `"x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderFragment(tt.text, tt.index)
			if got != tt.want {
				t.Errorf("RenderFragment(%q, %d) = %q, want %q", tt.text, tt.index, got, tt.want)
			}
		})
	}
}

func TestStepSize(t *testing.T) {
	tests := []struct {
		speed int
		mode  DriveMode
		want  int
	}{
		{4, KeyPress, 3},
		{1, KeyPress, 1},
		{2, KeyPress, 1},
		{10, KeyPress, 9},
		{4, Timer, 1},
		{6, Timer, 1},
		{7, Timer, 1},
		{8, Timer, 2},
		{20, Timer, 14},
	}

	for _, tt := range tests {
		if got := stepSize(tt.speed, tt.mode); got != tt.want {
			t.Errorf("stepSize(%d, %s) = %d, want %d", tt.speed, tt.mode, got, tt.want)
		}
	}
}

func TestDriveInterval(t *testing.T) {
	tests := []struct {
		speed int
		want  time.Duration
	}{
		{1, 75 * time.Millisecond},
		{4, 18 * time.Millisecond},
		{10, 7 * time.Millisecond},
		{75, time.Millisecond},
		{200, time.Millisecond},
	}

	for _, tt := range tests {
		if got := DriveInterval(tt.speed); got != tt.want {
			t.Errorf("DriveInterval(%d) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	markup := RenderFragment("a\tb\n<br/> & c", 100)
	want := "a    b\n<br/> & c"

	if got := Decode(markup); got != want {
		t.Errorf("Decode() = %q, want %q", got, want)
	}
}
