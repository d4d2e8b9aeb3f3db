package typer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrUnknownDriveMode     = errors.New("unknown drive mode")
	ErrUnknownScrollTarget  = errors.New("unknown scroll target")
)

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

type DriveMode int

const (
	KeyPress DriveMode = iota + 1
	Timer
)

func (m DriveMode) String() string {
	switch m {
	case KeyPress:
		return "keypress"
	case Timer:
		return "timer"
	}
	return fmt.Sprintf("DriveMode(%d)", int(m))
}

func ParseDriveMode(s string) (DriveMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keypress", "key", "keys":
		return KeyPress, nil
	case "timer", "auto":
		return Timer, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDriveMode, s)
}

type ScrollTarget int

const (
	ScrollViewport ScrollTarget = iota + 1
	ScrollSurface
)

func (t ScrollTarget) String() string {
	switch t {
	case ScrollViewport:
		return "viewport"
	case ScrollSurface:
		return "surface"
	}
	return fmt.Sprintf("ScrollTarget(%d)", int(t))
}

func ParseScrollTarget(s string) (ScrollTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "viewport", "window", "page":
		return ScrollViewport, nil
	case "surface", "element":
		return ScrollSurface, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScrollTarget, s)
}

// KeyCode follows browser keyCode numbering, so 122 is F11.
type KeyCode int

const (
	KeyCodeF11 KeyCode = 122

	DefaultSpeed = 4

	// penalties subtracted from speed per drive tick
	keyPressPenalty = 1
	timerPenalty    = 6

	baseInterval  = 75 * time.Millisecond
	BlinkInterval = 500 * time.Millisecond
)

type Config struct {
	Text string
	// File is resolved by the caller and overrides Text.
	File         string
	Speed        int
	Control      DriveMode
	ScrollTarget ScrollTarget
	AllowedKeys  []KeyCode
	Complete     func()
}

func DefaultAllowedKeys() []KeyCode {
	return []KeyCode{KeyCodeF11}
}

// withDefaults fills zero values; explicit bad values are left for validate.
func (c Config) withDefaults() Config {
	if c.Speed == 0 {
		c.Speed = DefaultSpeed
	}

	if c.Control == 0 {
		c.Control = KeyPress
	}

	if c.ScrollTarget == 0 {
		c.ScrollTarget = ScrollSurface
	}

	if c.AllowedKeys == nil {
		c.AllowedKeys = DefaultAllowedKeys()
	}

	if c.Complete == nil {
		c.Complete = func() {}
	}

	return c
}

func (c Config) validate() error {
	if c.Speed < 0 {
		return &ConfigError{Field: "speed", Reason: fmt.Sprintf("must be positive, got %d", c.Speed)}
	}

	if c.Control != KeyPress && c.Control != Timer {
		return &ConfigError{Field: "control", Reason: c.Control.String() + " is not a drive mode"}
	}

	if c.ScrollTarget != ScrollViewport && c.ScrollTarget != ScrollSurface {
		return &ConfigError{Field: "scrollTarget", Reason: c.ScrollTarget.String() + " is not a scroll target"}
	}

	return nil
}

// DriveInterval is the timer period for a speed, floor(75ms/speed) but never
// below a millisecond.
func DriveInterval(speed int) time.Duration {
	if speed <= 0 {
		speed = DefaultSpeed
	}

	d := (baseInterval / time.Millisecond / time.Duration(speed)) * time.Millisecond

	if d < time.Millisecond {
		return time.Millisecond
	}

	return d
}
