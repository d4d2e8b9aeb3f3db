package typer

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrSessionNotIdle = errors.New("session already begun")
)

// Cursor is the blinking glyph appended after the revealed text.
const Cursor = "|"

type State int

const (
	Idle State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	}
	return "unknown"
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeComplete means the whole text was revealed.
	OutcomeComplete
	OutcomeReset
	// OutcomeAbandoned means the text never arrived.
	OutcomeAbandoned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeReset:
		return "reset"
	case OutcomeAbandoned:
		return "abandoned"
	}
	return "none"
}

type Stats struct {
	ID         string
	Mode       DriveMode
	Speed      int
	Runes      int
	Index      int
	Ticks      int
	Keys       int
	Suppressed int
	Elapsed    time.Duration
	Outcome    Outcome
}

type Session struct {
	id       string
	surface  Surface
	registry *Registry
	cfg      Config
	logger   *slog.Logger

	text          string
	length        int
	index         int
	cursorVisible bool
	state         State
	outcome       Outcome

	stopDrive func()
	stopBlink func()

	ticks      int
	keys       int
	suppressed int
	startedAt  time.Time
	finishedAt time.Time
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Surface() Surface {
	return s.surface
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Index() int {
	return s.index
}

func (s *Session) Text() string {
	return s.text
}

func (s *Session) CursorVisible() bool {
	return s.cursorVisible
}

func (s *Session) Config() Config {
	return s.cfg
}

func (s *Session) Stats() Stats {
	end := s.finishedAt

	if end.IsZero() {
		end = time.Now()
	}

	var elapsed time.Duration

	if !s.startedAt.IsZero() {
		elapsed = end.Sub(s.startedAt)
	}

	return Stats{
		ID:         s.id,
		Mode:       s.cfg.Control,
		Speed:      s.cfg.Speed,
		Runes:      s.length,
		Index:      min(s.index, s.length),
		Ticks:      s.ticks,
		Keys:       s.keys,
		Suppressed: s.suppressed,
		Elapsed:    elapsed,
		Outcome:    s.outcome,
	}
}

// Begin sets the source text and arms the blinker and the drive source.
func (s *Session) Begin(text string) error {
	if s.state != Idle {
		return ErrSessionNotIdle
	}

	s.text = text
	s.length = utf8.RuneCountInString(text)
	s.state = Running
	s.startedAt = time.Now()

	loop := s.registry.loop

	s.stopBlink = PeriodicSource{Interval: BlinkInterval}.Attach(loop, func(*KeyEvent) {
		s.Blink()
	})

	s.stopDrive = driveSource(s.cfg.Control, s.cfg.Speed).Attach(loop, s.driveTick)

	s.logger.Info("session running",
		"session", s.id,
		"surface", s.surface.ID(),
		"runes", s.length,
		"control", s.cfg.Control.String(),
		"speed", s.cfg.Speed,
	)

	return nil
}

// Advance moves the reveal index one step and rewrites the surface with the
// visible prefix. It does nothing until text is loaded.
func (s *Session) Advance() string {
	if s.text == "" {
		return ""
	}

	s.index += stepSize(s.cfg.Speed, s.cfg.Control)

	fragment := s.Fragment()

	s.hideCursor()
	s.surface.SetContent(fragment)
	s.surface.ScrollToBottom(s.cfg.ScrollTarget)

	return fragment
}

// Fragment renders the current index without advancing it.
func (s *Session) Fragment() string {
	return RenderFragment(s.text, s.index)
}

// Blink toggles the cursor glyph at the end of the surface content.
func (s *Session) Blink() {
	if s.state != Running {
		return
	}

	if s.cursorVisible {
		s.hideCursor()
		return
	}

	s.cursorVisible = true
	s.surface.SetContent(s.surface.Content() + Cursor)
}

func (s *Session) hideCursor() {
	if !s.cursorVisible {
		return
	}

	s.cursorVisible = false
	s.surface.SetContent(strings.TrimSuffix(s.surface.Content(), Cursor))
}

// Done reports whether the reveal index has reached the end of the text.
func (s *Session) Done() bool {
	return s.length > 0 && s.length <= s.index
}

func (s *Session) driveTick(ev *KeyEvent) {
	if s.state != Running {
		return
	}

	s.ticks++
	s.Advance()

	if ev != nil {
		s.keys++

		if !slices.Contains(s.cfg.AllowedKeys, ev.Code) {
			ev.PreventDefault()
			s.suppressed++
		}
	}

	if s.Done() {
		s.finish(OutcomeComplete)
	}
}

// Reset ends the session early. The completion callback still fires.
func (s *Session) Reset() {
	s.finish(OutcomeReset)
}

// Abandon releases a session whose text could not be resolved, without
// invoking the completion callback.
func (s *Session) Abandon() {
	if s.state == Finished {
		return
	}

	s.teardown(OutcomeAbandoned)
	s.logger.Warn("session abandoned", "session", s.id, "surface", s.surface.ID())
	s.registry.notify(s)
}

func (s *Session) finish(outcome Outcome) {
	if s.state == Finished {
		return
	}

	s.teardown(outcome)

	s.logger.Info("session finished",
		"session", s.id,
		"surface", s.surface.ID(),
		"outcome", outcome.String(),
		"ticks", s.ticks,
		"index", s.index,
	)

	s.cfg.Complete()
	s.registry.notify(s)
}

// teardown cancels every tick source and releases the surface in one step.
func (s *Session) teardown(outcome Outcome) {
	s.state = Finished
	s.outcome = outcome
	s.finishedAt = time.Now()

	if s.stopDrive != nil {
		s.stopDrive()
		s.stopDrive = nil
	}

	if s.stopBlink != nil {
		s.stopBlink()
		s.stopBlink = nil
	}

	s.hideCursor()
	s.registry.release(s)
}
