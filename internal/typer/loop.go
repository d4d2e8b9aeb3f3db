package typer

import "time"

// Loop is a single-threaded event loop. Callbacks never run concurrently with
// each other, and the returned cancel funcs must be called from the loop.
type Loop interface {
	Every(d time.Duration, fn func()) (cancel func())
	OnKeyDown(fn func(*KeyEvent)) (cancel func())
}

type KeyEvent struct {
	Code      KeyCode
	Name      string
	prevented bool
}

func NewKeyEvent(code KeyCode, name string) *KeyEvent {
	return &KeyEvent{Code: code, Name: name}
}

// PreventDefault marks the key as consumed by the session.
func (e *KeyEvent) PreventDefault() {
	e.prevented = true
}

func (e *KeyEvent) DefaultPrevented() bool {
	return e.prevented
}

type virtualTimer struct {
	period time.Duration
	due    time.Duration
	fn     func()
	live   bool
}

type keyListener struct {
	fn   func(*KeyEvent)
	live bool
}

// VirtualLoop is a deterministic Loop driven by explicit calls instead of the
// wall clock. Timers due at the same instant fire in registration order.
type VirtualLoop struct {
	now    time.Duration
	timers []*virtualTimer
	keys   []*keyListener
	fired  int
}

func NewVirtualLoop() *VirtualLoop {
	return &VirtualLoop{}
}

func (l *VirtualLoop) Every(d time.Duration, fn func()) func() {
	if d <= 0 {
		d = time.Millisecond
	}

	t := &virtualTimer{
		period: d,
		due:    l.now + d,
		fn:     fn,
		live:   true,
	}

	l.timers = append(l.timers, t)

	return func() { t.live = false }
}

func (l *VirtualLoop) OnKeyDown(fn func(*KeyEvent)) func() {
	k := &keyListener{fn: fn, live: true}
	l.keys = append(l.keys, k)
	return func() { k.live = false }
}

func (l *VirtualLoop) Now() time.Duration {
	return l.now
}

// Fired is the number of timer callbacks run so far.
func (l *VirtualLoop) Fired() int {
	return l.fired
}

// Advance moves virtual time forward by d, firing every timer that comes due.
func (l *VirtualLoop) Advance(d time.Duration) {
	end := l.now + d

	for {
		t := l.next(end)

		if t == nil {
			break
		}

		l.fire(t)
	}

	l.now = end
	l.compact()
}

// Step jumps to the next due timer and fires it. It reports false when no
// timer is armed.
func (l *VirtualLoop) Step() bool {
	t := l.next(-1)

	if t == nil {
		return false
	}

	l.fire(t)
	l.compact()

	return true
}

// Press delivers a key-down event to every listener and returns it so callers
// can inspect whether its default action was prevented.
func (l *VirtualLoop) Press(code KeyCode) *KeyEvent {
	ev := NewKeyEvent(code, "")

	for _, k := range append([]*keyListener(nil), l.keys...) {
		if k.live {
			k.fn(ev)
		}
	}

	l.compact()

	return ev
}

// Pending counts armed timers and attached key listeners.
func (l *VirtualLoop) Pending() int {
	n := 0

	for _, t := range l.timers {
		if t.live {
			n++
		}
	}

	for _, k := range l.keys {
		if k.live {
			n++
		}
	}

	return n
}

// next returns the earliest live timer due at or before end; a negative end
// means no limit.
func (l *VirtualLoop) next(end time.Duration) *virtualTimer {
	var best *virtualTimer

	for _, t := range l.timers {
		if !t.live || (end >= 0 && t.due > end) {
			continue
		}

		if best == nil || t.due < best.due {
			best = t
		}
	}

	return best
}

func (l *VirtualLoop) fire(t *virtualTimer) {
	l.now = t.due
	t.due += t.period
	l.fired++
	t.fn()
}

func (l *VirtualLoop) compact() {
	timers := l.timers[:0]

	for _, t := range l.timers {
		if t.live {
			timers = append(timers, t)
		}
	}

	l.timers = timers

	keys := l.keys[:0]

	for _, k := range l.keys {
		if k.live {
			keys = append(keys, k)
		}
	}

	l.keys = keys
}
