package console

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-typer/internal/typer"
)

type loopTimerMsg struct {
	id int
}

type loopTimer struct {
	period time.Duration
	fn     func()
}

// teaLoop runs typer callbacks inside the program's Update. Timers are tea.Tick
// commands tagged with an id; a tick whose id was cancelled is dropped.
type teaLoop struct {
	nextID   int
	timers   map[int]*loopTimer
	keys     map[int]func(*typer.KeyEvent)
	keyOrder []int
	pending  []tea.Cmd
}

func newTeaLoop() *teaLoop {
	return &teaLoop{
		timers: make(map[int]*loopTimer),
		keys:   make(map[int]func(*typer.KeyEvent)),
	}
}

func (l *teaLoop) Every(d time.Duration, fn func()) func() {
	if d <= 0 {
		d = time.Millisecond
	}

	l.nextID++
	id := l.nextID

	l.timers[id] = &loopTimer{period: d, fn: fn}
	l.pending = append(l.pending, l.schedule(id, d))

	return func() { delete(l.timers, id) }
}

func (l *teaLoop) OnKeyDown(fn func(*typer.KeyEvent)) func() {
	l.nextID++
	id := l.nextID

	l.keys[id] = fn
	l.keyOrder = append(l.keyOrder, id)

	return func() {
		delete(l.keys, id)
		l.keyOrder = slices.DeleteFunc(l.keyOrder, func(k int) bool { return k == id })
	}
}

func (l *teaLoop) schedule(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return loopTimerMsg{id: id}
	})
}

func (l *teaLoop) handleTimer(msg loopTimerMsg) {
	t, ok := l.timers[msg.id]

	if !ok {
		return
	}

	l.pending = append(l.pending, l.schedule(msg.id, t.period))
	t.fn()
}

func (l *teaLoop) dispatchKey(ev *typer.KeyEvent) {
	for _, id := range slices.Clone(l.keyOrder) {
		if fn, ok := l.keys[id]; ok {
			fn(ev)
		}
	}
}

func (l *teaLoop) armed() int {
	return len(l.timers) + len(l.keys)
}

// flush hands the commands scheduled since the last flush to the program.
func (l *teaLoop) flush() tea.Cmd {
	if len(l.pending) == 0 {
		return nil
	}

	cmds := l.pending
	l.pending = nil

	return tea.Batch(cmds...)
}
