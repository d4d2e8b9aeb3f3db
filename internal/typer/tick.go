package typer

import "time"

// TickSource delivers drive ticks from a Loop. Key driven sources pass the
// triggering event; periodic sources pass nil.
type TickSource interface {
	Attach(loop Loop, tick func(*KeyEvent)) (detach func())
}

type PeriodicSource struct {
	Interval time.Duration
}

func (s PeriodicSource) Attach(loop Loop, tick func(*KeyEvent)) func() {
	return loop.Every(s.Interval, func() { tick(nil) })
}

type KeySource struct{}

func (KeySource) Attach(loop Loop, tick func(*KeyEvent)) func() {
	return loop.OnKeyDown(tick)
}

func driveSource(mode DriveMode, speed int) TickSource {
	if mode == Timer {
		return PeriodicSource{Interval: DriveInterval(speed)}
	}
	return KeySource{}
}
