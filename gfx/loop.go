package gfx

import (
	"fmt"
	"time"
)

// DefaultInterval paces timer-driven loops at roughly 30 frames a second.
const DefaultInterval = time.Second / 30

// LoopState is the state of a Loop.
type LoopState int

const (
	Idle LoopState = iota
	Rendering
	Stopped
)

func (s LoopState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rendering:
		return "rendering"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("LoopState(%d)", int(s))
}

// Frame describes one tick of a Loop.
type Frame struct {
	Count   int           // ticks so far, starting at 1, never wraps
	Angle   float32       // Count wrapped into radians, see Angle
	Now     time.Time     // time the tick was delivered
	Delta   time.Duration // time since the previous tick, zero on the first
	Elapsed time.Duration // sum of all deltas
}

// Loop drives a frame callback through a Scheduler: it draws, then asks
// for the next frame, until Stop.
type Loop struct {
	sched    Scheduler
	interval time.Duration
	wrap     int
	frame    func(Frame)

	state   LoopState
	cancel  func()
	count   int
	last    time.Time
	elapsed time.Duration
}

// NewLoop returns an idle loop. An interval of zero asks the scheduler for
// the next display refresh instead of a fixed delay.
func NewLoop(sched Scheduler, interval time.Duration, frame func(Frame)) *Loop {
	return &Loop{
		sched:    sched,
		interval: interval,
		wrap:     DefaultWrap,
		frame:    frame,
	}
}

// SetWrap changes the number of ticks per full turn used for Frame.Angle.
func (l *Loop) SetWrap(wrap int) {
	if wrap > 0 {
		l.wrap = wrap
	}
}

// State reports where the loop is.
func (l *Loop) State() LoopState { return l.state }

// Count returns the number of ticks delivered so far.
func (l *Loop) Count() int { return l.count }

// Start moves an idle or stopped loop to rendering and schedules the first
// frame right away. Starting a rendering loop does nothing.
func (l *Loop) Start() {
	if l.state == Rendering {
		return
	}
	l.state = Rendering
	l.last = time.Time{}
	l.cancel = l.sched.Schedule(0, l.tick)
}

// Stop cancels the pending frame. The frame callback may call Stop.
func (l *Loop) Stop() {
	if l.state != Rendering {
		return
	}
	l.state = Stopped
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loop) tick(now time.Time) {
	if l.state != Rendering {
		return
	}
	l.cancel = nil

	l.count++
	var delta time.Duration
	if !l.last.IsZero() {
		delta = now.Sub(l.last)
	}
	l.last = now
	l.elapsed += delta

	l.frame(Frame{
		Count:   l.count,
		Angle:   Angle(l.count, l.wrap),
		Now:     now,
		Delta:   delta,
		Elapsed: l.elapsed,
	})

	if l.state == Rendering {
		l.cancel = l.sched.Schedule(l.interval, l.tick)
	}
}
