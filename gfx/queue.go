package gfx

import (
	"container/heap"
	"sync"
	"time"
)

// Scheduler is the host's per-frame primitive. fn runs once, on the render
// goroutine, no earlier than delay from now. A zero delay means "at the
// next display refresh" for hosts that have one. The returned cancel
// function is safe to call more than once and after fn ran.
type Scheduler interface {
	Schedule(delay time.Duration, fn func(now time.Time)) (cancel func())
}

// Clock is a VirtualClock or a real time source.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// WallClock reads time.Now.
var WallClock Clock = wallClock{}

// VirtualClock is a clock that only moves when told to. Headless runs and
// tests drive a Queue with it.
type VirtualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewVirtualClock starts a clock at start.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t. Moving backwards is ignored.
func (c *VirtualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.now) {
		c.now = t
	}
}

// Advance moves the clock forward by d.
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type timer struct {
	due      time.Time
	seq      uint64
	fn       func(time.Time)
	index    int
	canceled bool
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Queue is a single-threaded timer queue. Anyone may Schedule into it, but
// callbacks only ever run inside RunDue, on the goroutine that drives it.
type Queue struct {
	mu     sync.Mutex
	clock  Clock
	timers timerHeap
	seq    uint64
	wake   func()
}

// NewQueue returns an empty queue reading time from clock, or from the
// wall clock when clock is nil.
func NewQueue(clock Clock) *Queue {
	if clock == nil {
		clock = WallClock
	}
	return &Queue{clock: clock}
}

// SetWake registers fn to be called after every Schedule, so a host that
// blocks waiting for events can be woken up.
func (q *Queue) SetWake(fn func()) {
	q.mu.Lock()
	q.wake = fn
	q.mu.Unlock()
}

func (q *Queue) Schedule(delay time.Duration, fn func(now time.Time)) func() {
	if delay < 0 {
		delay = 0
	}
	q.mu.Lock()
	q.seq++
	t := &timer{due: q.clock.Now().Add(delay), seq: q.seq, fn: fn}
	heap.Push(&q.timers, t)
	wake := q.wake
	q.mu.Unlock()

	if wake != nil {
		wake()
	}

	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if t.canceled {
			return
		}
		t.canceled = true
		if t.index >= 0 {
			heap.Remove(&q.timers, t.index)
		}
	}
}

// Next reports the due time of the earliest pending callback.
func (q *Queue) Next() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.timers) == 0 {
		return time.Time{}, false
	}
	return q.timers[0].due, true
}

// Len returns the number of pending callbacks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.timers)
}

// RunDue runs, in due order, every callback that was pending when it was
// called and is due at or before now. Callbacks scheduled while it runs
// wait for the next call. It returns the number of callbacks run.
func (q *Queue) RunDue(now time.Time) int {
	q.mu.Lock()
	limit := q.seq
	q.mu.Unlock()

	ran := 0
	var deferred []*timer
	for {
		q.mu.Lock()
		if len(q.timers) == 0 || q.timers[0].due.After(now) {
			q.mu.Unlock()
			break
		}
		t := heap.Pop(&q.timers).(*timer)
		if t.seq > limit {
			deferred = append(deferred, t)
			q.mu.Unlock()
			continue
		}
		q.mu.Unlock()

		t.fn(now)
		ran++
	}

	if len(deferred) > 0 {
		q.mu.Lock()
		for _, t := range deferred {
			if !t.canceled {
				heap.Push(&q.timers, t)
			}
		}
		q.mu.Unlock()
	}
	return ran
}
