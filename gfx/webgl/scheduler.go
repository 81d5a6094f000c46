//go:build js && wasm

package webgl

import (
	"syscall/js"
	"time"

	"github.com/paperboard/example/gfx"
)

// Scheduler runs callbacks from the browser event loop: a zero delay waits
// for the next animation frame, anything longer uses setTimeout.
type Scheduler struct {
	window js.Value
}

var _ gfx.Scheduler = (*Scheduler)(nil)

// NewScheduler returns a scheduler on the global window object.
func NewScheduler() *Scheduler {
	return &Scheduler{window: js.Global()}
}

func (s *Scheduler) Schedule(delay time.Duration, fn func(now time.Time)) func() {
	var (
		cb       js.Func
		id       js.Value
		done     bool
		released bool
	)
	release := func() {
		if !released {
			released = true
			cb.Release()
		}
	}
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		if done {
			return nil
		}
		done = true
		release()
		fn(time.Now())
		return nil
	})

	cancelName := "clearTimeout"
	if delay <= 0 {
		id = s.window.Call("requestAnimationFrame", cb)
		cancelName = "cancelAnimationFrame"
	} else {
		id = s.window.Call("setTimeout", cb, delay.Milliseconds())
	}

	return func() {
		if done {
			return
		}
		done = true
		s.window.Call(cancelName, id)
		release()
	}
}
