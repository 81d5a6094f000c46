//go:build !js

package desktop

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/paperboard/example/gfx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func init() {
	// glfw must be on main thread
	runtime.LockOSThread()
}

// Options describe the window a Host opens.
type Options struct {
	Width, Height int
	Title         string
	Resizable     bool
	// Refresh syncs buffer swaps to the display refresh.
	Refresh bool
}

// Host owns a GLFW window with a current OpenGL 2.1 context and drives a
// gfx.Queue on the main thread: queued frames run, the back buffer is
// swapped, and events are polled in between.
type Host struct {
	log    *zap.Logger
	window *glfw.Window
	queue  *gfx.Queue
}

// NewHost initializes GLFW and opens the window. Failures wrap
// gfx.ErrNoContext; nothing is left initialized on error.
func NewHost(opts Options, log *zap.Logger) (*Host, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// initalize glfw
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrapf(gfx.ErrNoContext, "initialize glfw: %v", err)
	}

	// use OpenGL v2.1
	glfw.WindowHint(glfw.Resizable, boolHint(opts.Resizable))
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	// create window handle
	window, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrapf(gfx.ErrNoContext, "create window: %v", err)
	}
	window.MakeContextCurrent()

	// initialize OpenGL
	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, errors.Wrapf(gfx.ErrNoContext, "initialize OpenGL: %v", err)
	}
	log.Info("OpenGL context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	if opts.Refresh {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	h := &Host{
		log:    log,
		window: window,
		queue:  gfx.NewQueue(gfx.WallClock),
	}
	// Schedule may come from another goroutine while Run waits for events.
	h.queue.SetWake(glfw.PostEmptyEvent)
	return h, nil
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// Context returns the window's graphics context.
func (h *Host) Context() gfx.Context { return Context{} }

// Scheduler returns the queue frames are scheduled on.
func (h *Host) Scheduler() gfx.Scheduler { return h.queue }

// FramebufferSize returns the drawable size in pixels, which differs from
// the window size on high density displays.
func (h *Host) FramebufferSize() (width, height int) {
	return h.window.GetFramebufferSize()
}

// OnResize calls fn with the new framebuffer size whenever it changes.
func (h *Host) OnResize(fn func(width, height int)) {
	// on window size change (by OS or user resize) this callback executes
	h.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		h.log.Debug("framebuffer resized", zap.Int("width", width), zap.Int("height", height))
		fn(width, height)
	})
}

// OnRefresh calls fn when the window contents need repainting.
func (h *Host) OnRefresh(fn func()) {
	h.window.SetRefreshCallback(func(_ *glfw.Window) { fn() })
}

// Run pumps events and runs due frames until the window is closed or ctx
// is done. It must be called from the main goroutine.
func (h *Host) Run(ctx context.Context) error {
	// the waker must be gone before Close terminates glfw
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	defer func() {
		close(done)
		wg.Wait()
	}()
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			glfw.PostEmptyEvent()
		case <-done:
		}
	}()

	for !h.window.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}

		// draw into buffer, then render buffer to screen
		if h.queue.RunDue(time.Now()) > 0 {
			h.window.SwapBuffers()
		}

		// glfw events?
		next, ok := h.queue.Next()
		if !ok {
			glfw.WaitEvents()
			continue
		}
		if wait := time.Until(next); wait > 0 {
			glfw.WaitEventsTimeout(wait.Seconds())
		} else {
			glfw.PollEvents()
		}
	}
	h.log.Info("window closed")
	return nil
}

// Close destroys the window and terminates GLFW.
func (h *Host) Close() {
	h.queue.SetWake(nil)
	h.window.Destroy()
	glfw.Terminate()
}
