package demo

import (
	"time"

	"github.com/paperboard/example/gfx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Options tune how a Session runs its demo.
type Options struct {
	// Camera, when set, adjusts the demo's camera before every frame.
	Camera func(gfx.Camera) gfx.Camera
	// Interval between timer-paced frames, gfx.DefaultInterval when zero.
	Interval time.Duration
	// Refresh paces timer demos on the display refresh instead.
	Refresh bool
	// Wrap is the number of ticks per full turn, gfx.DefaultWrap when zero.
	Wrap int
	// Strict makes a program that fails to build abort Start.
	Strict bool
	// Vertex and Fragment replace the demo's embedded sources when set.
	Vertex, Fragment string
	// ContextLost, when set, is asked before every frame. Once it reports
	// true the session stops.
	ContextLost func() bool
}

// Session runs one demo on one renderer: build the program, upload the
// geometry, then draw once or keep drawing through a Loop.
type Session struct {
	demo  Demo
	r     *gfx.Renderer
	sched gfx.Scheduler
	log   *zap.Logger
	opts  Options

	loop   *gfx.Loop
	cancel func()
	frames int
	last   gfx.Frame
}

// Start sets the demo up on r and schedules its first frame on sched.
//
// A program that fails to build is logged and leaves the renderer unusable;
// the session still runs, with every draw skipped, unless opts.Strict is
// set, in which case the build error is returned.
func Start(d Demo, r *gfx.Renderer, sched gfx.Scheduler, log *zap.Logger, opts Options) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		demo:  d,
		r:     r,
		sched: sched,
		log:   log.With(zap.String("demo", d.Name())),
		opts:  opts,
	}

	vs, fs := s.sources()
	if err := r.Init(vs, fs); err != nil {
		if opts.Strict {
			return nil, errors.Wrapf(err, "demo %s", d.Name())
		}
		s.log.Error("program unusable, draws will be skipped", zap.Error(err))
	}
	if err := d.Setup(r); err != nil {
		return nil, errors.Wrapf(err, "setup %s", d.Name())
	}

	switch d.Pacing() {
	case Static:
		s.Redraw()
	default:
		interval := opts.Interval
		if interval <= 0 {
			interval = gfx.DefaultInterval
		}
		if d.Pacing() == Refresh || opts.Refresh {
			interval = 0
		}
		s.loop = gfx.NewLoop(sched, interval, s.frame)
		if opts.Wrap > 0 {
			s.loop.SetWrap(opts.Wrap)
		}
		s.loop.Start()
	}
	s.log.Info("demo started",
		zap.Stringer("pacing", d.Pacing()),
		zap.Bool("usable", r.Usable()))
	return s, nil
}

func (s *Session) sources() (string, string) {
	vs, fs := s.demo.Sources()
	if s.opts.Vertex != "" {
		vs = s.opts.Vertex
	}
	if s.opts.Fragment != "" {
		fs = s.opts.Fragment
	}
	return vs, fs
}

func (s *Session) camera() gfx.Camera {
	cam := s.demo.Camera()
	if s.opts.Camera != nil {
		cam = s.opts.Camera(cam)
	}
	return cam
}

func (s *Session) frame(f gfx.Frame) {
	if s.opts.ContextLost != nil && s.opts.ContextLost() {
		s.log.Warn("graphics context lost, stopping", zap.Int("count", f.Count))
		s.Stop()
		return
	}
	s.frames++
	s.last = f
	err := s.demo.Draw(s.r, s.camera(), f)
	switch {
	case err == nil:
	case errors.Cause(err) == gfx.ErrUnusable:
		s.log.Debug("frame skipped", zap.Int("count", f.Count))
	default:
		s.log.Warn("frame failed", zap.Int("count", f.Count), zap.Error(err))
	}
}

// Redraw schedules one extra frame. Static demos use it to draw at all and
// to repaint after a resize; a running loop repaints on its own.
func (s *Session) Redraw() {
	if s.loop != nil {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = s.sched.Schedule(0, func(now time.Time) {
		s.cancel = nil
		s.frame(gfx.Frame{Count: s.frames + 1, Now: now})
	})
}

// Resize updates the surface size and repaints static demos.
func (s *Session) Resize(width, height int) {
	s.r.Resize(width, height)
	s.Redraw()
}

// Reload rebuilds the program from new sources, keeping the old one when
// they fail. A successful reload repaints static demos.
func (s *Session) Reload(vertexSource, fragmentSource string) error {
	if err := s.r.Reload(vertexSource, fragmentSource); err != nil {
		s.log.Warn("reload failed, keeping previous program", zap.Error(err))
		return err
	}
	s.opts.Vertex, s.opts.Fragment = vertexSource, fragmentSource
	s.Redraw()
	return nil
}

// Stop cancels any pending frame.
func (s *Session) Stop() {
	if s.loop != nil {
		s.loop.Stop()
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Release stops the session and frees the renderer's resources.
func (s *Session) Release() {
	s.Stop()
	s.r.Release()
}

// Demo returns the demo being run.
func (s *Session) Demo() Demo { return s.demo }

// Renderer returns the renderer the demo draws with.
func (s *Session) Renderer() *gfx.Renderer { return s.r }

// Loop returns the animation loop, nil for static demos.
func (s *Session) Loop() *gfx.Loop { return s.loop }

// Frames counts the frames drawn, skipped ones included.
func (s *Session) Frames() int { return s.frames }

// LastFrame returns the most recent frame handed to the demo.
func (s *Session) LastFrame() gfx.Frame { return s.last }
