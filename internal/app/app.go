// Package app wires configuration, demos and graphics backends together
// for the wgld commands.
package app

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/paperboard/example/demo"
	"github.com/paperboard/example/gfx"
	"github.com/paperboard/example/gfx/soft"
	"github.com/paperboard/example/internal/config"
	"github.com/paperboard/example/shaders"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RefreshPeriod stands in for the display refresh when no display exists.
const RefreshPeriod = time.Second / 60

// ListDemos writes the registered demos with their pacing and description.
func ListDemos(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range demo.Names() {
		d, err := demo.New(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, d.Pacing(), d.Describe())
	}
	return tw.Flush()
}

// SessionOptions turns the configuration into options for demo.Start,
// reading shader overrides for the demo when a directory is configured.
func SessionOptions(conf config.Config, name string) (demo.Options, error) {
	opts := demo.Options{
		Interval: conf.Interval.Duration,
		Refresh:  conf.Refresh,
		Wrap:     conf.Wrap,
		Strict:   conf.Strict,
	}
	if conf.Camera != nil {
		opts.Camera = conf.Camera.Apply
	}
	if conf.Shaders != "" {
		vs, fs, err := shaders.Load(conf.Shaders, name)
		if err != nil {
			return opts, err
		}
		opts.Vertex, opts.Fragment = vs, fs
	}
	return opts, nil
}

// WatchShaders reloads the session's program whenever the configured
// shader directory changes. Stages whose file disappears fall back to the
// demo's built-in source.
func WatchShaders(ctx context.Context, conf config.Config, s *demo.Session, sched gfx.Scheduler, log *zap.Logger) (*shaders.Watcher, error) {
	opts := shaders.Options{Dir: conf.Shaders, Name: s.Demo().Name()}
	return shaders.Watch(ctx, opts, sched, log, func(vs, fs string) {
		builtinVertex, builtinFragment := s.Demo().Sources()
		if vs == "" {
			vs = builtinVertex
		}
		if fs == "" {
			fs = builtinFragment
		}
		// failures are logged by the session, the old program keeps drawing
		_ = s.Reload(vs, fs)
	})
}

// Result describes a headless run.
type Result struct {
	Image   *image.RGBA
	Frames  int // frames delivered to the demo
	Skipped int // draw calls dropped by an unusable renderer
	Stats   soft.Stats
}

// RunHeadless renders conf.Headless.Frames frames of the configured demo
// with the software context on a virtual clock, so timer and refresh paced
// demos advance exactly as they would on screen, only faster. The last
// frame is written to conf.Headless.Out when set.
func RunHeadless(ctx context.Context, conf config.Config, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d, err := demo.New(conf.Demo)
	if err != nil {
		return nil, err
	}
	opts, err := SessionOptions(conf, d.Name())
	if err != nil {
		return nil, err
	}

	sc := soft.New(conf.Width, conf.Height)
	r := gfx.NewRenderer(sc, log, conf.Width, conf.Height)
	clock := gfx.NewVirtualClock(time.Unix(0, 0))
	queue := gfx.NewQueue(clock)

	s, err := demo.Start(d, r, queue, log, opts)
	if err != nil {
		r.Release()
		return nil, err
	}
	defer s.Release()

	// the first frame always runs, an empty framebuffer is never written
	want := max(conf.Headless.Frames, 1)
	for s.Frames() < want {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, ok := queue.Next()
		if !ok {
			break // static demo, drawn once
		}
		if next.After(clock.Now()) {
			clock.Set(next)
		} else {
			clock.Advance(RefreshPeriod)
		}
		queue.RunDue(clock.Now())
	}

	res := &Result{
		Image:   sc.Image(),
		Frames:  s.Frames(),
		Skipped: s.Renderer().Skipped(),
		Stats:   sc.Stats(),
	}
	log.Info("headless run finished",
		zap.Int("frames", res.Frames),
		zap.Int("triangles", res.Stats.Triangles),
		zap.Int("skipped", res.Skipped))

	if conf.Headless.Out != "" {
		if err := WritePNG(conf.Headless.Out, res.Image); err != nil {
			return res, err
		}
		log.Info("frame written", zap.String("path", conf.Headless.Out))
	}
	return res, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create image")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
