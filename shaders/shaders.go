// Package shaders loads shader sources from a directory on disk and
// watches it so that edits reach a running demo without a restart.
package shaders

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/paperboard/example/gfx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Extensions of the two stages, after the demo name.
const (
	VertexExt   = ".vert"
	FragmentExt = ".frag"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Paths returns the vertex and fragment file names of demo name in dir.
func Paths(dir, name string) (vertex, fragment string) {
	return filepath.Join(dir, name+VertexExt), filepath.Join(dir, name+FragmentExt)
}

// Load reads the sources of demo name from dir. A stage without a file
// comes back empty, meaning "keep the built-in source".
func Load(dir, name string) (vertex, fragment string, err error) {
	vertexPath, fragmentPath := Paths(dir, name)
	if vertex, err = readOptional(vertexPath); err != nil {
		return "", "", err
	}
	if fragment, err = readOptional(fragmentPath); err != nil {
		return "", "", err
	}
	return vertex, fragment, nil
}

func readOptional(path string) (string, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "read shader %s", path)
	}
	return string(b), nil
}

// Options select what a Watcher watches.
type Options struct {
	Dir      string
	Name     string        // demo name, the file stem of both stages
	Debounce time.Duration // DefaultDebounce when zero
}

// Watcher reloads a demo's shader files when they change.
type Watcher struct {
	log     *zap.Logger
	watcher *fsnotify.Watcher
	opts    Options
	sched   gfx.Scheduler
	reload  func(vertex, fragment string)
	done    chan struct{}
}

// Watch starts watching opts.Dir. When either stage file of opts.Name is
// written, created or removed, the sources are read again and reload is
// scheduled on sched, so that it runs on the render goroutine. Watching
// stops when ctx is done or Close is called.
func Watch(ctx context.Context, opts Options, sched gfx.Scheduler, log *zap.Logger, reload func(vertex, fragment string)) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create shader watcher")
	}
	if err := fw.Add(opts.Dir); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "watch %s", opts.Dir)
	}
	w := &Watcher{
		log:     log.With(zap.String("dir", opts.Dir), zap.String("demo", opts.Name)),
		watcher: fw,
		opts:    opts,
		sched:   sched,
		reload:  reload,
		done:    make(chan struct{}),
	}
	w.log.Info("watching shader sources")
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.log.Debug("shader file changed",
					zap.String("file", event.Name),
					zap.Stringer("op", event.Op))
				debounce.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("shader watcher error", zap.Error(err))

		case <-debounce.C:
			w.fire()

		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	vertexPath, fragmentPath := Paths(w.opts.Dir, w.opts.Name)
	name := filepath.Clean(event.Name)
	return name == filepath.Clean(vertexPath) || name == filepath.Clean(fragmentPath)
}

func (w *Watcher) fire() {
	vertex, fragment, err := Load(w.opts.Dir, w.opts.Name)
	if err != nil {
		w.log.Error("reading shader sources failed", zap.Error(err))
		return
	}
	w.sched.Schedule(0, func(time.Time) {
		w.reload(vertex, fragment)
	})
}

// Close stops watching and waits for the watcher goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
