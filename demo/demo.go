// Package demo holds the individual demos and the session that runs one of
// them on a renderer.
package demo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
	"github.com/pkg/errors"
)

// Pacing says how a demo wants its frames delivered.
type Pacing int

const (
	Static  Pacing = iota // drawn once, and again on resize
	Timer                 // redrawn after a fixed delay
	Refresh               // redrawn on every display refresh
)

func (p Pacing) String() string {
	switch p {
	case Static:
		return "static"
	case Timer:
		return "timer"
	case Refresh:
		return "refresh"
	}
	return fmt.Sprintf("Pacing(%d)", int(p))
}

// Demo is one self-contained scene.
type Demo interface {
	Name() string
	Describe() string
	Pacing() Pacing

	// Camera returns the fixed camera parameters of the scene.
	Camera() gfx.Camera
	// Sources returns the vertex and fragment shader text.
	Sources() (vertex, fragment string)
	// Setup uploads geometry once the program is built.
	Setup(r *gfx.Renderer) error
	// Draw renders one frame.
	Draw(r *gfx.Renderer, cam gfx.Camera, f gfx.Frame) error
}

// ErrUnknownDemo is returned by New for names nobody registered.
var ErrUnknownDemo = errors.New("unknown demo")

var black = mgl32.Vec4{0, 0, 0, 1}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Demo)
)

// Register makes a demo constructor available by name. It panics when the
// name is taken.
func Register(name string, newDemo func() Demo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("demo: Register called twice for " + name)
	}
	registry[name] = newDemo
}

// New builds a fresh instance of the named demo.
func New(name string) (Demo, error) {
	registryMu.RLock()
	newDemo, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDemo, "%q", name)
	}
	return newDemo(), nil
}

// Names lists the registered demos in order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
