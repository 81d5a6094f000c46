// Package config reads the wgld configuration file.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
	"github.com/pkg/errors"
)

// Duration is a time.Duration written as "33ms" or "1s" in the file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Headless configures rendering without a window.
type Headless struct {
	Frames int    `toml:"frames"` // frames to render before writing the image
	Out    string `toml:"out"`    // PNG path of the last frame
}

// Camera overrides parts of a demo's camera. Unset fields keep the demo's
// value.
type Camera struct {
	Eye    *[3]float32 `toml:"eye"`
	Target *[3]float32 `toml:"target"`
	Fov    *float32    `toml:"fov"`
	// Ortho switches to an orthographic projection with this half height.
	Ortho *float32 `toml:"ortho"`
}

type Config struct {
	Demo     string   `toml:"demo"`
	Width    int      `toml:"width"`
	Height   int      `toml:"height"`
	Interval Duration `toml:"interval"` // between timer-paced frames
	Wrap     int      `toml:"wrap"`     // frame count of one full turn
	Refresh  bool     `toml:"refresh"`  // pace timer demos on the display refresh
	Strict   bool     `toml:"strict"`   // exit when the program fails to build
	LogLevel string   `toml:"log_level"`
	Shaders  string   `toml:"shaders"` // directory with <demo>.vert / <demo>.frag overrides
	Headless Headless `toml:"headless"`
	Camera   *Camera  `toml:"camera"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Demo:     "w015",
		Width:    600,
		Height:   400,
		Interval: Duration{gfx.DefaultInterval},
		Wrap:     gfx.DefaultWrap,
		LogLevel: "info",
		Headless: Headless{Frames: 1, Out: "frame.png"},
	}
}

// Load reads path on top of the defaults. A missing file yields the
// defaults unchanged.
func Load(path string) (Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return conf, nil
	}
	md, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return Default(), errors.Wrapf(err, "couldn't read config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), errors.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
	}
	return conf, conf.Validate()
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Demo == "":
		return errors.New("config: no demo selected")
	case c.Width <= 0 || c.Height <= 0:
		return errors.Errorf("config: bad surface size %dx%d", c.Width, c.Height)
	case c.Interval.Duration < 0:
		return errors.Errorf("config: negative interval %v", c.Interval.Duration)
	case c.Wrap <= 0:
		return errors.Errorf("config: wrap must be positive, got %d", c.Wrap)
	case c.Headless.Frames < 1:
		return errors.Errorf("config: headless frame count must be at least 1, got %d", c.Headless.Frames)
	}
	if c.Camera != nil {
		if c.Camera.Fov != nil && (*c.Camera.Fov <= 0 || *c.Camera.Fov >= 180) {
			return errors.Errorf("config: field of view %v out of range", *c.Camera.Fov)
		}
		if c.Camera.Ortho != nil && *c.Camera.Ortho <= 0 {
			return errors.Errorf("config: ortho height %v must be positive", *c.Camera.Ortho)
		}
	}
	return nil
}

// Apply returns cam with the override's fields replaced. A nil override
// returns cam unchanged.
func (o *Camera) Apply(cam gfx.Camera) gfx.Camera {
	if o == nil {
		return cam
	}
	if o.Eye != nil {
		cam.Eye = mgl32.Vec3(*o.Eye)
	}
	if o.Target != nil {
		cam.Target = mgl32.Vec3(*o.Target)
	}
	if o.Fov != nil {
		cam.Fov = *o.Fov
	}
	if o.Ortho != nil {
		cam.OrthoSize = *o.Ortho
	}
	return cam
}

// Write encodes c as TOML to path.
func Write(path string, c Config) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "couldn't write config file")
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return errors.Wrap(err, "couldn't write config file")
	}
	return f.Close()
}
