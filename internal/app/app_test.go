package app

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paperboard/example/demo"
	"github.com/paperboard/example/gfx"
	"github.com/paperboard/example/internal/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCLIOptsOnlyOverridesSetFlags(t *testing.T) {
	opt, err := ParseCLIOpts("wgld", []string{"-demo", "cube", "-strict", "-frames", "30"}, io.Discard)
	require.NoError(t, err)

	conf := config.Default()
	conf.LogLevel = "warn"
	conf.Headless.Out = "kept.png"

	merged := opt.Merge(conf)
	assert.Equal(t, "cube", merged.Demo)
	assert.True(t, merged.Strict)
	assert.Equal(t, 30, merged.Headless.Frames)
	assert.Equal(t, "warn", merged.LogLevel, "unset flags keep file values")
	assert.Equal(t, "kept.png", merged.Headless.Out)
	assert.Equal(t, "wgld.toml", opt.ConfigPath)
}

func TestParseCLIOptsRejectsUnknownFlags(t *testing.T) {
	var out bytes.Buffer
	_, err := ParseCLIOpts("wgld", []string{"-fullscreen"}, &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "-fullscreen")
}

func TestListDemos(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ListDemos(&out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(demo.Names()))
	assert.True(t, strings.HasPrefix(lines[0], "cube"))
	assert.Contains(t, out.String(), "timer")
}

func headlessConfig(t *testing.T, name string, frames int) config.Config {
	conf := config.Default()
	conf.Demo = name
	conf.Width, conf.Height = 64, 64
	conf.Headless = config.Headless{Frames: frames, Out: filepath.Join(t.TempDir(), name+".png")}
	return conf
}

func TestRunHeadlessStaticDemo(t *testing.T) {
	conf := headlessConfig(t, "w015", 10)
	res, err := RunHeadless(context.Background(), conf, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Frames, "static demos stop after one frame")
	assert.Equal(t, 1, res.Stats.Triangles)
	assert.Zero(t, res.Skipped)

	f, err := os.Open(conf.Headless.Out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestRunHeadlessAnimatedDemo(t *testing.T) {
	conf := headlessConfig(t, "w017", 90)
	conf.Headless.Out = ""
	res, err := RunHeadless(context.Background(), conf, nil)
	require.NoError(t, err)

	assert.Equal(t, 90, res.Frames)
	assert.Equal(t, 90*3, res.Stats.Triangles)
	assert.Equal(t, 90, res.Stats.Flushes)
}

func TestRunHeadlessDrawsAtLeastOneFrame(t *testing.T) {
	conf := headlessConfig(t, "w015", 0)
	assert.Error(t, conf.Validate())

	res, err := RunHeadless(context.Background(), conf, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Frames)
	assert.Equal(t, 1, res.Stats.DrawCalls)
	assert.Equal(t, uint8(255), res.Image.RGBAAt(32, 40).A, "framebuffer was cleared")
}

func TestRunHeadlessUnknownDemo(t *testing.T) {
	_, err := RunHeadless(context.Background(), headlessConfig(t, "w999", 1), nil)
	assert.True(t, errors.Is(err, demo.ErrUnknownDemo))
}

func TestRunHeadlessShaderOverride(t *testing.T) {
	dir := t.TempDir()
	broken := "bogus fragment;\nvoid main(void) {\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "w016.frag"), []byte(broken), 0o644))

	conf := headlessConfig(t, "w016", 1)
	conf.Shaders = dir

	res, err := RunHeadless(context.Background(), conf, nil)
	require.NoError(t, err, "permissive by default")
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Stats.DrawCalls)

	conf.Strict = true
	_, err = RunHeadless(context.Background(), conf, nil)
	var serr *gfx.ShaderError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, gfx.FragmentShader, serr.Kind)
}

func TestRunHeadlessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunHeadless(ctx, headlessConfig(t, "cube", 5), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionOptions(t *testing.T) {
	conf := config.Default()
	fov := float32(30)
	conf.Camera = &config.Camera{Fov: &fov}
	conf.Refresh = true

	opts, err := SessionOptions(conf, "w015")
	require.NoError(t, err)
	assert.True(t, opts.Refresh)
	require.NotNil(t, opts.Camera)
	assert.Equal(t, float32(30), opts.Camera(gfx.Camera{Fov: 90}).Fov)
	assert.Empty(t, opts.Vertex)
}
