package demo

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
	"github.com/paperboard/example/gfx/soft"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const size = 100

var (
	epoch  = time.Unix(0, 0)
	opaque = color.RGBA{A: 255}
)

type harness struct {
	ctx   *soft.Context
	r     *gfx.Renderer
	clock *gfx.VirtualClock
	queue *gfx.Queue
	s     *Session
}

func start(t *testing.T, name string, log *zap.Logger, opts Options) (*harness, error) {
	t.Helper()
	d, err := New(name)
	require.NoError(t, err)

	h := &harness{ctx: soft.New(size, size), clock: gfx.NewVirtualClock(epoch)}
	h.r = gfx.NewRenderer(h.ctx, log, size, size)
	h.queue = gfx.NewQueue(h.clock)
	h.s, err = Start(d, h.r, h.queue, log, opts)
	return h, err
}

// step runs the next pending frame, a refresh period later when it is
// already due.
func (h *harness) step() bool {
	next, ok := h.queue.Next()
	if !ok {
		return false
	}
	if next.After(h.clock.Now()) {
		h.clock.Set(next)
	} else {
		h.clock.Advance(time.Second / 60)
	}
	h.queue.RunDue(h.clock.Now())
	return true
}

func (h *harness) frames(n int) {
	for h.s.Frames() < n && h.step() {
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"cube", "w015", "w016", "w017", "w018"}, Names())

	_, err := New("w999")
	assert.True(t, errors.Is(err, ErrUnknownDemo))
	assert.Contains(t, err.Error(), `"w999"`)

	assert.Panics(t, func() { Register("w015", func() Demo { return w015{} }) })
}

func TestPacing(t *testing.T) {
	for name, want := range map[string]Pacing{
		"w015": Static,
		"w016": Static,
		"w017": Timer,
		"w018": Timer,
		"cube": Refresh,
	} {
		d, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, want, d.Pacing(), name)
	}
	assert.Equal(t, "refresh", Refresh.String())
	assert.Equal(t, "Pacing(7)", Pacing(7).String())
}

func TestEveryDemoDraws(t *testing.T) {
	triangles := map[string]int{"w015": 1, "w016": 2, "w017": 3, "w018": 2, "cube": 12}
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			h, err := start(t, name, nil, Options{Strict: true})
			require.NoError(t, err)
			h.frames(3)

			assert.True(t, h.r.Usable())
			assert.Zero(t, h.r.Skipped())
			stats := h.ctx.Stats()
			require.Positive(t, stats.DrawCalls)
			assert.Equal(t, triangles[name]*stats.Clears, stats.Triangles, "triangles per frame")
			assert.Positive(t, stats.Fragments)
			assert.Equal(t, gfx.NoError, h.ctx.GetError())
		})
	}
}

func TestStaticDemoDrawsOnceAndOnResize(t *testing.T) {
	h, err := start(t, "w015", nil, Options{})
	require.NoError(t, err)

	h.frames(5)
	assert.Equal(t, 1, h.s.Frames(), "static demos draw once")
	assert.Nil(t, h.s.Loop())
	assert.False(t, h.step(), "nothing else is scheduled")

	h.s.Resize(size, size)
	h.frames(5)
	assert.Equal(t, 2, h.s.Frames())
}

func TestTwoTrianglesSideBySide(t *testing.T) {
	h, err := start(t, "w016", nil, Options{})
	require.NoError(t, err)
	h.frames(1)

	assert.NotEqual(t, opaque, h.ctx.At(25, 44), "left copy")
	assert.NotEqual(t, opaque, h.ctx.At(75, 44), "right copy")
	assert.Equal(t, opaque, h.ctx.At(50, 44), "nothing in between")
}

func TestOrbitAtQuarterTurn(t *testing.T) {
	angle := gfx.Angle(90, gfx.DefaultWrap)
	assert.InDelta(t, math.Pi/2, angle, 1e-6)

	pos := orbitModel(angle).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	want := mgl32.Translate3D(float32(math.Cos(math.Pi/2)), float32(math.Sin(math.Pi/2))+1, 0).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertNear(t, want, pos)
	assertNear(t, mgl32.Vec4{0, 2, 0, 1}, pos)
}

// assertNear compares component-wise with an absolute tolerance, since
// float32 cos(π/2) is not exactly zero.
func assertNear(t *testing.T, want, got mgl32.Vec4) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d: want %v, got %v", i, want, got)
	}
}

func TestOrbitFrameCount(t *testing.T) {
	h, err := start(t, "w017", nil, Options{})
	require.NoError(t, err)
	h.frames(90)

	last := h.s.LastFrame()
	assert.Equal(t, 90, last.Count)
	assert.Equal(t, gfx.Angle(90, gfx.DefaultWrap), last.Angle)
	assert.Equal(t, 89*gfx.DefaultInterval, last.Elapsed)
}

func TestPulseAndSpinModels(t *testing.T) {
	origin := mgl32.Vec4{0, 0, 0, 1}
	assert.True(t, mgl32.Vec4{1, -1, 0, 1}.ApproxEqualThreshold(spinModel(1.2).Mul4x1(origin), 1e-5))

	// at a quarter turn the scale is 2
	p := pulseModel(math.Pi / 2).Mul4x1(mgl32.Vec4{1, 1, 5, 1})
	assert.True(t, mgl32.Vec4{1, 1, 0, 1}.ApproxEqualThreshold(p, 1e-5), "got %v", p)
}

func TestCompileFailureNeverDraws(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	log := zap.New(core)
	broken := "attribute vec3 position\nvoid main(void) {\n"

	h, err := start(t, "w017", log, Options{Vertex: broken})
	require.NoError(t, err, "permissive sessions keep running")
	h.frames(5)

	assert.False(t, h.r.Usable())
	assert.Equal(t, 5, h.s.Frames())
	assert.Equal(t, 5, h.r.Skipped(), "every frame gave up at its first draw")
	assert.Zero(t, h.ctx.Stats().DrawCalls)

	entries := logs.FilterMessage("shader compile failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["log"], "ERROR")
}

func TestStrictCompileFailure(t *testing.T) {
	_, err := start(t, "w015", nil, Options{Vertex: "void main(void) {\n}\n", Strict: true})
	require.Error(t, err)

	var serr *gfx.ShaderError
	assert.True(t, errors.As(err, &serr))
}

func TestCubeTumblesWithElapsedTime(t *testing.T) {
	h, err := start(t, "cube", nil, Options{})
	require.NoError(t, err)
	h.frames(2)

	assert.Equal(t, gfx.Rendering, h.s.Loop().State())
	assert.NotEqual(t, opaque, h.ctx.At(size/2, size/2), "the cube covers the center")
	assert.Equal(t, opaque, h.ctx.At(2, 2))

	first := cubeModel(0)
	later := cubeModel(1)
	assert.False(t, first.ApproxEqual(later))
	assert.True(t, mgl32.Vec4{0, 0, -6, 1}.ApproxEqualThreshold(later.Mul4x1(mgl32.Vec4{0, 0, 0, 1}), 1e-5))
}

func TestCubeGeometry(t *testing.T) {
	indices := makeCubeIndices()
	assert.Len(t, indices, 36)
	assert.Len(t, cubePositions, 24*3)
	assert.Len(t, makeCubeColors(), 24*4)
	for _, i := range indices {
		assert.Less(t, int(i), 24)
	}
}

func TestSessionStopAndRelease(t *testing.T) {
	h, err := start(t, "w018", nil, Options{Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	h.frames(3)

	h.s.Stop()
	assert.Equal(t, gfx.Stopped, h.s.Loop().State())
	assert.False(t, h.step())
	assert.Equal(t, 3, h.s.Frames())

	h.s.Release()
	assert.False(t, h.r.Usable())
}

func TestSessionStopsWhenContextLost(t *testing.T) {
	lost := false
	core, logs := observer.New(zap.WarnLevel)
	h, err := start(t, "w017", zap.New(core), Options{ContextLost: func() bool { return lost }})
	require.NoError(t, err)
	h.frames(3)
	drawn := h.s.Renderer().Context().(*soft.Context).Stats().DrawCalls

	lost = true
	assert.True(t, h.step())
	assert.Equal(t, gfx.Stopped, h.s.Loop().State())
	assert.False(t, h.step(), "no frame is pending")
	assert.Equal(t, 3, h.s.Frames())
	assert.Equal(t, drawn, h.ctx.Stats().DrawCalls)
	assert.Equal(t, 1, logs.FilterMessage("graphics context lost, stopping").Len())
}

func TestSessionRefreshOption(t *testing.T) {
	h, err := start(t, "w017", nil, Options{Refresh: true})
	require.NoError(t, err)
	h.frames(3)
	assert.Equal(t, 2*(time.Second/60), h.s.LastFrame().Elapsed)
}

func TestSessionCameraOverride(t *testing.T) {
	zoomOut := func(c gfx.Camera) gfx.Camera {
		c.Eye = mgl32.Vec3{0, 0, 10}
		return c
	}
	h, err := start(t, "w015", nil, Options{Camera: zoomOut})
	require.NoError(t, err)
	h.frames(1)

	// further away the triangle shrinks towards the center
	assert.Equal(t, opaque, h.ctx.At(20, 50))
	assert.Positive(t, h.ctx.Stats().Fragments)
}

func TestSessionReload(t *testing.T) {
	h, err := start(t, "w015", nil, Options{})
	require.NoError(t, err)
	h.frames(1)

	red := "varying vec4 vColor;\nvoid main(void) {\n\tgl_FragColor = vec4(1.0, 0.0, 0.0, 1.0);\n}\n"
	vs, _ := h.s.Demo().Sources()
	require.NoError(t, h.s.Reload(vs, red))
	h.frames(2)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, h.ctx.At(50, 44))

	assert.Error(t, h.s.Reload("broken", red))
	assert.True(t, h.r.Usable(), "the previous program stays")
}
