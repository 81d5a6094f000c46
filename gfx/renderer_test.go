package gfx_test

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
	"github.com/paperboard/example/gfx/soft"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var trianglePositions = []float32{
	0.0, 1.0, 0.0,
	1.0, 0.0, 0.0,
	-1.0, 0.0, 0.0,
}

var triangleColors = []float32{
	1.0, 0.0, 0.0, 1.0,
	0.0, 1.0, 0.0, 1.0,
	0.0, 0.0, 1.0, 1.0,
}

func triangleAttribs() []gfx.VertexAttrib {
	return []gfx.VertexAttrib{
		{Name: "position", Stride: 3, Data: trianglePositions},
		{Name: "color", Stride: 4, Data: triangleColors},
	}
}

// wide orthographic camera: 4 units of height over the surface
var orthoCamera = gfx.Camera{
	Eye:       mgl32.Vec3{0, 0, 3},
	Up:        mgl32.Vec3{0, 1, 0},
	Near:      0.1,
	Far:       100,
	OrthoSize: 2,
}

var black = color.RGBA{A: 255}

func newTriangleRenderer(t *testing.T) (*gfx.Renderer, *soft.Context) {
	t.Helper()
	ctx := soft.New(100, 100)
	r := gfx.NewRenderer(ctx, nil, 100, 100)
	require.NoError(t, r.Init(vertexSource, fragmentSource))
	require.NoError(t, r.SetAttributes(triangleAttribs()...))
	return r, ctx
}

func TestRendererDrawsTriangle(t *testing.T) {
	r, ctx := newTriangleRenderer(t)
	r.Clear(mgl32.Vec4{0, 0, 0, 1})
	r.SetMatrix("mvpMatrix", gfx.MVP(orthoCamera.ViewProjection(r.Aspect()), mgl32.Ident4()))
	require.NoError(t, r.DrawArrays(3))
	require.NoError(t, r.Flush())

	// the triangle covers x in [25,75], rows 25 (apex) to 50 (base)
	center := ctx.At(50, 41)
	assert.NotEqual(t, black, center)
	assert.Equal(t, uint8(255), center.A)

	nearApex := ctx.At(50, 34)
	assert.Greater(t, nearApex.R, nearApex.G, "red dominates near the red vertex")
	assert.Greater(t, nearApex.R, nearApex.B)

	for _, p := range [][2]int{{10, 10}, {50, 80}, {90, 45}, {10, 45}} {
		assert.Equal(t, black, ctx.At(p[0], p[1]), "pixel %v", p)
	}
	assert.Equal(t, 1, ctx.Stats().Triangles)
	assert.Zero(t, r.Skipped())
}

func TestUnusableRendererSkipsDraws(t *testing.T) {
	ctx := soft.New(16, 16)
	r := gfx.NewRenderer(ctx, zap.NewNop(), 16, 16)

	err := r.Init(brokenVertexSource, fragmentSource)
	require.Error(t, err)
	assert.False(t, r.Usable())
	assert.Zero(t, r.Program())

	require.NoError(t, r.SetAttributes(triangleAttribs()...), "attributes without locations are skipped")
	r.SetMatrix("mvpMatrix", mgl32.Ident4())
	assert.True(t, errors.Is(r.DrawArrays(3), gfx.ErrUnusable))
	r.SetIndices([]uint16{0, 1, 2})
	assert.True(t, errors.Is(r.DrawElements(), gfx.ErrUnusable))

	assert.Equal(t, 2, r.Skipped())
	assert.Zero(t, ctx.Stats().DrawCalls, "nothing reached the context")
	assert.NoError(t, r.CheckError())
}

func TestRendererReloadKeepsProgramOnFailure(t *testing.T) {
	r, _ := newTriangleRenderer(t)
	before := r.Program()

	err := r.Reload(brokenVertexSource, fragmentSource)
	require.Error(t, err)
	assert.Equal(t, before, r.Program())
	assert.True(t, r.Usable())
}

func TestRendererReloadRebindsAttributes(t *testing.T) {
	r, ctx := newTriangleRenderer(t)
	before := r.Program()

	red := `
varying vec4 vColor;
void main(void) {
	gl_FragColor = vec4(1.0, 0.0, 0.0, 1.0);
}
`
	require.NoError(t, r.Reload(vertexSource, red))
	assert.NotEqual(t, before, r.Program())

	r.Clear(mgl32.Vec4{0, 0, 0, 1})
	r.SetMatrix("mvpMatrix", orthoCamera.ViewProjection(1))
	require.NoError(t, r.DrawArrays(3))
	require.NoError(t, r.Flush())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, ctx.At(50, 41))
}

func TestRendererFlushReportsErrors(t *testing.T) {
	r, _ := newTriangleRenderer(t)

	// no index buffer is bound
	require.NoError(t, r.DrawElements())
	err := r.Flush()
	require.Error(t, err)

	var glErr gfx.GLError
	require.True(t, errors.As(err, &glErr))
	assert.Equal(t, gfx.GLError{gfx.InvalidOperation}, glErr)
}

func TestRendererSetAttributesChecksStride(t *testing.T) {
	r, _ := newTriangleRenderer(t)
	err := r.SetAttributes(gfx.VertexAttrib{Name: "position", Stride: 3, Data: []float32{1, 2}})
	assert.True(t, errors.Is(err, gfx.ErrStride))
}

func TestRendererRelease(t *testing.T) {
	r, ctx := newTriangleRenderer(t)
	r.SetIndices([]uint16{0, 1, 2})
	r.Release()

	assert.False(t, r.Usable())
	assert.Zero(t, r.Program())
	assert.NoError(t, gfx.CheckError(ctx))
}

func TestSetAttributesLogsVertexCounts(t *testing.T) {
	ctx := soft.New(8, 8)
	log, logs := observed(zapcore.DebugLevel)
	program, err := gfx.NewProgram(ctx, log, vertexSource, fragmentSource)
	require.NoError(t, err)

	infos := []gfx.AttribInfo{
		{Location: gfx.AttribLocation(ctx, program, "position"), Stride: 3, Data: trianglePositions},
		{Location: gfx.AttribLocation(ctx, program, "color"), Stride: 4, Data: triangleColors},
	}
	buffers, err := gfx.SetAttributes(ctx, log, infos)
	require.NoError(t, err)
	assert.Len(t, buffers, 2)

	bound := logs.FilterMessage("attribute bound").All()
	require.Len(t, bound, 2)
	for _, entry := range bound {
		assert.EqualValues(t, 3, entry.ContextMap()["vertices"])
	}
}

func TestRendererAspect(t *testing.T) {
	r := gfx.NewRenderer(soft.New(600, 400), nil, 600, 400)
	assert.InDelta(t, 1.5, r.Aspect(), 1e-6)

	r.Resize(0, 10) // ignored
	w, h := r.Size()
	assert.Equal(t, 600, w)
	assert.Equal(t, 400, h)
}
