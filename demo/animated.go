package demo

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
)

var axisY = mgl32.Vec3{0, 1, 0}

func sincos(rad float32) (sin, cos float32) {
	s, c := math.Sincos(float64(rad))
	return float32(s), float32(c)
}

// orbitModel moves along the unit circle centred at (0, 1, 0).
func orbitModel(rad float32) mgl32.Mat4 {
	y, x := sincos(rad)
	return gfx.NewModel().Translate(mgl32.Vec3{x, y + 1, 0}).Mat4()
}

// spinModel sits at (1, -1, 0) and turns about the Y axis.
func spinModel(rad float32) mgl32.Mat4 {
	return gfx.NewModel().
		Translate(mgl32.Vec3{1, -1, 0}).
		Rotate(rad, axisY).
		Mat4()
}

// pulseModel sits at (-1, -1, 0) and scales between 0 and 2.
func pulseModel(rad float32) mgl32.Mat4 {
	sin, _ := sincos(rad)
	s := sin + 1
	return gfx.NewModel().
		Translate(mgl32.Vec3{-1, -1, 0}).
		Scale(mgl32.Vec3{s, s, 0}).
		Mat4()
}

// w017 animates three copies of the triangle.
type w017 struct{}

func init() { Register("w017", func() Demo { return w017{} }) }

func (w017) Name() string     { return "w017" }
func (w017) Describe() string { return "three triangles: orbiting, rotating and scaling" }
func (w017) Pacing() Pacing   { return Timer }

func (w017) Camera() gfx.Camera {
	return lookAtOrigin(mgl32.Vec3{0, 0, 5}, 45)
}

func (w017) Sources() (string, string) { return triangleVertex, triangleFragment }

func (w017) Setup(r *gfx.Renderer) error {
	return r.SetAttributes(triangleAttribs()...)
}

func (w017) Draw(r *gfx.Renderer, cam gfx.Camera, f gfx.Frame) error {
	r.Clear(black)
	vp := cam.ViewProjection(r.Aspect())
	for _, model := range []mgl32.Mat4{orbitModel(f.Angle), spinModel(f.Angle), pulseModel(f.Angle)} {
		r.SetMatrix("mvpMatrix", gfx.MVP(vp, model))
		if err := r.DrawArrays(3); err != nil {
			return err
		}
	}
	return r.Flush()
}

// quad vertex positions (x,y,z)
//
//	   v0
//	  /  \
//	v2----v1
//	  \  /
//	   v3
var quadPositions = []float32{
	0.0, 1.0, 0.0, // v0
	1.0, 0.0, 0.0, // v1
	-1.0, 0.0, 0.0, // v2
	0.0, -1.0, 0.0, // v3
}

// quad vertex colors (r,g,b,a)
var quadColors = []float32{
	1.0, 0.0, 0.0, 1.0,
	0.0, 1.0, 0.0, 1.0,
	0.0, 0.0, 1.0, 1.0,
	1.0, 1.0, 1.0, 1.0,
}

// two triangles sharing the v1-v2 edge
var quadIndices = []uint16{
	0, 1, 2, // first triangle
	1, 2, 3, // second triangle
}

// w018 draws an indexed quad turning about Y.
type w018 struct{}

func init() { Register("w018", func() Demo { return w018{} }) }

func (w018) Name() string     { return "w018" }
func (w018) Describe() string { return "an indexed quad built from two triangles, rotating" }
func (w018) Pacing() Pacing   { return Timer }

func (w018) Camera() gfx.Camera {
	return lookAtOrigin(mgl32.Vec3{0, 0, 5}, 45)
}

func (w018) Sources() (string, string) { return triangleVertex, triangleFragment }

func (w018) Setup(r *gfx.Renderer) error {
	err := r.SetAttributes(
		gfx.VertexAttrib{Name: "position", Stride: 3, Data: quadPositions},
		gfx.VertexAttrib{Name: "color", Stride: 4, Data: quadColors},
	)
	if err != nil {
		return err
	}
	r.SetIndices(quadIndices)
	return nil
}

func (w018) Draw(r *gfx.Renderer, cam gfx.Camera, f gfx.Frame) error {
	r.Clear(black)
	model := gfx.NewModel().Rotate(f.Angle, axisY).Mat4()
	r.SetMatrix("mvpMatrix", gfx.MVP(cam.ViewProjection(r.Aspect()), model))
	if err := r.DrawElements(); err != nil {
		return err
	}
	return r.Flush()
}
