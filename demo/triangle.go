package demo

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
)

var (
	//go:embed shaders/w015.vert
	triangleVertex string
	//go:embed shaders/w015.frag
	triangleFragment string
)

// vertex position array (x,y,z)
var trianglePositions = []float32{
	0.0, 1.0, 0.0, // top
	1.0, 0.0, 0.0, // right
	-1.0, 0.0, 0.0, // left
}

// vertex color array (r,g,b,a)
var triangleColors = []float32{
	1.0, 0.0, 0.0, 1.0, // red
	0.0, 1.0, 0.0, 1.0, // green
	0.0, 0.0, 1.0, 1.0, // blue
}

func triangleAttribs() []gfx.VertexAttrib {
	return []gfx.VertexAttrib{
		{Name: "position", Stride: 3, Data: trianglePositions},
		{Name: "color", Stride: 4, Data: triangleColors},
	}
}

func lookAtOrigin(eye mgl32.Vec3, fov float32) gfx.Camera {
	return gfx.Camera{
		Eye:    eye,
		Target: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		Fov:    fov,
		Near:   0.1,
		Far:    100,
	}
}

// w015 draws one static triangle.
type w015 struct{}

func init() { Register("w015", func() Demo { return w015{} }) }

func (w015) Name() string     { return "w015" }
func (w015) Describe() string { return "a single static triangle" }
func (w015) Pacing() Pacing   { return Static }

func (w015) Camera() gfx.Camera {
	return lookAtOrigin(mgl32.Vec3{0, 1, 3}, 90)
}

func (w015) Sources() (string, string) { return triangleVertex, triangleFragment }

func (w015) Setup(r *gfx.Renderer) error {
	return r.SetAttributes(triangleAttribs()...)
}

func (w015) Draw(r *gfx.Renderer, cam gfx.Camera, _ gfx.Frame) error {
	r.Clear(black)
	mvp := gfx.MVP(cam.ViewProjection(r.Aspect()), gfx.NewModel().Mat4())
	r.SetMatrix("mvpMatrix", mvp)
	if err := r.DrawArrays(3); err != nil {
		return err
	}
	return r.Flush()
}

// w016 draws the triangle twice, moved left and right.
type w016 struct{}

func init() { Register("w016", func() Demo { return w016{} }) }

func (w016) Name() string     { return "w016" }
func (w016) Describe() string { return "the same triangle drawn twice with different model matrices" }
func (w016) Pacing() Pacing   { return Static }

func (w016) Camera() gfx.Camera {
	return lookAtOrigin(mgl32.Vec3{0, 0, 3}, 90)
}

func (w016) Sources() (string, string) { return triangleVertex, triangleFragment }

func (w016) Setup(r *gfx.Renderer) error {
	return r.SetAttributes(triangleAttribs()...)
}

func (w016) Draw(r *gfx.Renderer, cam gfx.Camera, _ gfx.Frame) error {
	r.Clear(black)
	vp := cam.ViewProjection(r.Aspect())
	for _, x := range []float32{1.5, -1.5} {
		model := gfx.NewModel().Translate(mgl32.Vec3{x, 0, 0}).Mat4()
		r.SetMatrix("mvpMatrix", gfx.MVP(vp, model))
		if err := r.DrawArrays(3); err != nil {
			return err
		}
	}
	return r.Flush()
}
