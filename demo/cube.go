package demo

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
)

var (
	//go:embed shaders/cube.vert
	cubeVertex string
	//go:embed shaders/cube.frag
	cubeFragment string
)

// unit cube, four vertices per face so every face gets a flat color
//
//	  v6----- v5
//	 /|      /|
//	v1------v0|
//	| |     | |
//	| v7----|-v4
//	|/      |/
//	v2------v3
var cubePositions = []float32{
	// front
	-1.0, -1.0, 1.0,
	1.0, -1.0, 1.0,
	1.0, 1.0, 1.0,
	-1.0, 1.0, 1.0,
	// back
	-1.0, -1.0, -1.0,
	-1.0, 1.0, -1.0,
	1.0, 1.0, -1.0,
	1.0, -1.0, -1.0,
	// top
	-1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0,
	1.0, 1.0, 1.0,
	1.0, 1.0, -1.0,
	// bottom
	-1.0, -1.0, -1.0,
	1.0, -1.0, -1.0,
	1.0, -1.0, 1.0,
	-1.0, -1.0, 1.0,
	// right
	1.0, -1.0, -1.0,
	1.0, 1.0, -1.0,
	1.0, 1.0, 1.0,
	1.0, -1.0, 1.0,
	// left
	-1.0, -1.0, -1.0,
	-1.0, -1.0, 1.0,
	-1.0, 1.0, 1.0,
	-1.0, 1.0, -1.0,
}

var cubeFaceColors = [][4]float32{
	{1.0, 1.0, 1.0, 1.0}, // front: white
	{1.0, 0.0, 0.0, 1.0}, // back: red
	{0.0, 1.0, 0.0, 1.0}, // top: green
	{0.0, 0.0, 1.0, 1.0}, // bottom: blue
	{1.0, 1.0, 0.0, 1.0}, // right: yellow
	{1.0, 0.0, 1.0, 1.0}, // left: purple
}

const verticesPerFace = 4

func makeCubeColors() []float32 {
	colors := make([]float32, 0, len(cubeFaceColors)*verticesPerFace*4)
	for _, c := range cubeFaceColors {
		for i := 0; i < verticesPerFace; i++ {
			colors = append(colors, c[:]...)
		}
	}
	return colors
}

func makeCubeIndices() []uint16 {
	indices := make([]uint16, 0, len(cubeFaceColors)*6)
	for face := range cubeFaceColors {
		i := uint16(face * verticesPerFace)
		indices = append(indices,
			i, i+1, i+2, // first triangle
			i, i+2, i+3, // second triangle
		)
	}
	return indices
}

// cubeModel places the cube 6 units in front of the eye and tumbles it by
// rotation radians about Z, 0.7 of that about Y and 0.3 about X.
func cubeModel(rotation float32) mgl32.Mat4 {
	return gfx.NewModel().
		Translate(mgl32.Vec3{0, 0, -6}).
		Rotate(rotation, mgl32.Vec3{0, 0, 1}).
		Rotate(rotation*0.7, mgl32.Vec3{0, 1, 0}).
		Rotate(rotation*0.3, mgl32.Vec3{1, 0, 0}).
		Mat4()
}

// cube draws a tumbling colored cube, one radian per second.
type cube struct{}

func init() { Register("cube", func() Demo { return cube{} }) }

func (cube) Name() string     { return "cube" }
func (cube) Describe() string { return "a colored cube tumbling with elapsed time, depth tested" }
func (cube) Pacing() Pacing   { return Refresh }

func (cube) Camera() gfx.Camera {
	return gfx.Camera{
		Eye:    mgl32.Vec3{0, 0, 0},
		Target: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
		Fov:    45,
		Near:   0.1,
		Far:    100,
	}
}

func (cube) Sources() (string, string) { return cubeVertex, cubeFragment }

func (cube) Setup(r *gfx.Renderer) error {
	r.EnableDepth()
	err := r.SetAttributes(
		gfx.VertexAttrib{Name: "aVertexPosition", Stride: 3, Data: cubePositions},
		gfx.VertexAttrib{Name: "aVertexColor", Stride: 4, Data: makeCubeColors()},
	)
	if err != nil {
		return err
	}
	r.SetIndices(makeCubeIndices())
	return nil
}

func (cube) Draw(r *gfx.Renderer, cam gfx.Camera, f gfx.Frame) error {
	r.Clear(black)
	rotation := float32(f.Elapsed.Seconds())
	r.SetMatrix("uProjectionMatrix", cam.Projection(r.Aspect()))
	r.SetMatrix("uModelViewMatrix", cam.View().Mul4(cubeModel(rotation)))
	if err := r.DrawElements(); err != nil {
		return err
	}
	return r.Flush()
}
