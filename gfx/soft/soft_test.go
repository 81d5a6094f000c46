package soft

import (
	"image/color"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passVertex = `
attribute vec3 position;
attribute vec4 color;
uniform   mat4 mvpMatrix;
varying   vec4 vColor;

void main(void) {
	vColor = color;
	gl_Position = mvpMatrix * vec4(position, 1.0);
}
`

const passFragment = `
varying vec4 vColor;

void main(void) {
	gl_FragColor = vColor;
}
`

func TestCompileAcceptsDemoShaders(t *testing.T) {
	vs, log := compile(gfx.VertexShader, passVertex)
	require.Empty(t, log)
	require.NotNil(t, vs.position)
	assert.Equal(t, []string{"mvpMatrix"}, vs.position.matrices)
	assert.Equal(t, "position", vs.position.attrib)
	assert.True(t, vs.position.widen)
	assert.Equal(t, float32(1), vs.position.w)
	assert.Equal(t, map[string]string{"vColor": "color"}, vs.varyings)

	fs, log := compile(gfx.FragmentShader, passFragment)
	require.Empty(t, log)
	assert.Equal(t, "vColor", fs.color.varying)
}

func TestCompileAcceptsPrecisionAndComments(t *testing.T) {
	src := `
precision mediump float;
/* block
   comment */
varying lowp vec4 vColor; // trailing
void main(void)
{
	gl_FragColor = vColor;
}
`
	_, log := compile(gfx.FragmentShader, src)
	assert.Empty(t, log)
}

func TestCompileErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		kind gfx.ShaderKind
		src  string
		want string
	}{
		{"missing main", gfx.VertexShader, "attribute vec4 p;\n", "Missing main()"},
		{"unknown type", gfx.VertexShader, "attribute vec5 p;\nvoid main(void) {\n}\n", "'vec5' : syntax error: unknown type"},
		{"attribute in fragment", gfx.FragmentShader, "attribute vec4 p;\nvoid main(void) {\n}\n", "vertex shaders only"},
		{"redefinition", gfx.VertexShader, "attribute vec4 p;\nuniform mat4 p;\nvoid main(void) {\n\tgl_Position = p;\n}\n", "ERROR: 0:2: 'p' : redefinition"},
		{"unbalanced", gfx.FragmentShader, "void main(void) {\n", "unexpected end of file"},
		{"no position", gfx.VertexShader, "attribute vec4 p;\nvoid main(void) {\n}\n", "'gl_Position' : not written"},
		{"no color", gfx.FragmentShader, "void main(void) {\n}\n", "'gl_FragColor' : not written"},
		{"undeclared", gfx.VertexShader, "attribute vec4 p;\nvoid main(void) {\n\tgl_Position = m * p;\n}\n", "undeclared identifier"},
		{"bad varying", gfx.VertexShader, "attribute vec3 p;\nvarying vec4 v;\nvoid main(void) {\n\tv = p;\n\tgl_Position = vec4(p, 1.0);\n}\n", "cannot convert"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, log := compile(tc.kind, tc.src)
			assert.Nil(t, c)
			joined := strings.Join(log, "\n")
			assert.Contains(t, joined, tc.want)
			assert.Contains(t, log[len(log)-1], "compilation errors")
		})
	}
}

func newTriangleProgram(t *testing.T, c *Context) gfx.Program {
	t.Helper()
	vs := c.CreateShader(gfx.VertexShader)
	c.ShaderSource(vs, passVertex)
	c.CompileShader(vs)
	require.True(t, c.CompileStatus(vs), c.ShaderInfoLog(vs))

	fs := c.CreateShader(gfx.FragmentShader)
	c.ShaderSource(fs, passFragment)
	c.CompileShader(fs)
	require.True(t, c.CompileStatus(fs), c.ShaderInfoLog(fs))

	p := c.CreateProgram()
	c.AttachShader(p, vs)
	c.AttachShader(p, fs)
	c.LinkProgram(p)
	require.True(t, c.LinkStatus(p), c.ProgramInfoLog(p))
	c.DeleteShader(vs)
	c.DeleteShader(fs)
	c.UseProgram(p)
	return p
}

func upload(c *Context, p gfx.Program, name string, size int, data []float32) {
	loc := c.GetAttribLocation(p, name)
	b := c.CreateBuffer()
	c.BindBuffer(gfx.ArrayBuffer, b)
	c.BufferFloat32(gfx.ArrayBuffer, data, gfx.StaticDraw)
	c.EnableVertexAttribArray(loc)
	c.VertexAttribPointer(loc, size, false, 0, 0)
}

func TestLinkAssignsLocationsInDeclarationOrder(t *testing.T) {
	c := New(4, 4)
	p := newTriangleProgram(t, c)

	assert.Equal(t, gfx.Attrib(0), c.GetAttribLocation(p, "position"))
	assert.Equal(t, gfx.Attrib(1), c.GetAttribLocation(p, "color"))
	assert.Equal(t, gfx.Uniform(0), c.GetUniformLocation(p, "mvpMatrix"))
	assert.Equal(t, gfx.NoError, c.GetError())
}

func TestLocationOfUnlinkedProgramIsAnError(t *testing.T) {
	c := New(4, 4)
	p := c.CreateProgram()
	assert.Equal(t, gfx.InvalidAttrib, c.GetAttribLocation(p, "position"))
	assert.Equal(t, gfx.InvalidOperation, c.GetError())
}

func TestIndexedQuadDrawsTwoTriangles(t *testing.T) {
	c := New(64, 64)
	p := newTriangleProgram(t, c)

	upload(c, p, "position", 3, []float32{
		0, 1, 0,
		1, 0, 0,
		-1, 0, 0,
		0, -1, 0,
	})
	upload(c, p, "color", 4, []float32{
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
	})
	ibo := c.CreateBuffer()
	c.BindBuffer(gfx.ElementArrayBuffer, ibo)
	c.BufferUint16(gfx.ElementArrayBuffer, []uint16{0, 1, 2, 1, 2, 3}, gfx.StaticDraw)

	c.UniformMatrix4fv(c.GetUniformLocation(p, "mvpMatrix"), mgl32.Scale3D(0.5, 0.5, 0.5))
	c.ClearColor(0, 0, 0, 1)
	c.Clear(gfx.ColorBufferBit)
	c.DrawElements(gfx.Triangles, 6, 0)
	require.Equal(t, gfx.NoError, c.GetError())

	assert.Equal(t, 1, c.Stats().DrawCalls)
	assert.Equal(t, 2, c.Stats().Triangles)

	white := color.RGBA{255, 255, 255, 255}
	assert.Equal(t, white, c.At(32, 24), "upper triangle")
	assert.Equal(t, white, c.At(32, 40), "lower triangle")
	assert.Equal(t, color.RGBA{A: 255}, c.At(4, 4), "outside the diamond")
}

func TestDrawElementsValidatesRange(t *testing.T) {
	c := New(8, 8)
	newTriangleProgram(t, c)
	ibo := c.CreateBuffer()
	c.BindBuffer(gfx.ElementArrayBuffer, ibo)
	c.BufferUint16(gfx.ElementArrayBuffer, []uint16{0, 1, 2}, gfx.StaticDraw)

	c.DrawElements(gfx.Triangles, 6, 0)
	assert.Equal(t, gfx.InvalidOperation, c.GetError())
	c.DrawElements(gfx.Triangles, 3, 1)
	assert.Equal(t, gfx.InvalidValue, c.GetError(), "odd byte offset")
}

func TestDepthTestKeepsNearestFragment(t *testing.T) {
	c := New(16, 16)
	p := newTriangleProgram(t, c)

	// two overlapping full-screen triangles: red near, then green far
	upload(c, p, "position", 3, []float32{
		-3, -3, -0.5, 3, -3, -0.5, 0, 3, -0.5,
		-3, -3, 0.5, 3, -3, 0.5, 0, 3, 0.5,
	})
	upload(c, p, "color", 4, []float32{
		1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1,
		0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	})
	c.UniformMatrix4fv(c.GetUniformLocation(p, "mvpMatrix"), mgl32.Ident4())
	c.Enable(gfx.DepthTest)
	c.DepthFunc(gfx.LEqual)
	c.ClearDepth(1)
	c.Clear(gfx.ColorBufferBit | gfx.DepthBufferBit)
	c.DrawArrays(gfx.Triangles, 0, 6)

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, c.At(8, 8))

	c.Disable(gfx.DepthTest)
	c.DrawArrays(gfx.Triangles, 3, 3)
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, c.At(8, 8), "without the test the last draw wins")
	assert.Equal(t, gfx.NoError, c.GetError())
}

func TestReadPixelsUsesBottomLeftOrigin(t *testing.T) {
	c := New(4, 4)
	c.color.SetRGBA(0, 3, color.RGBA{R: 9, A: 255}) // bottom-left pixel in image order

	img := c.ReadPixels(0, 0, 1, 1)
	assert.Equal(t, color.RGBA{R: 9, A: 255}, img.RGBAAt(0, 0))

	full := c.Image()
	assert.Equal(t, color.RGBA{R: 9, A: 255}, full.RGBAAt(0, 3))
}

func TestUnsetUniformCollapsesGeometry(t *testing.T) {
	c := New(8, 8)
	p := newTriangleProgram(t, c)
	upload(c, p, "position", 3, []float32{0, 1, 0, 1, 0, 0, -1, 0, 0})
	upload(c, p, "color", 4, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})

	c.DrawArrays(gfx.Triangles, 0, 3)
	assert.Equal(t, 1, c.Stats().Triangles)
	assert.Zero(t, c.Stats().Fragments, "a zero matrix leaves nothing to rasterize")
}
