//go:build !js

// Package desktop runs the demos in a native window: an OpenGL 2.1 context
// through go-gl and a window and event pump through GLFW.
package desktop

import (
	"image"
	"regexp"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
)

const bytesFloat32 = 4 // a float32 is 4 bytes
const bytesUint16 = 2

// GLSL 1.20 has no precision qualifiers: define them away and drop the
// default precision statements of ES sources.
const prelude = "#version 120\n#define lowp\n#define mediump\n#define highp\n"

var precisionRE = regexp.MustCompile(`(?m)^\s*precision\s+\w+\s+\w+\s*;\s*$`)

func translate(source string) string {
	source = precisionRE.ReplaceAllString(source, "")
	return prelude + "#line 1\n" + source
}

// Context is the gfx.Context of the current OpenGL 2.1 context. Every
// method must run on the thread the context was made current on.
type Context struct{}

var _ gfx.Context = Context{}

func (Context) CreateShader(kind gfx.ShaderKind) gfx.Shader {
	return gfx.Shader(gl.CreateShader(uint32(kind)))
}

func (Context) ShaderSource(s gfx.Shader, source string) {
	csources, free := gl.Strs(translate(source) + "\x00")
	gl.ShaderSource(uint32(s), 1, csources, nil)
	free()
}

func (Context) CompileShader(s gfx.Shader) { gl.CompileShader(uint32(s)) }

func (Context) CompileStatus(s gfx.Shader) bool {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (Context) ShaderInfoLog(s gfx.Shader) string {
	var logLength int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(uint32(s), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (Context) DeleteShader(s gfx.Shader) { gl.DeleteShader(uint32(s)) }

func (Context) CreateProgram() gfx.Program { return gfx.Program(gl.CreateProgram()) }

func (Context) AttachShader(p gfx.Program, s gfx.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

func (Context) LinkProgram(p gfx.Program) { gl.LinkProgram(uint32(p)) }

func (Context) LinkStatus(p gfx.Program) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (Context) ProgramInfoLog(p gfx.Program) string {
	var logLength int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(uint32(p), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (Context) UseProgram(p gfx.Program)    { gl.UseProgram(uint32(p)) }
func (Context) DeleteProgram(p gfx.Program) { gl.DeleteProgram(uint32(p)) }

func (Context) GetAttribLocation(p gfx.Program, name string) gfx.Attrib {
	return gfx.Attrib(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

func (Context) GetUniformLocation(p gfx.Program, name string) gfx.Uniform {
	return gfx.Uniform(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (Context) CreateBuffer() gfx.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return gfx.Buffer(b)
}

func (Context) BindBuffer(target gfx.BufferTarget, b gfx.Buffer) {
	gl.BindBuffer(uint32(target), uint32(b))
}

func (Context) BufferFloat32(target gfx.BufferTarget, data []float32, usage gfx.Usage) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(uint32(target), len(data)*bytesFloat32, ptr, uint32(usage))
}

func (Context) BufferUint16(target gfx.BufferTarget, data []uint16, usage gfx.Usage) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(uint32(target), len(data)*bytesUint16, ptr, uint32(usage))
}

func (Context) DeleteBuffer(b gfx.Buffer) {
	buf := uint32(b)
	gl.DeleteBuffers(1, &buf)
}

func (Context) EnableVertexAttribArray(a gfx.Attrib) {
	gl.EnableVertexAttribArray(uint32(a))
}

func (Context) DisableVertexAttribArray(a gfx.Attrib) {
	gl.DisableVertexAttribArray(uint32(a))
}

func (Context) VertexAttribPointer(a gfx.Attrib, size int, normalized bool, stride, offset int) {
	gl.VertexAttribPointer(uint32(a), int32(size), gl.FLOAT, normalized, int32(stride), gl.PtrOffset(offset))
}

func (Context) UniformMatrix4fv(u gfx.Uniform, m mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(u), 1, false, &m[0])
}

func (Context) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (Context) ClearDepth(d float32)          { gl.ClearDepth(float64(d)) }
func (Context) Clear(mask gfx.ClearMask)      { gl.Clear(uint32(mask)) }
func (Context) Enable(c gfx.Capability)       { gl.Enable(uint32(c)) }
func (Context) Disable(c gfx.Capability)      { gl.Disable(uint32(c)) }
func (Context) DepthFunc(f gfx.DepthFunc)     { gl.DepthFunc(uint32(f)) }

func (Context) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (Context) DrawArrays(mode gfx.Mode, first, count int) {
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}

func (Context) DrawElements(mode gfx.Mode, count, offset int) {
	gl.DrawElements(uint32(mode), int32(count), gl.UNSIGNED_SHORT, gl.PtrOffset(offset))
}

func (Context) Flush() { gl.Flush() }

func (Context) ReadPixels(x, y, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return img
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	flipRows(img)
	return img
}

// flipRows turns GL's bottom-up rows into image order.
func flipRows(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for top, bottom := 0, h-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.Pix[top*img.Stride : (top+1)*img.Stride]
		b := img.Pix[bottom*img.Stride : (bottom+1)*img.Stride]
		copy(row, t)
		copy(t, b)
		copy(b, row)
	}
}

func (Context) GetError() uint32 { return gl.GetError() }
