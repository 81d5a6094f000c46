// Package gfx holds the pieces every demo shares: shader and program setup,
// buffer upload, camera and model transforms, the frame loop and the
// renderer that ties them to one drawing surface.
//
// All of it talks to the graphics API through Context, a small WebGL-1
// shaped interface. Backends live in the sub-packages: desktop (OpenGL 2.1
// via go-gl), webgl (syscall/js) and soft (a CPU reference rasterizer).
package gfx

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// ShaderKind selects the pipeline stage of a shader object.
type ShaderKind uint32

const (
	FragmentShader ShaderKind = 0x8B30
	VertexShader   ShaderKind = 0x8B31
)

func (k ShaderKind) String() string {
	switch k {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	}
	return fmt.Sprintf("ShaderKind(%#x)", uint32(k))
}

// BufferTarget is the binding point of a buffer object.
type BufferTarget uint32

const (
	ArrayBuffer        BufferTarget = 0x8892
	ElementArrayBuffer BufferTarget = 0x8893
)

// Usage is the data store usage hint passed on upload.
type Usage uint32

const StaticDraw Usage = 0x88E4

// Mode is a primitive assembly mode.
type Mode uint32

const (
	Points        Mode = 0x0000
	Lines         Mode = 0x0001
	Triangles     Mode = 0x0004
	TriangleStrip Mode = 0x0005
)

// Capability is a server-side capability toggled with Enable.
type Capability uint32

const (
	CullFace  Capability = 0x0B44
	DepthTest Capability = 0x0B71
	Blend     Capability = 0x0BE2
)

// DepthFunc is the comparison used by the depth test.
type DepthFunc uint32

const (
	Never  DepthFunc = 0x0200
	Less   DepthFunc = 0x0201
	Equal  DepthFunc = 0x0202
	LEqual DepthFunc = 0x0203
	Always DepthFunc = 0x0207
)

// ClearMask selects the buffers reset by Clear.
type ClearMask uint32

const (
	DepthBufferBit ClearMask = 0x00000100
	ColorBufferBit ClearMask = 0x00004000
)

// Error codes reported by Context.GetError.
const (
	NoError                     uint32 = 0
	InvalidEnum                 uint32 = 0x500
	InvalidValue                uint32 = 0x501
	InvalidOperation            uint32 = 0x502
	StackOverflow               uint32 = 0x503
	StackUnderflow              uint32 = 0x504
	OutOfMemory                 uint32 = 0x505
	InvalidFramebufferOperation uint32 = 0x506
	ContextLost                 uint32 = 0x507
	ContextLostWebGL            uint32 = 0x9242
)

// Object handles. The zero value never names a live object.
type (
	Shader  uint32
	Program uint32
	Buffer  uint32
)

// Attrib is an attribute location. Negative values are invalid.
type Attrib int32

// Uniform is a uniform location. Negative values are invalid.
type Uniform int32

const (
	InvalidAttrib  Attrib  = -1
	InvalidUniform Uniform = -1
)

// Valid reports whether a names an attribute slot.
func (a Attrib) Valid() bool { return a >= 0 }

// Valid reports whether u names a uniform slot.
func (u Uniform) Valid() bool { return u >= 0 }

// Context is the graphics API consumed by this module. Implementations are
// not safe for concurrent use; every call must come from the goroutine that
// owns the surface.
type Context interface {
	CreateShader(kind ShaderKind) Shader
	ShaderSource(s Shader, source string)
	CompileShader(s Shader)
	CompileStatus(s Shader) bool
	ShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	LinkStatus(p Program) bool
	ProgramInfoLog(p Program) string
	UseProgram(p Program)
	DeleteProgram(p Program)
	GetAttribLocation(p Program, name string) Attrib
	GetUniformLocation(p Program, name string) Uniform

	CreateBuffer() Buffer
	BindBuffer(target BufferTarget, b Buffer)
	BufferFloat32(target BufferTarget, data []float32, usage Usage)
	BufferUint16(target BufferTarget, data []uint16, usage Usage)
	DeleteBuffer(b Buffer)

	EnableVertexAttribArray(a Attrib)
	DisableVertexAttribArray(a Attrib)
	// VertexAttribPointer declares size float components per vertex read
	// from the bound array buffer. stride and offset are in bytes.
	VertexAttribPointer(a Attrib, size int, normalized bool, stride, offset int)
	UniformMatrix4fv(u Uniform, m mgl32.Mat4)

	ClearColor(r, g, b, a float32)
	ClearDepth(d float32)
	Clear(mask ClearMask)
	Enable(c Capability)
	Disable(c Capability)
	DepthFunc(f DepthFunc)
	Viewport(x, y, width, height int)

	DrawArrays(mode Mode, first, count int)
	// DrawElements draws count 16-bit unsigned indices read from the bound
	// element array buffer starting at offset bytes.
	DrawElements(mode Mode, count, offset int)
	Flush()

	// ReadPixels returns the window rectangle with origin at the bottom
	// left, flipped into image order (first row is the top).
	ReadPixels(x, y, width, height int) *image.RGBA
	GetError() uint32
}
