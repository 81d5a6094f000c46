//go:build js && wasm

// Package webgl implements gfx.Context on a browser WebGL 1 context and
// gfx.Scheduler on the browser's frame and timer callbacks.
package webgl

import (
	"image"
	"syscall/js"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
	"github.com/pkg/errors"
)

// WebGL leaves fragment precision undeclared.
const fragmentPrelude = "precision mediump float;\n"

// Context forwards gfx.Context calls to a WebGLRenderingContext. JS objects
// are kept in handle tables so callers see plain integer handles.
type Context struct {
	gl     js.Value
	canvas js.Value

	next     uint32
	objects  map[uint32]js.Value
	kinds    map[gfx.Shader]gfx.ShaderKind
	uniforms map[gfx.Program][]js.Value
	current  gfx.Program

	byteBuf  js.Value
	floatBuf js.Value
}

var _ gfx.Context = (*Context)(nil)

// FindCanvas returns the element with the given id, or the first canvas
// of the document when id is empty or absent.
func FindCanvas(id string) (js.Value, error) {
	doc := js.Global().Get("document")
	if id != "" {
		if c := doc.Call("getElementById", id); c.Truthy() {
			return c, nil
		}
	}
	if c := doc.Call("querySelector", "canvas"); c.Truthy() {
		return c, nil
	}
	return js.Null(), errors.Errorf("no canvas element %q in document", id)
}

// NewContext asks canvas for a WebGL context, falling back to the
// experimental name older browsers use. It wraps gfx.ErrNoContext when
// neither is available.
func NewContext(canvas js.Value) (*Context, error) {
	var ctx js.Value
	for _, name := range []string{"webgl", "experimental-webgl"} {
		ctx = canvas.Call("getContext", name)
		if ctx.Truthy() {
			break
		}
	}
	if !ctx.Truthy() {
		return nil, errors.Wrap(gfx.ErrNoContext, "webgl is not supported")
	}
	return &Context{
		gl:       ctx,
		canvas:   canvas,
		objects:  make(map[uint32]js.Value),
		kinds:    make(map[gfx.Shader]gfx.ShaderKind),
		uniforms: make(map[gfx.Program][]js.Value),
	}, nil
}

// Size returns the drawing buffer size in pixels.
func (c *Context) Size() (width, height int) {
	return c.gl.Get("drawingBufferWidth").Int(), c.gl.Get("drawingBufferHeight").Int()
}

func (c *Context) put(v js.Value) uint32 {
	if !v.Truthy() {
		return 0
	}
	c.next++
	c.objects[c.next] = v
	return c.next
}

func (c *Context) get(h uint32) js.Value {
	if v, ok := c.objects[h]; ok {
		return v
	}
	return js.Null()
}

func (c *Context) drop(h uint32) js.Value {
	v := c.get(h)
	delete(c.objects, h)
	return v
}

func (c *Context) CreateShader(kind gfx.ShaderKind) gfx.Shader {
	s := gfx.Shader(c.put(c.gl.Call("createShader", int(kind))))
	if s != 0 {
		c.kinds[s] = kind
	}
	return s
}

func (c *Context) ShaderSource(s gfx.Shader, source string) {
	if c.kinds[s] == gfx.FragmentShader {
		source = fragmentPrelude + source
	}
	c.gl.Call("shaderSource", c.get(uint32(s)), source)
}

func (c *Context) CompileShader(s gfx.Shader) {
	c.gl.Call("compileShader", c.get(uint32(s)))
}

func (c *Context) CompileStatus(s gfx.Shader) bool {
	return c.gl.Call("getShaderParameter", c.get(uint32(s)), int(compileStatus)).Truthy()
}

func (c *Context) ShaderInfoLog(s gfx.Shader) string {
	return jsString(c.gl.Call("getShaderInfoLog", c.get(uint32(s))))
}

func (c *Context) DeleteShader(s gfx.Shader) {
	delete(c.kinds, s)
	c.gl.Call("deleteShader", c.drop(uint32(s)))
}

func (c *Context) CreateProgram() gfx.Program {
	return gfx.Program(c.put(c.gl.Call("createProgram")))
}

func (c *Context) AttachShader(p gfx.Program, s gfx.Shader) {
	c.gl.Call("attachShader", c.get(uint32(p)), c.get(uint32(s)))
}

func (c *Context) LinkProgram(p gfx.Program) {
	delete(c.uniforms, p)
	c.gl.Call("linkProgram", c.get(uint32(p)))
}

func (c *Context) LinkStatus(p gfx.Program) bool {
	return c.gl.Call("getProgramParameter", c.get(uint32(p)), int(linkStatus)).Truthy()
}

func (c *Context) ProgramInfoLog(p gfx.Program) string {
	return jsString(c.gl.Call("getProgramInfoLog", c.get(uint32(p))))
}

func (c *Context) UseProgram(p gfx.Program) {
	c.current = p
	c.gl.Call("useProgram", c.get(uint32(p)))
}

func (c *Context) DeleteProgram(p gfx.Program) {
	delete(c.uniforms, p)
	c.gl.Call("deleteProgram", c.drop(uint32(p)))
}

func (c *Context) GetAttribLocation(p gfx.Program, name string) gfx.Attrib {
	return gfx.Attrib(c.gl.Call("getAttribLocation", c.get(uint32(p)), name).Int())
}

// GetUniformLocation maps WebGLUniformLocation objects to small integers
// local to their program.
func (c *Context) GetUniformLocation(p gfx.Program, name string) gfx.Uniform {
	loc := c.gl.Call("getUniformLocation", c.get(uint32(p)), name)
	if !loc.Truthy() {
		return gfx.InvalidUniform
	}
	locs := c.uniforms[p]
	for i, l := range locs {
		if l.Equal(loc) {
			return gfx.Uniform(i)
		}
	}
	c.uniforms[p] = append(locs, loc)
	return gfx.Uniform(len(locs))
}

func (c *Context) CreateBuffer() gfx.Buffer {
	return gfx.Buffer(c.put(c.gl.Call("createBuffer")))
}

func (c *Context) BindBuffer(target gfx.BufferTarget, b gfx.Buffer) {
	c.gl.Call("bindBuffer", int(target), c.get(uint32(b)))
}

func (c *Context) BufferFloat32(target gfx.BufferTarget, data []float32, usage gfx.Usage) {
	c.gl.Call("bufferData", int(target), c.float32Array(data), int(usage))
}

func (c *Context) BufferUint16(target gfx.BufferTarget, data []uint16, usage gfx.Usage) {
	c.gl.Call("bufferData", int(target), c.uint16Array(data), int(usage))
}

func (c *Context) DeleteBuffer(b gfx.Buffer) {
	c.gl.Call("deleteBuffer", c.drop(uint32(b)))
}

func (c *Context) EnableVertexAttribArray(a gfx.Attrib) {
	c.gl.Call("enableVertexAttribArray", int(a))
}

func (c *Context) DisableVertexAttribArray(a gfx.Attrib) {
	c.gl.Call("disableVertexAttribArray", int(a))
}

func (c *Context) VertexAttribPointer(a gfx.Attrib, size int, normalized bool, stride, offset int) {
	c.gl.Call("vertexAttribPointer", int(a), size, int(glFloat), normalized, stride, offset)
}

func (c *Context) UniformMatrix4fv(u gfx.Uniform, m mgl32.Mat4) {
	if !u.Valid() {
		return
	}
	var loc js.Value
	if locs := c.uniforms[c.current]; int(u) < len(locs) {
		loc = locs[u]
	}
	if !loc.Truthy() {
		return
	}
	if c.floatBuf.IsUndefined() {
		c.floatBuf = js.Global().Get("Float32Array").New(16)
	}
	for i, v := range m {
		c.floatBuf.SetIndex(i, v)
	}
	c.gl.Call("uniformMatrix4fv", loc, false, c.floatBuf)
}

func (c *Context) ClearColor(r, g, b, a float32) { c.gl.Call("clearColor", r, g, b, a) }
func (c *Context) ClearDepth(d float32)          { c.gl.Call("clearDepth", d) }
func (c *Context) Clear(mask gfx.ClearMask)      { c.gl.Call("clear", int(mask)) }
func (c *Context) Enable(cp gfx.Capability)      { c.gl.Call("enable", int(cp)) }
func (c *Context) Disable(cp gfx.Capability)     { c.gl.Call("disable", int(cp)) }
func (c *Context) DepthFunc(f gfx.DepthFunc)     { c.gl.Call("depthFunc", int(f)) }

func (c *Context) Viewport(x, y, width, height int) {
	c.gl.Call("viewport", x, y, width, height)
}

func (c *Context) DrawArrays(mode gfx.Mode, first, count int) {
	c.gl.Call("drawArrays", int(mode), first, count)
}

func (c *Context) DrawElements(mode gfx.Mode, count, offset int) {
	c.gl.Call("drawElements", int(mode), count, int(unsignedShort), offset)
}

func (c *Context) Flush() { c.gl.Call("flush") }

func (c *Context) ReadPixels(x, y, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return img
	}
	buf := c.bytes(len(img.Pix))
	c.gl.Call("readPixels", x, y, width, height, int(rgba), int(unsignedByte), buf)
	js.CopyBytesToGo(img.Pix, buf)

	// rows arrive bottom-up
	row := make([]byte, img.Stride)
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.Pix[top*img.Stride : (top+1)*img.Stride]
		b := img.Pix[bottom*img.Stride : (bottom+1)*img.Stride]
		copy(row, t)
		copy(t, b)
		copy(b, row)
	}
	return img
}

func (c *Context) GetError() uint32 {
	return uint32(c.gl.Call("getError").Int())
}

// IsContextLost reports whether the browser took the context away.
func (c *Context) IsContextLost() bool {
	return c.gl.Call("isContextLost").Bool()
}

func jsString(v js.Value) string {
	if v.IsNull() || v.IsUndefined() {
		return ""
	}
	return v.String()
}
