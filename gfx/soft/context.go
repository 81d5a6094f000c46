// Package soft is a reference implementation of gfx.Context on the CPU.
//
// It compiles the pass-through shader subset used by the demos, assigns
// attribute and uniform locations in declaration order, and rasterizes
// triangles into an RGBA image with perspective-correct color
// interpolation and an optional depth test. It exists so that rendering
// can be checked pixel by pixel without a GPU, and to render headless.
//
// There is no near-plane clipping: triangles with a vertex behind the eye
// are dropped, fragments outside the depth range are discarded.
package soft

import (
	"image"
	"image/color"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
)

const maxVertexAttribs = 16

type shaderObject struct {
	kind     gfx.ShaderKind
	source   string
	compiled *compiled
	log      string
	status   bool
}

type programObject struct {
	attached []gfx.Shader
	linked   bool
	log      string

	vertex   *compiled
	fragment *compiled
	attribs  []decl // index is the location
	uniforms []decl // index is the location
	values   map[gfx.Uniform]mgl32.Mat4
}

type bufferObject struct {
	floats []float32
	shorts []uint16
}

type attribPointer struct {
	enabled bool
	buffer  gfx.Buffer
	size    int
	stride  int // bytes, zero for tightly packed
	offset  int // bytes
}

// Stats counts the work done by a context since it was created.
type Stats struct {
	DrawCalls int
	Triangles int // triangles assembled
	Fragments int // fragments written
	Flushes   int
	Clears    int
}

// Context is a software gfx.Context. The zero value is not usable; call New.
type Context struct {
	width, height int
	color         *image.RGBA
	depth         []float32

	clearColor [4]float32
	clearDepth float32
	depthTest  bool
	depthFunc  gfx.DepthFunc
	viewport   image.Rectangle

	next     uint32
	shaders  map[gfx.Shader]*shaderObject
	programs map[gfx.Program]*programObject
	buffers  map[gfx.Buffer]*bufferObject

	current        gfx.Program
	arrayBinding   gfx.Buffer
	elementBinding gfx.Buffer
	pointers       [maxVertexAttribs]attribPointer

	err   uint32
	stats Stats
}

var _ gfx.Context = (*Context)(nil)

// New returns a context with a width×height framebuffer cleared to
// transparent black and a depth buffer cleared to 1.
func New(width, height int) *Context {
	c := &Context{
		width:      width,
		height:     height,
		color:      image.NewRGBA(image.Rect(0, 0, width, height)),
		depth:      make([]float32, width*height),
		clearDepth: 1,
		depthFunc:  gfx.Less,
		viewport:   image.Rect(0, 0, width, height),
		shaders:    make(map[gfx.Shader]*shaderObject),
		programs:   make(map[gfx.Program]*programObject),
		buffers:    make(map[gfx.Buffer]*bufferObject),
	}
	for i := range c.depth {
		c.depth[i] = 1
	}
	return c
}

// Stats returns the work counters.
func (c *Context) Stats() Stats { return c.stats }

// Image returns a copy of the whole framebuffer, top row first.
func (c *Context) Image() *image.RGBA {
	return c.ReadPixels(0, 0, c.width, c.height)
}

// At samples the framebuffer at image coordinates (top-left origin).
func (c *Context) At(x, y int) color.RGBA {
	return c.color.RGBAAt(x, y)
}

func (c *Context) setError(code uint32) {
	if c.err == gfx.NoError {
		c.err = code
	}
}

func (c *Context) GetError() uint32 {
	code := c.err
	c.err = gfx.NoError
	return code
}

func (c *Context) alloc() uint32 {
	c.next++
	return c.next
}

func (c *Context) CreateShader(kind gfx.ShaderKind) gfx.Shader {
	if kind != gfx.VertexShader && kind != gfx.FragmentShader {
		c.setError(gfx.InvalidEnum)
		return 0
	}
	s := gfx.Shader(c.alloc())
	c.shaders[s] = &shaderObject{kind: kind}
	return s
}

func (c *Context) ShaderSource(s gfx.Shader, source string) {
	obj, ok := c.shaders[s]
	if !ok {
		c.setError(gfx.InvalidValue)
		return
	}
	obj.source = source
}

func (c *Context) CompileShader(s gfx.Shader) {
	obj, ok := c.shaders[s]
	if !ok {
		c.setError(gfx.InvalidValue)
		return
	}
	compiled, log := compile(obj.kind, obj.source)
	obj.compiled = compiled
	obj.status = compiled != nil
	obj.log = strings.Join(log, "\n")
}

func (c *Context) CompileStatus(s gfx.Shader) bool {
	obj, ok := c.shaders[s]
	return ok && obj.status
}

func (c *Context) ShaderInfoLog(s gfx.Shader) string {
	if obj, ok := c.shaders[s]; ok {
		return obj.log
	}
	c.setError(gfx.InvalidValue)
	return ""
}

// DeleteShader frees the shader object. Programs keep what they linked.
func (c *Context) DeleteShader(s gfx.Shader) {
	if s == 0 {
		return
	}
	delete(c.shaders, s)
}

func (c *Context) CreateProgram() gfx.Program {
	p := gfx.Program(c.alloc())
	c.programs[p] = &programObject{values: make(map[gfx.Uniform]mgl32.Mat4)}
	return p
}

func (c *Context) AttachShader(p gfx.Program, s gfx.Shader) {
	prog, ok := c.programs[p]
	if !ok {
		c.setError(gfx.InvalidValue)
		return
	}
	if _, ok := c.shaders[s]; !ok {
		c.setError(gfx.InvalidValue)
		return
	}
	prog.attached = append(prog.attached, s)
}

func (c *Context) LinkProgram(p gfx.Program) {
	prog, ok := c.programs[p]
	if !ok {
		c.setError(gfx.InvalidValue)
		return
	}
	prog.linked, prog.log = false, ""
	prog.vertex, prog.fragment = nil, nil

	var problems []string
	for _, s := range prog.attached {
		obj, ok := c.shaders[s]
		if !ok {
			continue
		}
		if !obj.status {
			problems = append(problems, "ERROR: One or more attached shaders not successfully compiled")
			continue
		}
		switch obj.kind {
		case gfx.VertexShader:
			prog.vertex = obj.compiled
		case gfx.FragmentShader:
			prog.fragment = obj.compiled
		}
	}
	if prog.vertex == nil {
		problems = append(problems, "ERROR: Missing vertex shader")
	}
	if prog.fragment == nil {
		problems = append(problems, "ERROR: Missing fragment shader")
	}
	if len(problems) == 0 {
		problems = append(problems, linkVaryings(prog.vertex, prog.fragment)...)
	}
	if len(problems) > 0 {
		prog.log = strings.Join(problems, "\n")
		prog.vertex, prog.fragment = nil, nil
		return
	}

	prog.attribs = prog.attribs[:0]
	prog.uniforms = prog.uniforms[:0]
	for _, d := range prog.vertex.decls {
		switch d.qual {
		case "attribute":
			prog.attribs = append(prog.attribs, d)
		case "uniform":
			prog.uniforms = append(prog.uniforms, d)
		}
	}
	for _, d := range prog.fragment.decls {
		if d.qual != "uniform" {
			continue
		}
		if _, dup := prog.vertex.lookup("uniform", d.name); !dup {
			prog.uniforms = append(prog.uniforms, d)
		}
	}
	prog.values = make(map[gfx.Uniform]mgl32.Mat4)
	prog.linked = true
}

func linkVaryings(vs, fs *compiled) []string {
	var problems []string
	for _, d := range fs.decls {
		if d.qual != "varying" {
			continue
		}
		v, ok := vs.lookup("varying", d.name)
		if !ok {
			problems = append(problems, "ERROR: Varying '"+d.name+"' not declared in vertex shader")
			continue
		}
		if v.typ != d.typ {
			problems = append(problems, "ERROR: Varying '"+d.name+"' type mismatch between shaders")
		}
	}
	for _, d := range fs.decls {
		if d.qual != "uniform" {
			continue
		}
		if v, ok := vs.lookup("uniform", d.name); ok && v.typ != d.typ {
			problems = append(problems, "ERROR: Uniform '"+d.name+"' type mismatch between shaders")
		}
	}
	return problems
}

func (c *Context) LinkStatus(p gfx.Program) bool {
	prog, ok := c.programs[p]
	return ok && prog.linked
}

func (c *Context) ProgramInfoLog(p gfx.Program) string {
	if prog, ok := c.programs[p]; ok {
		return prog.log
	}
	c.setError(gfx.InvalidValue)
	return ""
}

func (c *Context) UseProgram(p gfx.Program) {
	if p == 0 {
		c.current = 0
		return
	}
	prog, ok := c.programs[p]
	if !ok {
		c.setError(gfx.InvalidValue)
		return
	}
	if !prog.linked {
		c.setError(gfx.InvalidOperation)
		return
	}
	c.current = p
}

func (c *Context) DeleteProgram(p gfx.Program) {
	if p == 0 {
		return
	}
	delete(c.programs, p)
	if c.current == p {
		c.current = 0
	}
}

func (c *Context) GetAttribLocation(p gfx.Program, name string) gfx.Attrib {
	prog, ok := c.programs[p]
	if !ok || !prog.linked {
		c.setError(gfx.InvalidOperation)
		return gfx.InvalidAttrib
	}
	for i, d := range prog.attribs {
		if d.name == name {
			return gfx.Attrib(i)
		}
	}
	return gfx.InvalidAttrib
}

func (c *Context) GetUniformLocation(p gfx.Program, name string) gfx.Uniform {
	prog, ok := c.programs[p]
	if !ok || !prog.linked {
		c.setError(gfx.InvalidOperation)
		return gfx.InvalidUniform
	}
	for i, d := range prog.uniforms {
		if d.name == name {
			return gfx.Uniform(i)
		}
	}
	return gfx.InvalidUniform
}

func (c *Context) CreateBuffer() gfx.Buffer {
	b := gfx.Buffer(c.alloc())
	c.buffers[b] = &bufferObject{}
	return b
}

func (c *Context) BindBuffer(target gfx.BufferTarget, b gfx.Buffer) {
	if b != 0 {
		if _, ok := c.buffers[b]; !ok {
			c.setError(gfx.InvalidOperation)
			return
		}
	}
	switch target {
	case gfx.ArrayBuffer:
		c.arrayBinding = b
	case gfx.ElementArrayBuffer:
		c.elementBinding = b
	default:
		c.setError(gfx.InvalidEnum)
	}
}

func (c *Context) bound(target gfx.BufferTarget) *bufferObject {
	var b gfx.Buffer
	switch target {
	case gfx.ArrayBuffer:
		b = c.arrayBinding
	case gfx.ElementArrayBuffer:
		b = c.elementBinding
	default:
		c.setError(gfx.InvalidEnum)
		return nil
	}
	obj, ok := c.buffers[b]
	if !ok {
		c.setError(gfx.InvalidOperation)
		return nil
	}
	return obj
}

func (c *Context) BufferFloat32(target gfx.BufferTarget, data []float32, _ gfx.Usage) {
	if obj := c.bound(target); obj != nil {
		obj.floats = append([]float32(nil), data...)
		obj.shorts = nil
	}
}

func (c *Context) BufferUint16(target gfx.BufferTarget, data []uint16, _ gfx.Usage) {
	if obj := c.bound(target); obj != nil {
		obj.shorts = append([]uint16(nil), data...)
		obj.floats = nil
	}
}

func (c *Context) DeleteBuffer(b gfx.Buffer) {
	if b == 0 {
		return
	}
	delete(c.buffers, b)
	if c.arrayBinding == b {
		c.arrayBinding = 0
	}
	if c.elementBinding == b {
		c.elementBinding = 0
	}
}

func (c *Context) pointer(a gfx.Attrib) *attribPointer {
	if a < 0 || int(a) >= maxVertexAttribs {
		c.setError(gfx.InvalidValue)
		return nil
	}
	return &c.pointers[a]
}

func (c *Context) EnableVertexAttribArray(a gfx.Attrib) {
	if p := c.pointer(a); p != nil {
		p.enabled = true
	}
}

func (c *Context) DisableVertexAttribArray(a gfx.Attrib) {
	if p := c.pointer(a); p != nil {
		p.enabled = false
	}
}

func (c *Context) VertexAttribPointer(a gfx.Attrib, size int, _ bool, stride, offset int) {
	p := c.pointer(a)
	if p == nil {
		return
	}
	if size < 1 || size > 4 || stride < 0 || offset < 0 {
		c.setError(gfx.InvalidValue)
		return
	}
	if c.arrayBinding == 0 {
		c.setError(gfx.InvalidOperation)
		return
	}
	p.buffer, p.size, p.stride, p.offset = c.arrayBinding, size, stride, offset
}

func (c *Context) UniformMatrix4fv(u gfx.Uniform, m mgl32.Mat4) {
	prog, ok := c.programs[c.current]
	if !ok {
		c.setError(gfx.InvalidOperation)
		return
	}
	if !u.Valid() {
		return
	}
	if int(u) >= len(prog.uniforms) || prog.uniforms[u].typ != "mat4" {
		c.setError(gfx.InvalidOperation)
		return
	}
	prog.values[u] = m
}

func (c *Context) ClearColor(r, g, b, a float32) {
	c.clearColor = [4]float32{clamp01(r), clamp01(g), clamp01(b), clamp01(a)}
}

func (c *Context) ClearDepth(d float32) { c.clearDepth = clamp01(d) }

func (c *Context) Clear(mask gfx.ClearMask) {
	if mask&^(gfx.ColorBufferBit|gfx.DepthBufferBit) != 0 {
		c.setError(gfx.InvalidValue)
		return
	}
	c.stats.Clears++
	if mask&gfx.ColorBufferBit != 0 {
		px := toRGBA(c.clearColor)
		for y := 0; y < c.height; y++ {
			for x := 0; x < c.width; x++ {
				c.color.SetRGBA(x, y, px)
			}
		}
	}
	if mask&gfx.DepthBufferBit != 0 {
		for i := range c.depth {
			c.depth[i] = c.clearDepth
		}
	}
}

func (c *Context) Enable(capability gfx.Capability) { c.setCap(capability, true) }

func (c *Context) Disable(capability gfx.Capability) { c.setCap(capability, false) }

func (c *Context) setCap(capability gfx.Capability, on bool) {
	switch capability {
	case gfx.DepthTest:
		c.depthTest = on
	case gfx.CullFace, gfx.Blend:
		// accepted, not implemented
	default:
		c.setError(gfx.InvalidEnum)
	}
}

func (c *Context) DepthFunc(f gfx.DepthFunc) {
	switch f {
	case gfx.Never, gfx.Less, gfx.Equal, gfx.LEqual, gfx.Always:
		c.depthFunc = f
	default:
		c.setError(gfx.InvalidEnum)
	}
}

func (c *Context) Viewport(x, y, width, height int) {
	if width < 0 || height < 0 {
		c.setError(gfx.InvalidValue)
		return
	}
	c.viewport = image.Rect(x, y, x+width, y+height)
}

func (c *Context) Flush() { c.stats.Flushes++ }

func (c *Context) ReadPixels(x, y, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for j := 0; j < height; j++ {
		gy := y + j
		if gy < 0 || gy >= c.height {
			continue
		}
		for i := 0; i < width; i++ {
			gx := x + i
			if gx < 0 || gx >= c.width {
				continue
			}
			out.SetRGBA(i, height-1-j, c.color.RGBAAt(gx, c.height-1-gy))
		}
	}
	return out
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func toRGBA(v [4]float32) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(v[0])*255 + 0.5),
		G: uint8(clamp01(v[1])*255 + 0.5),
		B: uint8(clamp01(v[2])*255 + 0.5),
		A: uint8(clamp01(v[3])*255 + 0.5),
	}
}
