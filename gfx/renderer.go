package gfx

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// VertexAttrib names a shader attribute and the data fed to it.
type VertexAttrib struct {
	Name   string
	Stride int // components per vertex
	Data   []float32
}

// Renderer is the render context of one surface: the graphics context,
// the program built for it, the buffers it owns and the surface size.
// It is created at startup and released when the surface goes away.
//
// A renderer whose program failed to build stays unusable. Its draw calls
// are skipped rather than issued against a broken program.
type Renderer struct {
	ctx Context
	log *zap.Logger

	program  Program
	uniforms map[string]Uniform
	usable   bool

	attribs    []VertexAttrib
	buffers    []Buffer
	ibo        Buffer
	indexCount int

	width, height int
	skipped       int
}

// NewRenderer wraps ctx for a surface of the given size in pixels.
func NewRenderer(ctx Context, log *zap.Logger, width, height int) *Renderer {
	r := &Renderer{
		ctx:      ctx,
		log:      orNop(log),
		uniforms: make(map[string]Uniform),
	}
	r.Resize(width, height)
	return r
}

// Context returns the underlying graphics context.
func (r *Renderer) Context() Context { return r.ctx }

// Program returns the current program, zero when none built.
func (r *Renderer) Program() Program { return r.program }

// Usable reports whether a program is linked and in use.
func (r *Renderer) Usable() bool { return r.usable }

// Skipped counts the draw calls dropped because the renderer was unusable.
func (r *Renderer) Skipped() int { return r.skipped }

// Size returns the surface size in pixels.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// Aspect returns width/height of the surface.
func (r *Renderer) Aspect() float32 {
	if r.height == 0 {
		return 1
	}
	return float32(r.width) / float32(r.height)
}

// Resize records a new surface size and updates the viewport.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	r.ctx.Viewport(0, 0, width, height)
}

// Init builds the program from the two sources and makes it current.
// On failure the renderer is left unusable and the error is returned; the
// diagnostics have already been logged.
func (r *Renderer) Init(vertexSource, fragmentSource string) error {
	program, err := NewProgram(r.ctx, r.log, vertexSource, fragmentSource)
	if err != nil {
		r.usable = false
		r.program = 0
		return err
	}
	r.useProgram(program)
	return nil
}

func (r *Renderer) useProgram(program Program) {
	r.program = program
	r.usable = true
	r.uniforms = make(map[string]Uniform)
	r.ctx.UseProgram(program)
}

// Reload swaps in a program built from new sources and rebinds the
// attributes. When the new sources fail the previous program stays.
func (r *Renderer) Reload(vertexSource, fragmentSource string) error {
	program, err := NewProgram(r.ctx, r.log, vertexSource, fragmentSource)
	if err != nil {
		return errors.Wrap(err, "reload")
	}
	if r.program != 0 {
		r.ctx.DeleteProgram(r.program)
	}
	r.useProgram(program)
	r.log.Info("program reloaded", zap.Uint32("program", uint32(program)))

	if len(r.attribs) > 0 {
		return r.SetAttributes(r.attribs...)
	}
	return nil
}

// Attrib looks up an attribute of the current program.
func (r *Renderer) Attrib(name string) Attrib {
	return AttribLocation(r.ctx, r.program, name)
}

// Uniform looks up a uniform of the current program, caching the result.
func (r *Renderer) Uniform(name string) Uniform {
	if u, ok := r.uniforms[name]; ok {
		return u
	}
	u := UniformLocation(r.ctx, r.program, name)
	r.uniforms[name] = u
	return u
}

// SetAttributes uploads and binds one buffer per attribute, replacing any
// buffers from an earlier call.
func (r *Renderer) SetAttributes(attribs ...VertexAttrib) error {
	infos := make([]AttribInfo, len(attribs))
	for i, a := range attribs {
		infos[i] = AttribInfo{Location: r.Attrib(a.Name), Stride: a.Stride, Data: a.Data}
	}
	buffers, err := SetAttributes(r.ctx, r.log, infos)
	if err != nil {
		return err
	}
	r.deleteBuffers()
	r.attribs = attribs
	r.buffers = buffers
	return nil
}

// SetIndices uploads the index list and leaves it bound for DrawElements.
func (r *Renderer) SetIndices(indices []uint16) {
	if r.ibo != 0 {
		r.ctx.DeleteBuffer(r.ibo)
	}
	r.ibo = NewIndexBuffer(r.ctx, indices)
	r.indexCount = len(indices)
	r.ctx.BindBuffer(ElementArrayBuffer, r.ibo)
}

// Clear resets the color buffer to c and the depth buffer to 1.
func (r *Renderer) Clear(c mgl32.Vec4) {
	r.ctx.ClearColor(c[0], c[1], c[2], c[3])
	r.ctx.ClearDepth(1)
	r.ctx.Clear(ColorBufferBit | DepthBufferBit)
}

// EnableDepth turns on the depth test with a less-or-equal comparison.
func (r *Renderer) EnableDepth() {
	r.ctx.Enable(DepthTest)
	r.ctx.DepthFunc(LEqual)
}

// SetMatrix uploads m to the named uniform of the current program. Absent
// names are ignored, as the graphics API does.
func (r *Renderer) SetMatrix(name string, m mgl32.Mat4) {
	if !r.usable {
		return
	}
	r.ctx.UniformMatrix4fv(r.Uniform(name), m)
}

// DrawArrays draws count vertices as triangles.
func (r *Renderer) DrawArrays(count int) error {
	if !r.usable {
		r.skipped++
		return ErrUnusable
	}
	r.ctx.DrawArrays(Triangles, 0, count)
	return nil
}

// DrawElements draws the uploaded index list as triangles.
func (r *Renderer) DrawElements() error {
	if !r.usable {
		r.skipped++
		return ErrUnusable
	}
	r.ctx.DrawElements(Triangles, r.indexCount, 0)
	return nil
}

// Flush pushes queued commands and reports accumulated GL errors.
func (r *Renderer) Flush() error {
	r.ctx.Flush()
	return r.CheckError()
}

// CheckError drains the context's error flags, logging any that were set.
func (r *Renderer) CheckError() error {
	if err := CheckError(r.ctx); err != nil {
		r.log.Warn("graphics errors after frame", zap.Error(err))
		return err
	}
	return nil
}

func (r *Renderer) deleteBuffers() {
	for _, b := range r.buffers {
		r.ctx.DeleteBuffer(b)
	}
	r.buffers = nil
}

// Release deletes the buffers and program owned by the renderer.
func (r *Renderer) Release() {
	r.deleteBuffers()
	if r.ibo != 0 {
		r.ctx.DeleteBuffer(r.ibo)
		r.ibo = 0
	}
	if r.program != 0 {
		r.ctx.UseProgram(0)
		r.ctx.DeleteProgram(r.program)
		r.program = 0
	}
	r.usable = false
}
