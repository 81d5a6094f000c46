package gfx

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const bytesFloat32 = 4 // a float32 is 4 bytes

// AttribInfo binds a flat float array to an attribute location.
type AttribInfo struct {
	Location Attrib
	Stride   int // components per vertex, e.g. 3 for x,y,z
	Data     []float32
}

// Vertices returns the number of vertices described by Data.
func (a AttribInfo) Vertices() int {
	if a.Stride <= 0 {
		return 0
	}
	return len(a.Data) / a.Stride
}

// NewVertexBuffer uploads data into a fresh array buffer with a static
// usage hint and leaves nothing bound.
func NewVertexBuffer(ctx Context, data []float32) Buffer {
	vbo := ctx.CreateBuffer()
	ctx.BindBuffer(ArrayBuffer, vbo)
	ctx.BufferFloat32(ArrayBuffer, data, StaticDraw)
	ctx.BindBuffer(ArrayBuffer, 0)
	return vbo
}

// NewIndexBuffer uploads 16-bit indices into a fresh element buffer and
// leaves nothing bound.
func NewIndexBuffer(ctx Context, indices []uint16) Buffer {
	ibo := ctx.CreateBuffer()
	ctx.BindBuffer(ElementArrayBuffer, ibo)
	ctx.BufferUint16(ElementArrayBuffer, indices, StaticDraw)
	ctx.BindBuffer(ElementArrayBuffer, 0)
	return ibo
}

// SetAttributes uploads each descriptor into its own buffer, binds it and
// points the attribute at it. Descriptors with an invalid location are
// skipped. The returned buffers belong to the caller.
func SetAttributes(ctx Context, log *zap.Logger, infos []AttribInfo) ([]Buffer, error) {
	for i, info := range infos {
		if info.Stride <= 0 || len(info.Data)%info.Stride != 0 {
			return nil, errors.Wrapf(ErrStride, "attribute %d: %d values, stride %d", i, len(info.Data), info.Stride)
		}
	}

	buffers := make([]Buffer, 0, len(infos))
	for i, info := range infos {
		if !info.Location.Valid() {
			orNop(log).Warn("attribute not active in program, skipping", zap.Int("index", i))
			continue
		}
		vbo := NewVertexBuffer(ctx, info.Data)
		ctx.BindBuffer(ArrayBuffer, vbo)
		ctx.EnableVertexAttribArray(info.Location)
		ctx.VertexAttribPointer(info.Location, info.Stride, false, 0, 0)
		buffers = append(buffers, vbo)
		orNop(log).Debug("attribute bound",
			zap.Int("location", int(info.Location)),
			zap.Int("stride", info.Stride),
			zap.Int("vertices", info.Vertices()))
	}
	ctx.BindBuffer(ArrayBuffer, 0)
	return buffers, nil
}
