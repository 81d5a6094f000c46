//go:build js && wasm

package webgl

import (
	"encoding/binary"
	"math"
	"syscall/js"
)

// WebGL enums not covered by the gfx types.
const (
	glFloat       = 0x1406
	unsignedByte  = 0x1401
	unsignedShort = 0x1403
	rgba          = 0x1908
	compileStatus = 0x8B81
	linkStatus    = 0x8B82
)

// bytes returns a Uint8Array view of exactly n bytes over a reused buffer.
func (c *Context) bytes(n int) js.Value {
	if c.byteBuf.IsUndefined() || c.byteBuf.Length() < n {
		c.byteBuf = js.Global().Get("Uint8Array").New(n)
	}
	return c.byteBuf.Call("subarray", 0, n)
}

// bufferData accepts any ArrayBufferView, so vertex and index data are
// packed little endian, the byte order of wasm and of every WebGL host.
func (c *Context) upload(raw []byte) js.Value {
	if len(raw) == 0 {
		return js.Global().Get("Uint8Array").New(0)
	}
	view := c.bytes(len(raw))
	js.CopyBytesToJS(view, raw)
	return view
}

func (c *Context) float32Array(data []float32) js.Value {
	raw := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return c.upload(raw)
}

func (c *Context) uint16Array(data []uint16) js.Value {
	raw := make([]byte, len(data)*2)
	for i, v := range data {
		binary.LittleEndian.PutUint16(raw[i*2:], v)
	}
	return c.upload(raw)
}
