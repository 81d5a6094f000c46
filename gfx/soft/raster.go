package soft

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paperboard/example/gfx"
)

// vertex is the output of the vertex stage.
type vertex struct {
	clip  mgl32.Vec4
	color mgl32.Vec4
}

// window is a vertex after perspective divide and viewport mapping.
type window struct {
	x, y, z float32
	invW    float32
	color   mgl32.Vec4
}

func (c *Context) DrawArrays(mode gfx.Mode, first, count int) {
	if first < 0 || count < 0 {
		c.setError(gfx.InvalidValue)
		return
	}
	indices := make([]int, count)
	for i := range indices {
		indices[i] = first + i
	}
	c.draw(mode, indices)
}

func (c *Context) DrawElements(mode gfx.Mode, count, offset int) {
	if count < 0 || offset < 0 || offset%2 != 0 {
		c.setError(gfx.InvalidValue)
		return
	}
	ibo := c.bound(gfx.ElementArrayBuffer)
	if ibo == nil {
		return
	}
	start := offset / 2
	if start+count > len(ibo.shorts) {
		c.setError(gfx.InvalidOperation)
		return
	}
	indices := make([]int, count)
	for i := range indices {
		indices[i] = int(ibo.shorts[start+i])
	}
	c.draw(mode, indices)
}

func (c *Context) draw(mode gfx.Mode, indices []int) {
	prog, ok := c.programs[c.current]
	if !ok || !prog.linked {
		c.setError(gfx.InvalidOperation)
		return
	}

	var tris [][3]int
	switch mode {
	case gfx.Triangles:
		for i := 0; i+2 < len(indices); i += 3 {
			tris = append(tris, [3]int{indices[i], indices[i+1], indices[i+2]})
		}
	case gfx.TriangleStrip:
		for i := 0; i+2 < len(indices); i++ {
			if i%2 == 0 {
				tris = append(tris, [3]int{indices[i], indices[i+1], indices[i+2]})
			} else {
				tris = append(tris, [3]int{indices[i+1], indices[i], indices[i+2]})
			}
		}
	case gfx.Points, gfx.Lines:
		// accepted, nothing is rasterized
	default:
		c.setError(gfx.InvalidEnum)
		return
	}

	shaded := make(map[int]vertex, len(indices))
	for _, idx := range indices {
		if _, done := shaded[idx]; done {
			continue
		}
		v, ok := c.shade(prog, idx)
		if !ok {
			c.setError(gfx.InvalidOperation)
			return
		}
		shaded[idx] = v
	}

	c.stats.DrawCalls++
	for _, t := range tris {
		c.stats.Triangles++
		c.rasterize(shaded[t[0]], shaded[t[1]], shaded[t[2]])
	}
}

// fetch reads the components of one vertex for an attribute, filling the
// missing ones with (0, 0, 0, 1).
func (c *Context) fetch(prog *programObject, name string, idx int) (mgl32.Vec4, bool) {
	out := mgl32.Vec4{0, 0, 0, 1}
	loc := -1
	for i, d := range prog.attribs {
		if d.name == name {
			loc = i
			break
		}
	}
	if loc < 0 || loc >= maxVertexAttribs {
		return out, false
	}
	p := c.pointers[loc]
	if !p.enabled {
		// a disabled array supplies the default constant attribute
		return out, true
	}
	buf, ok := c.buffers[p.buffer]
	if !ok {
		return out, false
	}
	step := p.size
	if p.stride > 0 {
		step = p.stride / bytesFloat32
	}
	base := p.offset/bytesFloat32 + idx*step
	if base < 0 || base+p.size > len(buf.floats) {
		return out, false
	}
	for i := 0; i < p.size; i++ {
		out[i] = buf.floats[base+i]
	}
	return out, true
}

const bytesFloat32 = 4

func (c *Context) shade(prog *programObject, idx int) (vertex, bool) {
	pos := prog.vertex.position
	p, ok := c.fetch(prog, pos.attrib, idx)
	if !ok {
		return vertex{}, false
	}
	if pos.widen {
		p[3] = pos.w
	}
	for i := len(pos.matrices) - 1; i >= 0; i-- {
		loc := -1
		for j, d := range prog.uniforms {
			if d.name == pos.matrices[i] {
				loc = j
				break
			}
		}
		m, set := prog.values[gfx.Uniform(loc)]
		if !set {
			// uniforms start out zeroed
			m = mgl32.Mat4{}
		}
		p = m.Mul4x1(p)
	}

	col := mgl32.Vec4{1, 1, 1, 1}
	if fc := prog.fragment.color; fc != nil {
		if fc.varying == "" {
			col = mgl32.Vec4(fc.constant)
		} else if attrib, ok := prog.vertex.varyings[fc.varying]; ok {
			col, ok = c.fetch(prog, attrib, idx)
			if !ok {
				return vertex{}, false
			}
		}
	}
	return vertex{clip: p, color: col}, true
}

func (c *Context) toWindow(v vertex) (window, bool) {
	w := v.clip[3]
	if w <= 0 {
		return window{}, false
	}
	ndcX, ndcY, ndcZ := v.clip[0]/w, v.clip[1]/w, v.clip[2]/w
	vx, vy := float32(c.viewport.Min.X), float32(c.viewport.Min.Y)
	vw, vh := float32(c.viewport.Dx()), float32(c.viewport.Dy())
	return window{
		x:     vx + (ndcX+1)*0.5*vw,
		y:     vy + (ndcY+1)*0.5*vh,
		z:     (ndcZ + 1) * 0.5,
		invW:  1 / w,
		color: v.color,
	}, true
}

func edge(a, b window, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// rasterize fills the triangle in window space. Coordinates follow the GL
// convention, y grows upwards from the bottom row.
func (c *Context) rasterize(v0, v1, v2 vertex) {
	a, ok0 := c.toWindow(v0)
	b, ok1 := c.toWindow(v1)
	d, ok2 := c.toWindow(v2)
	if !ok0 || !ok1 || !ok2 {
		return
	}
	area := edge(a, b, d.x, d.y)
	if area == 0 {
		return
	}

	minX := int(math.Floor(float64(min3(a.x, b.x, d.x))))
	maxX := int(math.Ceil(float64(max3(a.x, b.x, d.x))))
	minY := int(math.Floor(float64(min3(a.y, b.y, d.y))))
	maxY := int(math.Ceil(float64(max3(a.y, b.y, d.y))))
	bounds := c.viewport.Intersect(c.color.Rect)
	if bounds.Empty() {
		return
	}
	minX, maxX = clampInt(minX, bounds.Min.X, bounds.Max.X-1), clampInt(maxX, bounds.Min.X, bounds.Max.X-1)
	minY, maxY = clampInt(minY, bounds.Min.Y, bounds.Max.Y-1), clampInt(maxY, bounds.Min.Y, bounds.Max.Y-1)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(b, d, px, py)
			w1 := edge(d, a, px, py)
			w2 := edge(a, b, px, py)
			if area < 0 {
				w0, w1, w2 = -w0, -w1, -w2
			}
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			l0, l1, l2 := w0/abs(area), w1/abs(area), w2/abs(area)

			z := l0*a.z + l1*b.z + l2*d.z
			if z < 0 || z > 1 {
				continue
			}
			i := (c.height-1-y)*c.width + x
			if c.depthTest && !c.passDepth(z, c.depth[i]) {
				continue
			}

			q0, q1, q2 := l0*a.invW, l1*b.invW, l2*d.invW
			norm := q0 + q1 + q2
			col := a.color.Mul(q0 / norm).Add(b.color.Mul(q1 / norm)).Add(d.color.Mul(q2 / norm))

			c.color.SetRGBA(x, c.height-1-y, toRGBA([4]float32(col)))
			if c.depthTest {
				c.depth[i] = z
			}
			c.stats.Fragments++
		}
	}
}

func (c *Context) passDepth(z, stored float32) bool {
	switch c.depthFunc {
	case gfx.Never:
		return false
	case gfx.Less:
		return z < stored
	case gfx.Equal:
		return z == stored
	case gfx.LEqual:
		return z <= stored
	}
	return true
}

func min3(a, b, c float32) float32 {
	return float32(math.Min(float64(a), math.Min(float64(b), float64(c))))
}

func max3(a, b, c float32) float32 {
	return float32(math.Max(float64(a), math.Max(float64(b), float64(c))))
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
