package gfx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Model builds an object's model matrix. Every step post-multiplies, so
// the last step is the first one applied to a vertex:
//
//	NewModel().Translate(t).Rotate(a, axis).Scale(s) == T·R·S
type Model struct {
	m mgl32.Mat4
}

// NewModel starts from the identity.
func NewModel() Model {
	return Model{m: mgl32.Ident4()}
}

func (m Model) Translate(v mgl32.Vec3) Model {
	m.m = m.m.Mul4(mgl32.Translate3D(v[0], v[1], v[2]))
	return m
}

// Rotate turns by angle radians about axis. A zero axis leaves m alone.
func (m Model) Rotate(angle float32, axis mgl32.Vec3) Model {
	if axis.Len() == 0 {
		return m
	}
	m.m = m.m.Mul4(mgl32.HomogRotate3D(angle, axis.Normalize()))
	return m
}

func (m Model) Scale(v mgl32.Vec3) Model {
	m.m = m.m.Mul4(mgl32.Scale3D(v[0], v[1], v[2]))
	return m
}

func (m Model) Mat4() mgl32.Mat4 {
	return m.m
}

// DefaultWrap is the number of ticks in one full turn.
const DefaultWrap = 360

// Angle converts a tick count into radians, wrapping every wrap ticks so
// that Angle(n, wrap) == Angle(n+wrap, wrap).
func Angle(count, wrap int) float32 {
	if wrap <= 0 {
		wrap = DefaultWrap
	}
	n := count % wrap
	if n < 0 {
		n += wrap
	}
	return float32(float64(n) * 2 * math.Pi / float64(wrap))
}
