package gfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Object Space -> Eye/World Space -> Clip Space -> NDC Space -> Viewport/Window Space
//
// Transform 1: [ Object Coordinates ] transformed by [ Model ] matrix produces [ World Coordinates ]
// Transform 2: [ World Coordinates ] transformed by [ View ] matrix produces [ Eye Coordinates ]
// Transform 3: [ Eye Coordinates ] transformed by [ Projection ] matrix produces [ Clip Coordinates ]
// Transform 4: [ Clip Coordinates ] X, Y, Z divided by W produces [ Normalized Device Coordinates ]
// Transform 5: [ NDC ] scaled and translated by [ viewport ] parameters produces [ Window Coordinates ]
//
// https://learnopengl.com/Getting-started/Coordinate-Systems
// https://learnopengl.com/Getting-started/Camera

// Camera holds the fixed parameters of the view and projection matrices.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3

	Fov  float32 // vertical field of view in degrees
	Near float32
	Far  float32

	// OrthoSize is the half height of an orthographic view volume. When it
	// is positive Projection ignores Fov.
	OrthoSize float32
}

// View transforms world coordinates into eye coordinates.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// Projection transforms eye coordinates into clip coordinates.
func (c Camera) Projection(aspect float32) mgl32.Mat4 {
	if c.OrthoSize > 0 {
		h := c.OrthoSize
		w := h * aspect
		return mgl32.Ortho(-w, w, -h, h, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

// ViewProjection returns projection·view.
func (c Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}

// MVP composes (projection·view)·model.
func MVP(viewProjection, model mgl32.Mat4) mgl32.Mat4 {
	return viewProjection.Mul4(model)
}
