// Package camera provides the perspective camera, orbit controls and
// model framing used by the product viewer.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Perspective is a pinhole camera looking from Position at Target.
type Perspective struct {
	FovY   float32 // vertical field of view, degrees
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
}

// NewPerspective creates a camera at (0, 1, 5) looking at the origin.
func NewPerspective(fovY, near, far float32) *Perspective {
	return &Perspective{
		FovY:     fovY,
		Aspect:   1,
		Near:     near,
		Far:      far,
		Position: mgl32.Vec3{0, 1, 5},
		Up:       mgl32.Vec3{0, 1, 0},
	}
}

// SetViewport updates the aspect ratio for a surface of the given size.
// Sizes below one pixel are clamped so the aspect always stays finite.
// It returns the clamped size.
func (c *Perspective) SetViewport(width, height int) (int, int) {
	width = max(width, 1)
	height = max(height, 1)
	c.Aspect = float32(width) / float32(height)
	return width, height
}

// ViewMatrix returns the world-to-camera transform.
func (c *Perspective) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the camera-to-clip transform.
func (c *Perspective) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Perspective) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}
