// Package picking provides ray casting and screen projection utilities.
package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// ScreenToNDC converts pixel coordinates within a w x h surface to
// normalized device coordinates, Y pointing up.
func ScreenToNDC(px, py float32, w, h int) (x, y float32) {
	fw := float32(max(w, 1))
	fh := float32(max(h, 1))
	return px/fw*2 - 1, -(py/fh*2 - 1)
}

// NDCToRay unprojects an NDC point through the inverse view-projection
// matrix into a world-space ray.
func NDCToRay(ndcX, ndcY float32, invViewProj mgl32.Mat4) Ray {
	nearWorld := unproject(mgl32.Vec4{ndcX, ndcY, -1, 1}, invViewProj)
	farWorld := unproject(mgl32.Vec4{ndcX, ndcY, 1, 1}, invViewProj)

	dir := farWorld.Sub(nearWorld)
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	return Ray{Origin: nearWorld, Direction: dir}
}

// ScreenToRay converts screen coordinates to a world-space ray.
func ScreenToRay(px, py float32, w, h int, viewProj mgl32.Mat4) Ray {
	x, y := ScreenToNDC(px, py, w, h)
	return NDCToRay(x, y, viewProj.Inv())
}

func unproject(p mgl32.Vec4, inv mgl32.Mat4) mgl32.Vec3 {
	v := inv.Mul4x1(p)
	if v[3] != 0 {
		return v.Vec3().Mul(1 / v[3])
	}
	return v.Vec3()
}

// IntersectSphere returns the distance along the ray to the first surface
// hit of the sphere. A ray starting inside the sphere hits its exit point.
func (r Ray) IntersectSphere(center mgl32.Vec3, radius float32) (t float32, hit bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	s := float32(gomath.Sqrt(float64(disc)))
	t0, t1 := -b-s, -b+s
	switch {
	case t0 >= 0:
		return t0, true
	case t1 >= 0:
		return t1, true
	}
	return 0, false
}

// Target is something a ray can hit.
type Target struct {
	Center mgl32.Vec3
	Radius float32
}

// Nearest returns the index of the target hit closest along the ray, or -1.
func (r Ray) Nearest(targets []Target) (index int, t float32) {
	index = -1
	for i, tg := range targets {
		d, ok := r.IntersectSphere(tg.Center, tg.Radius)
		if ok && (index < 0 || d < t) {
			index, t = i, d
		}
	}
	return index, t
}

// ProjectToScreen maps a world position through viewProj to pixel
// coordinates within a w x h surface, origin top-left. visible is false when
// the point is behind the camera.
func ProjectToScreen(world mgl32.Vec3, viewProj mgl32.Mat4, w, h int) (x, y float32, visible bool) {
	clip := viewProj.Mul4x1(world.Vec4(1))
	if clip[3] == 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	x = (ndc[0]*0.5 + 0.5) * float32(w)
	y = (-ndc[1]*0.5 + 0.5) * float32(h)
	return x, y, clip[3] > 0
}
