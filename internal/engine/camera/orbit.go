package camera

import (
	gomath "math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// springFPS is the step the damping springs are tuned for; Update is
	// called once per rendered frame.
	springFPS = 60

	minPolar    = 0.01
	maxPolar    = gomath.Pi - 0.01
	minDistance = 1e-3
)

// spherical is a point around the orbit target.
// Polar is measured from +Y, azimuth around +Y starting at +Z.
type spherical struct {
	Radius  float64
	Polar   float64
	Azimuth float64
}

func sphericalFrom(offset mgl32.Vec3) spherical {
	r := float64(offset.Len())
	if r == 0 {
		return spherical{Radius: minDistance, Polar: gomath.Pi / 2}
	}
	return spherical{
		Radius:  r,
		Polar:   gomath.Acos(clamp(float64(offset[1])/r, -1, 1)),
		Azimuth: gomath.Atan2(float64(offset[0]), float64(offset[2])),
	}
}

func (s spherical) offset() mgl32.Vec3 {
	sinP := gomath.Sin(s.Polar)
	return mgl32.Vec3{
		float32(s.Radius * sinP * gomath.Sin(s.Azimuth)),
		float32(s.Radius * gomath.Cos(s.Polar)),
		float32(s.Radius * sinP * gomath.Cos(s.Azimuth)),
	}
}

// axis is one damped coordinate: the spring pulls Pos towards Goal.
type axis struct {
	Pos, Vel, Goal float64
}

func (a *axis) snap(v float64) {
	a.Pos, a.Vel, a.Goal = v, 0, v
}

func (a *axis) step(s *harmonica.Spring, damped bool) {
	if !damped {
		a.Pos, a.Vel = a.Goal, 0
		return
	}
	a.Pos, a.Vel = s.Update(a.Pos, a.Vel, a.Goal)
}

// OrbitControls rotates and zooms a camera around a target point.
// Pointer input moves goals; Update eases the camera towards them.
type OrbitControls struct {
	camera *Perspective
	Target mgl32.Vec3

	RotateSpeed float32
	ZoomSpeed   float32

	radius, polar, azimuth axis

	spring   harmonica.Spring
	damped   bool
	disposed bool
}

// NewOrbitControls attaches controls to cam. damping is the fraction of the
// remaining motion applied per frame at 60 fps (0 disables easing).
func NewOrbitControls(cam *Perspective, damping float32) *OrbitControls {
	c := &OrbitControls{
		camera:      cam,
		Target:      cam.Target,
		RotateSpeed: 1,
		ZoomSpeed:   1,
	}
	c.SetDamping(damping)
	c.Sync()
	return c
}

// SetDamping converts a per-frame damping factor into a critically damped spring.
func (c *OrbitControls) SetDamping(factor float32) {
	if factor <= 0 || factor >= 1 {
		c.damped = false
		return
	}
	// Per-frame decay (1-factor) corresponds to rate -ln(1-factor)*fps.
	freq := -gomath.Log(1-float64(factor)) * springFPS
	c.spring = harmonica.NewSpring(harmonica.FPS(springFPS), freq, 1.0)
	c.damped = true
}

// Sync reads the camera position back into the controls without easing.
func (c *OrbitControls) Sync() {
	s := sphericalFrom(c.camera.Position.Sub(c.Target))
	c.radius.snap(s.Radius)
	c.polar.snap(clamp(s.Polar, minPolar, maxPolar))
	c.azimuth.snap(s.Azimuth)
	c.apply()
}

// Rotate turns the goal orientation by a pointer drag of (dx, dy) pixels on
// a surface of the given height. A full-height drag is one full turn.
func (c *OrbitControls) Rotate(dx, dy float32, surfaceHeight int) {
	if c.disposed {
		return
	}
	h := float64(max(surfaceHeight, 1))
	c.azimuth.Goal -= 2 * gomath.Pi * float64(dx*c.RotateSpeed) / h
	c.polar.Goal = clamp(c.polar.Goal-2*gomath.Pi*float64(dy*c.RotateSpeed)/h, minPolar, maxPolar)
}

// Zoom scales the goal distance. Positive steps move the camera closer.
func (c *OrbitControls) Zoom(steps float32) {
	if c.disposed {
		return
	}
	scale := gomath.Pow(0.95, float64(steps*c.ZoomSpeed))
	c.radius.Goal = max(c.radius.Goal*scale, minDistance)
}

// Update advances damping by one frame and moves the camera.
func (c *OrbitControls) Update() {
	if c.disposed {
		return
	}
	c.radius.step(&c.spring, c.damped)
	c.polar.step(&c.spring, c.damped)
	c.azimuth.step(&c.spring, c.damped)
	c.apply()
}

// Settled reports whether the camera has reached its goal.
func (c *OrbitControls) Settled() bool {
	const tol = 1e-4
	for _, a := range []axis{c.radius, c.polar, c.azimuth} {
		if gomath.Abs(a.Goal-a.Pos) > tol {
			return false
		}
	}
	return true
}

// Dispose detaches the controls; further input and updates are ignored.
func (c *OrbitControls) Dispose() {
	c.disposed = true
}

// Disposed reports whether Dispose has been called.
func (c *OrbitControls) Disposed() bool { return c.disposed }

func (c *OrbitControls) apply() {
	s := spherical{
		Radius:  max(c.radius.Pos, minDistance),
		Polar:   clamp(c.polar.Pos, minPolar, maxPolar),
		Azimuth: c.azimuth.Pos,
	}
	c.camera.Target = c.Target
	c.camera.Position = c.Target.Add(s.offset())
}

func clamp(v, lo, hi float64) float64 {
	return gomath.Max(lo, gomath.Min(hi, v))
}
