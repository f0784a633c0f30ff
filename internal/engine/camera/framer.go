package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Framing offsets, as fractions of the model height.
const (
	targetLift = 0.05
	cameraLift = 0.15
)

// Framing is where Frame put the camera.
type Framing struct {
	Distance float32
	Position mgl32.Vec3
	Target   mgl32.Vec3
}

// FrameDistance returns how far from a centred model of the given size the
// camera must sit so the largest dimension fills the vertical field of view,
// multiplied by margin.
func FrameDistance(size mgl32.Vec3, fovYDegrees, margin float32) float32 {
	maxDim := max(size[0], size[1], size[2])
	fov := float64(mgl32.DegToRad(fovYDegrees))
	d := gomath.Abs(float64(maxDim/2) / gomath.Tan(fov/2))
	return float32(d) * margin
}

// Frame places cam and controls around a model of the given size whose
// bounding-box centre has already been moved to the origin.
func Frame(cam *Perspective, controls *OrbitControls, size mgl32.Vec3, margin float32) Framing {
	f := Framing{
		Distance: FrameDistance(size, cam.FovY, margin),
		Target:   mgl32.Vec3{0, size[1] * targetLift, 0},
	}
	f.Position = mgl32.Vec3{0, size[1] * cameraLift, f.Distance}

	cam.Position = f.Position
	cam.Target = f.Target
	if controls != nil {
		controls.Target = f.Target
		controls.Sync()
	}
	return f
}
