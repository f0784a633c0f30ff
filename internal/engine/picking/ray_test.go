package picking

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testViewProj(w, h int) mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(50), float32(w)/float32(h), 0.1, 1000)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

func TestScreenToNDC(t *testing.T) {
	tests := []struct {
		px, py float32
		wantX  float32
		wantY  float32
	}{
		{0, 0, -1, 1},
		{800, 600, 1, -1},
		{400, 300, 0, 0},
		{200, 450, -0.5, -0.5},
	}
	for _, tt := range tests {
		x, y := ScreenToNDC(tt.px, tt.py, 800, 600)
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("ScreenToNDC(%v, %v) = (%v, %v), want (%v, %v)", tt.px, tt.py, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestCenterRayLooksDownAxis(t *testing.T) {
	ray := ScreenToRay(400, 300, 800, 600, testViewProj(800, 600))

	if !ray.Direction.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-4) {
		t.Errorf("direction = %v, want (0, 0, -1)", ray.Direction)
	}
	if gomath.Abs(float64(ray.Origin[2]-9.9)) > 1e-3 {
		t.Errorf("origin should be on the near plane, got %v", ray.Origin)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	vp := testViewProj(800, 600)
	points := []mgl32.Vec3{{0, 0, 0}, {1, 0.5, 0}, {-2, 1, 1.5}, {0.3, -0.8, -2}}

	for _, p := range points {
		x, y, visible := ProjectToScreen(p, vp, 800, 600)
		if !visible {
			t.Fatalf("%v should be visible", p)
		}
		ray := ScreenToRay(x, y, 800, 600, vp)
		// The ray must pass through p.
		toP := p.Sub(ray.Origin)
		along := toP.Dot(ray.Direction)
		miss := toP.Sub(ray.Direction.Mul(along)).Len()
		if miss > 1e-3 {
			t.Errorf("ray through projection of %v misses it by %v", p, miss)
		}
	}
}

func TestProjectCenter(t *testing.T) {
	x, y, visible := ProjectToScreen(mgl32.Vec3{}, testViewProj(800, 600), 800, 600)
	if !visible || gomath.Abs(float64(x-400)) > 1e-3 || gomath.Abs(float64(y-300)) > 1e-3 {
		t.Errorf("origin projects to (%v, %v, %v), want (400, 300, true)", x, y, visible)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	_, _, visible := ProjectToScreen(mgl32.Vec3{0, 0, 20}, testViewProj(800, 600), 800, 600)
	if visible {
		t.Error("point behind the camera should not be visible")
	}
}

func TestIntersectSphere(t *testing.T) {
	ray := Ray{Origin: mgl32.Vec3{0, 0, 10}, Direction: mgl32.Vec3{0, 0, -1}}

	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		wantT  float32
		hit    bool
	}{
		{"ahead", mgl32.Vec3{0, 0, 0}, 1, 9, true},
		{"grazing", mgl32.Vec3{1, 0, 0}, 1, 10, true},
		{"beside", mgl32.Vec3{3, 0, 0}, 1, 0, false},
		{"behind", mgl32.Vec3{0, 0, 20}, 1, 0, false},
		{"inside", mgl32.Vec3{0, 0, 10}, 2, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := ray.IntersectSphere(tt.center, tt.radius)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && gomath.Abs(float64(got-tt.wantT)) > 1e-3 {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestNearestPicksClosest(t *testing.T) {
	ray := Ray{Origin: mgl32.Vec3{0, 0, 10}, Direction: mgl32.Vec3{0, 0, -1}}
	targets := []Target{
		{Center: mgl32.Vec3{0, 0, -5}, Radius: 1},
		{Center: mgl32.Vec3{5, 0, 0}, Radius: 1},
		{Center: mgl32.Vec3{0, 0, 2}, Radius: 0.5},
	}

	idx, d := ray.Nearest(targets)
	if idx != 2 {
		t.Fatalf("nearest = %d, want 2", idx)
	}
	if gomath.Abs(float64(d-7.5)) > 1e-3 {
		t.Errorf("distance = %v, want 7.5", d)
	}

	if idx, _ := ray.Nearest(targets[1:2]); idx != -1 {
		t.Errorf("expected miss, got %d", idx)
	}
	if idx, _ := ray.Nearest(nil); idx != -1 {
		t.Errorf("expected miss on empty targets, got %d", idx)
	}
}
