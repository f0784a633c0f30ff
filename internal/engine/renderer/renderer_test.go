package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/waks-viewer/internal/engine/scene"
)

func TestInterleave(t *testing.T) {
	g := scene.NewGeometry(
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[]mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		[]uint32{0, 1, 2},
	)
	got := interleave(g)
	want := []float32{
		0, 0, 0, 0, 0, 1,
		1, 0, 0, 0, 0, 1,
		0, 1, 0, 0, 0, 1,
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInterleaveGeneratedNormals(t *testing.T) {
	g := scene.NewSphere(1, 8, 6)
	got := interleave(g)
	if len(got) != len(g.Positions)*vertexStride {
		t.Fatalf("len = %d, want %d", len(got), len(g.Positions)*vertexStride)
	}
	for i := 0; i < len(got); i += vertexStride {
		n := mgl32.Vec3{got[i+3], got[i+4], got[i+5]}
		if l := n.Len(); l < 0.99 || l > 1.01 {
			t.Fatalf("vertex %d normal length %v", i/vertexStride, l)
		}
	}
}

func TestReleaseUnknownGeometryIsNoop(t *testing.T) {
	r := &Renderer{meshes: map[*scene.Geometry]*gpuMesh{}}
	if err := r.ReleaseGeometry(scene.NewSphere(1, 4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := r.ReleaseMaterial(&scene.Material{}); err != nil {
		t.Fatal(err)
	}
}
