package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is an indexed triangle list in the owning node's local space.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32

	bounds Box
	radius float32
}

// NewGeometry builds a geometry and precomputes its bounds.
// Missing normals are generated per vertex from the faces.
func NewGeometry(positions, normals []mgl32.Vec3, indices []uint32) *Geometry {
	g := &Geometry{Positions: positions, Normals: normals, Indices: indices}
	if len(g.Indices) == 0 {
		g.Indices = make([]uint32, len(positions))
		for i := range g.Indices {
			g.Indices[i] = uint32(i)
		}
	}
	if len(g.Normals) != len(g.Positions) {
		g.Normals = computeNormals(g.Positions, g.Indices)
	}

	g.bounds = EmptyBox()
	for _, p := range positions {
		g.bounds = g.bounds.ExpandByPoint(p)
	}
	center := g.bounds.Center()
	for _, p := range positions {
		g.radius = max(g.radius, p.Sub(center).Len())
	}
	return g
}

// Bounds returns the local-space bounding box.
func (g *Geometry) Bounds() Box { return g.bounds }

// BoundingSphere returns the local-space bounding sphere.
func (g *Geometry) BoundingSphere() (center mgl32.Vec3, radius float32) {
	return g.bounds.Center(), g.radius
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int { return len(g.Indices) / 3 }

func computeNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			continue
		}
		n := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	return normals
}

// NewSphere builds a UV sphere centred on the origin.
func NewSphere(radius float32, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	var positions, normals []mgl32.Vec3
	for y := 0; y <= heightSegments; y++ {
		v := float64(y) / float64(heightSegments)
		theta := v * math.Pi
		for x := 0; x <= widthSegments; x++ {
			u := float64(x) / float64(widthSegments)
			phi := u * 2 * math.Pi
			n := mgl32.Vec3{
				float32(-math.Cos(phi) * math.Sin(theta)),
				float32(math.Cos(theta)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			normals = append(normals, n)
			positions = append(positions, n.Mul(radius))
		}
	}

	row := uint32(widthSegments + 1)
	var indices []uint32
	for y := 0; y < heightSegments; y++ {
		for x := 0; x < widthSegments; x++ {
			a := uint32(y)*row + uint32(x+1)
			b := uint32(y)*row + uint32(x)
			c := uint32(y+1)*row + uint32(x)
			d := uint32(y+1)*row + uint32(x+1)
			if y != 0 {
				indices = append(indices, a, b, d)
			}
			if y != heightSegments-1 {
				indices = append(indices, b, c, d)
			}
		}
	}

	return NewGeometry(positions, normals, indices)
}

// Material describes how a geometry is shaded.
type Material struct {
	Name  string
	Color mgl32.Vec4
	Unlit bool // ignore scene lights
}
