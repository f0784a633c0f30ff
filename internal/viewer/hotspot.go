package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/waks-viewer/internal/engine/scene"
)

// Marker appearance.
const (
	markerSegments  = 16
	markerHeightPct = 0.02
	markerMinRadius = 0.02
)

// markerColor is #ff4444.
var markerColor = mgl32.Vec4{1, 0x44 / 255.0, 0x44 / 255.0, 1}

// HotspotSpec places one marker as a fraction of the model's bounding-box
// extents, relative to the model origin.
type HotspotSpec struct {
	Label    string
	Fraction mgl32.Vec3
}

// DefaultHotspots returns the three markers of the WAKS kiosk model.
func DefaultHotspots() []HotspotSpec {
	return []HotspotSpec{
		{Label: "Display / Screen", Fraction: mgl32.Vec3{0, 0.4, 0}},
		{Label: "Card / Ticket Slot", Fraction: mgl32.Vec3{0.28, -0.18, 0.45}},
		{Label: "Camera / Sensor", Fraction: mgl32.Vec3{-0.28, 0.18, 0.45}},
	}
}

// Hotspot is a registered marker.
type Hotspot struct {
	Label  string
	Node   scene.NodeID
	Local  mgl32.Vec3
	Radius float32
}

// MarkerRadius is the marker size for a model of the given extents.
func MarkerRadius(size mgl32.Vec3) float32 {
	return max(size[1]*markerHeightPct, markerMinRadius)
}

// registerHotspots adds one marker per HotspotSpec as a child of model. All markers
// share a single geometry and material.
func registerHotspots(g *scene.Graph, model scene.NodeID, size mgl32.Vec3, specs []HotspotSpec) []Hotspot {
	radius := MarkerRadius(size)
	geom := scene.NewSphere(radius, markerSegments, markerSegments)
	mat := &scene.Material{Name: "hotspot", Color: markerColor, Unlit: true}

	out := make([]Hotspot, 0, len(specs))
	for _, s := range specs {
		local := mgl32.Vec3{s.Fraction[0] * size[0], s.Fraction[1] * size[1], s.Fraction[2] * size[2]}

		n := scene.NewNode("hotspot:" + s.Label)
		n.Position = local
		n.Geometry = geom
		n.Material = mat
		n.Label = s.Label

		out = append(out, Hotspot{
			Label:  s.Label,
			Node:   g.Add(model, n),
			Local:  local,
			Radius: radius,
		})
	}
	return out
}

// worldRadius scales r by the largest axis scale of m.
func worldRadius(m mgl32.Mat4, r float32) float32 {
	s := max(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
	return r * s
}
