package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/waks-viewer/internal/engine/scene"
)

// Scene lighting.
var (
	AmbientLight = Light{Color: mgl32.Vec3{1, 1, 1}, Intensity: 0.7}
	SunLight     = Light{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1.2, Position: mgl32.Vec3{5, 10, 7.5}}
)

// Light is a white ambient or directional light. Directional lights shine
// from Position towards the origin.
type Light struct {
	Color     mgl32.Vec3
	Intensity float32
	Position  mgl32.Vec3
}

// DrawCommand is one mesh to draw.
type DrawCommand struct {
	Geometry *scene.Geometry
	Material *scene.Material
	World    mgl32.Mat4
}

// Frame is everything the renderer needs for one frame.
type Frame struct {
	Number        uint64
	Width, Height int

	View       mgl32.Mat4
	Projection mgl32.Mat4
	CameraPos  mgl32.Vec3

	Background  mgl32.Vec3
	Ambient     Light
	Directional Light

	Draws []DrawCommand

	// Popup is non-nil exactly when a hotspot is selected.
	Popup *Popup
}

// Tick advances the viewer by one frame and returns what to draw:
// attach a resolved model, ease the orbit controls, spin the model,
// re-project the selected hotspot, then collect draw commands.
func (v *Viewer) Tick() Frame {
	v.poll()
	v.controls.Update()
	if v.Loaded() {
		v.graph.RotateY(v.model, v.opts.SpinPerFrame)
	}
	v.updatePopup()

	v.frameNum++
	f := Frame{
		Number:      v.frameNum,
		Width:       v.width,
		Height:      v.height,
		View:        v.cam.ViewMatrix(),
		Projection:  v.cam.ProjectionMatrix(),
		CameraPos:   v.cam.Position,
		Background:  v.opts.Background,
		Ambient:     AmbientLight,
		Directional: SunLight,
		Popup:       v.Popup(),
	}
	v.graph.Traverse(v.graph.Root(), func(_ scene.NodeID, n *scene.Node, world mgl32.Mat4) bool {
		if n.Geometry != nil {
			f.Draws = append(f.Draws, DrawCommand{Geometry: n.Geometry, Material: n.Material, World: world})
		}
		return true
	})
	return f
}
