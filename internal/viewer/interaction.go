package viewer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/waks-viewer/internal/engine/picking"
)

// Popup is the floating label anchored above the selected hotspot, in
// surface pixels.
type Popup struct {
	X, Y float32
	Text string
	// Visible is false while the marker is behind the camera.
	Visible bool
}

// Selection returns the selected hotspot, if any.
func (v *Viewer) Selection() (Hotspot, bool) {
	if v.selected < 0 || v.selected >= len(v.hotspots) {
		return Hotspot{}, false
	}
	return v.hotspots[v.selected], true
}

// Popup returns the current label, or nil when nothing is selected.
func (v *Viewer) Popup() *Popup {
	if v.popup == nil {
		return nil
	}
	p := *v.popup
	return &p
}

// OnClick selects the nearest hotspot under the pointer, or clears the
// selection when the click hits none.
func (v *Viewer) OnClick(x, y float32) {
	idx := v.Pick(x, y)
	if idx < 0 {
		if v.selected >= 0 {
			v.log.Debug("selection cleared")
		}
		v.clearSelection()
		return
	}

	v.selected = idx
	v.updatePopup()
	v.log.Debug("hotspot selected",
		zap.String("label", v.hotspots[idx].Label),
		zap.Float32("x", x), zap.Float32("y", y))
}

// Pick returns the index of the nearest hotspot along the ray through
// pixel (x, y), or -1. Only hotspot markers are tested.
func (v *Viewer) Pick(x, y float32) int {
	if len(v.hotspots) == 0 {
		return -1
	}
	ray := picking.ScreenToRay(x, y, v.width, v.height, v.cam.ViewProjection())

	targets := make([]picking.Target, len(v.hotspots))
	for i, h := range v.hotspots {
		world := v.graph.World(h.Node)
		targets[i] = picking.Target{
			Center: world.Col(3).Vec3(),
			Radius: worldRadius(world, h.Radius),
		}
	}
	idx, _ := ray.Nearest(targets)
	return idx
}

// OnDrag orbits the camera.
func (v *Viewer) OnDrag(dx, dy float32) {
	v.controls.Rotate(dx, dy, v.height)
}

// OnWheel zooms the camera. Scrolling away from the user zooms in.
func (v *Viewer) OnWheel(steps float32) {
	v.controls.Zoom(steps)
}

// OnResize updates the camera aspect and the surface size. Sizes clamp to 1.
func (v *Viewer) OnResize(width, height int) {
	v.width, v.height = v.cam.SetViewport(width, height)
	if v.popup != nil {
		v.updatePopup()
	}
}

// updatePopup re-projects the selected marker onto the surface.
func (v *Viewer) updatePopup() {
	h, ok := v.Selection()
	if !ok {
		v.popup = nil
		return
	}
	x, y, visible := picking.ProjectToScreen(v.graph.WorldPosition(h.Node), v.cam.ViewProjection(), v.width, v.height)
	v.popup = &Popup{X: x, Y: y, Text: h.Label, Visible: visible}
}

func (v *Viewer) clearSelection() {
	v.selected = -1
	v.popup = nil
}
