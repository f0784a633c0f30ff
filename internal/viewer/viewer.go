// Package viewer implements the kiosk product viewer: it frames a loaded
// model, attaches labelled hotspot markers, spins the model, and answers
// clicks on the markers with a floating label.
//
// A Viewer is single-threaded. The host calls Tick once per frame and
// forwards surface events between ticks on the same goroutine.
package viewer

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/waks-viewer/internal/asset"
	"github.com/Faultbox/waks-viewer/internal/config"
	"github.com/Faultbox/waks-viewer/internal/engine/camera"
	"github.com/Faultbox/waks-viewer/internal/engine/scene"
	"github.com/Faultbox/waks-viewer/internal/logger"
)

// Options tunes a viewer.
type Options struct {
	FOV          float32
	Near, Far    float32
	FrameMargin  float32
	SpinPerFrame float32
	Damping      float32
	Background   mgl32.Vec3
	Hotspots     []HotspotSpec
}

// DefaultOptions returns the stock viewer settings.
func DefaultOptions() Options {
	return Options{
		FOV:          50,
		Near:         0.1,
		Far:          1000,
		FrameMargin:  1.6,
		SpinPerFrame: 0.002,
		Damping:      0.05,
		Background:   mgl32.Vec3{0x0d / 255.0, 0x0d / 255.0, 0x0d / 255.0},
		Hotspots:     DefaultHotspots(),
	}
}

// OptionsFromConfig converts the viewer section of the config.
func OptionsFromConfig(cfg config.ViewerConfig) (Options, error) {
	bg, err := config.ParseHexColor(cfg.Background)
	if err != nil {
		return Options{}, fmt.Errorf("viewer background: %w", err)
	}
	opts := Options{
		FOV:          cfg.FOV,
		Near:         cfg.Near,
		Far:          cfg.Far,
		FrameMargin:  cfg.FrameMargin,
		SpinPerFrame: cfg.SpinPerFrame,
		Damping:      cfg.Damping,
		Background:   bg,
	}
	for _, h := range cfg.Hotspots {
		opts.Hotspots = append(opts.Hotspots, HotspotSpec{Label: h.Label, Fraction: h.Fraction})
	}
	return opts, nil
}

// SurfaceListener receives events from the render surface.
type SurfaceListener interface {
	// OnClick is a press and release without significant movement, in
	// pixels relative to the surface's top-left corner.
	OnClick(x, y float32)
	// OnDrag is pointer movement in pixels while the primary button is held.
	OnDrag(dx, dy float32)
	// OnWheel is a scroll of steps notches; positive scrolls away from the user.
	OnWheel(steps float32)
	// OnResize reports the surface's new content size.
	OnResize(width, height int)
}

// Surface is what the viewer is mounted on.
type Surface interface {
	Size() (width, height int)
	// Observe starts delivering events to l. cancel stops delivery.
	Observe(l SurfaceListener) (cancel func())
}

// ModelSource starts loading the model.
type ModelSource interface {
	Load(ctx context.Context) *asset.Future
}

// Viewer is the state of one mounted viewer.
type Viewer struct {
	opts Options
	log  *zap.Logger

	graph    *scene.Graph
	model    scene.NodeID
	size     mgl32.Vec3
	framing  camera.Framing
	hotspots []Hotspot

	cam      *camera.Perspective
	controls *camera.OrbitControls

	width, height int

	future   *asset.Future
	loadErr  error
	selected int
	popup    *Popup
	frameNum uint64
}

// New creates a viewer sized to width x height. The model arrives later
// through SetPending.
func New(opts Options, width, height int) *Viewer {
	cam := camera.NewPerspective(opts.FOV, opts.Near, opts.Far)
	v := &Viewer{
		opts:     opts,
		log:      logger.Named("viewer"),
		graph:    scene.New(),
		model:    scene.None,
		cam:      cam,
		selected: -1,
	}
	v.controls = camera.NewOrbitControls(cam, opts.Damping)
	v.OnResize(width, height)
	return v
}

// SetPending hands the viewer a load in flight. Tick attaches its model once
// it resolves.
func (v *Viewer) SetPending(f *asset.Future) {
	v.future = f
}

// Loaded reports whether a model is attached.
func (v *Viewer) Loaded() bool { return v.model != scene.None }

// LoadErr returns the error the load failed with, if it did.
func (v *Viewer) LoadErr() error { return v.loadErr }

// Graph returns the scene graph.
func (v *Viewer) Graph() *scene.Graph { return v.graph }

// Model returns the model node, or scene.None.
func (v *Viewer) Model() scene.NodeID { return v.model }

// ModelSize returns the model's bounding-box extents at load time.
func (v *Viewer) ModelSize() mgl32.Vec3 { return v.size }

// Framing returns the camera placement chosen when the model loaded.
func (v *Viewer) Framing() camera.Framing { return v.framing }

// Hotspots returns the registered markers.
func (v *Viewer) Hotspots() []Hotspot { return v.hotspots }

// Camera returns the viewer's camera.
func (v *Viewer) Camera() *camera.Perspective { return v.cam }

// Controls returns the orbit controls.
func (v *Viewer) Controls() *camera.OrbitControls { return v.controls }

// Size returns the current surface size.
func (v *Viewer) Size() (int, int) { return v.width, v.height }

// poll attaches the model once the pending load resolves.
func (v *Viewer) poll() {
	if v.future == nil {
		return
	}
	r, ok := v.future.Poll()
	if !ok {
		return
	}
	v.future = nil

	if r.Err != nil {
		v.loadErr = r.Err
		v.log.Error("model load failed; continuing without a model", zap.Error(r.Err))
		return
	}
	v.attach(r.Model)
}

// attach grafts the decoded model into the scene, centres it, frames the
// camera and registers the hotspots. It runs once per viewer.
//
// The model node sits at the origin and carries the spin; the decoded
// content hangs below it shifted by -center, so the model turns about its
// bounding-box centre and hotspot offsets are relative to that centre.
func (v *Viewer) attach(sub *scene.Graph) {
	if v.Loaded() || sub == nil {
		return
	}
	model := v.graph.Add(v.graph.Root(), scene.NewNode("product"))
	content := v.graph.Graft(model, sub)

	box := v.graph.Bounds(content)
	center := box.Center()
	v.size = box.Size()

	n := v.graph.Node(content)
	n.Position = n.Position.Sub(center)

	v.model = model
	v.framing = camera.Frame(v.cam, v.controls, v.size, v.opts.FrameMargin)
	v.hotspots = registerHotspots(v.graph, model, v.size, v.opts.Hotspots)

	v.log.Info("model attached",
		zap.Float32("size_x", v.size[0]),
		zap.Float32("size_y", v.size[1]),
		zap.Float32("size_z", v.size[2]),
		zap.Float32("distance", v.framing.Distance),
		zap.Int("hotspots", len(v.hotspots)))
}

// Release frees every geometry and material and empties the scene. The
// viewer is model-less afterwards.
func (v *Viewer) Release(r scene.Releaser) error {
	err := v.graph.Release(r)
	v.model = scene.None
	v.hotspots = nil
	v.future = nil
	v.clearSelection()
	return err
}
