package input

import "github.com/veandco/go-sdl2/sdl"

// ClickSlop is how far, in points, the pointer may travel between press and
// release for the gesture to still count as a click.
const ClickSlop = 5

// Listener receives recognised gestures. Coordinates are surface points.
type Listener interface {
	OnClick(x, y float32)
	OnDrag(dx, dy float32)
	OnWheel(steps float32)
	OnResize(width, height int)
}

// Gestures turns raw pointer events into clicks, orbit drags and zoom steps.
// Only the left button orbits and selects.
type Gestures struct {
	listener Listener

	pressed        bool
	moved          bool
	startX, startY int
	lastX, lastY   int
}

// NewGestures creates a recogniser that reports to l. A nil listener drops
// every gesture.
func NewGestures(l Listener) *Gestures {
	return &Gestures{listener: l}
}

// SetListener replaces the listener and forgets any gesture in progress.
func (g *Gestures) SetListener(l Listener) {
	g.listener = l
	g.pressed = false
}

// Feed processes one event.
func (g *Gestures) Feed(e Event) {
	if g.listener == nil {
		return
	}
	switch e.Type {
	case EventMouseDown:
		if e.Button != sdl.BUTTON_LEFT {
			return
		}
		g.pressed, g.moved = true, false
		g.startX, g.startY = e.MouseX, e.MouseY
		g.lastX, g.lastY = e.MouseX, e.MouseY

	case EventMouseMove:
		if !g.pressed {
			return
		}
		dx, dy := e.MouseX-g.lastX, e.MouseY-g.lastY
		g.lastX, g.lastY = e.MouseX, e.MouseY
		if !g.moved && beyondSlop(e.MouseX-g.startX, e.MouseY-g.startY) {
			g.moved = true
		}
		if dx != 0 || dy != 0 {
			g.listener.OnDrag(float32(dx), float32(dy))
		}

	case EventMouseUp:
		if e.Button != sdl.BUTTON_LEFT || !g.pressed {
			return
		}
		g.pressed = false
		if !g.moved && !beyondSlop(e.MouseX-g.startX, e.MouseY-g.startY) {
			g.listener.OnClick(float32(e.MouseX), float32(e.MouseY))
		}

	case EventMouseWheel:
		g.listener.OnWheel(e.Wheel)

	case EventWindowResize:
		g.listener.OnResize(e.Width, e.Height)
	}
}

func beyondSlop(dx, dy int) bool {
	return dx*dx+dy*dy >= ClickSlop*ClickSlop
}
