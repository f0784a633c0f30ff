package ui2d

// Popup label geometry, in surface pixels.
const (
	LabelPadX   = 12
	LabelPadY   = 8
	LabelShadow = 6
)

// Rect is an axis-aligned rectangle with a top-left origin.
type Rect struct {
	X, Y, W, H float32
}

// LabelRect returns the box of a label anchored at (x, y): centred
// horizontally on the anchor and lifted so its bottom edge sits 20% of its
// height above it.
func LabelRect(x, y, textW, textH float32) Rect {
	w := textW + 2*LabelPadX
	h := textH + 2*LabelPadY
	return Rect{X: x - w*0.5, Y: y - h*1.2, W: w, H: h}
}

// DrawLabel queues a white label with black text anchored at (x, y).
func (r *Renderer) DrawLabel(x, y float32, text string, scale float32) Rect {
	tw, th := r.MeasureText(text, scale)
	box := LabelRect(x, y, tw, th)

	r.DrawRect(box.X, box.Y+LabelShadow, box.W, box.H, ColorShadow)
	r.DrawRect(box.X, box.Y, box.W, box.H, ColorWhite)
	r.DrawText(box.X+LabelPadX, box.Y+LabelPadY, text, scale, ColorBlack)
	return box
}
