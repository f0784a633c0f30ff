package ui2d

import (
	"math"
	"testing"
)

func TestLabelRectAnchoring(t *testing.T) {
	box := LabelRect(400, 300, 100, 13)

	if box.W != 100+2*LabelPadX || box.H != 13+2*LabelPadY {
		t.Fatalf("box size = %vx%v", box.W, box.H)
	}
	if cx := box.X + box.W/2; cx != 400 {
		t.Errorf("label centre x = %v, want 400", cx)
	}
	// translate(-50%, -120%): the bottom edge sits 0.2*H above the anchor.
	if bottom := box.Y + box.H; math.Abs(float64(bottom-(300-0.2*box.H))) > 1e-3 {
		t.Errorf("label bottom = %v, want %v", bottom, 300-0.2*box.H)
	}
}

func TestFontAtlasHasGlyphs(t *testing.T) {
	f := NewFont()
	w, h := f.GlyphSize()
	if w != 7 || h != 13 {
		t.Fatalf("glyph size = %dx%d, want 7x13", w, h)
	}

	// Some pixel of 'A' is inked; the space cell is empty.
	inked := func(r rune) bool {
		x, y := f.cell(r)
		for dy := 0; dy < h; dy++ {
			for dx := 0; dx < w; dx++ {
				if f.Atlas().RGBAAt(x+dx, y+dy).A > 0 {
					return true
				}
			}
		}
		return false
	}
	if !inked('A') {
		t.Error("glyph 'A' has no pixels")
	}
	if inked(' ') {
		t.Error("space should be blank")
	}
}

func TestGlyphUVs(t *testing.T) {
	f := NewFont()
	u0, v0, u1, v1 := f.GetGlyphUV(' ')
	if u0 != 0 || v0 != 0 {
		t.Errorf("space should be the first cell, got (%v, %v)", u0, v0)
	}
	if u1 <= u0 || v1 <= v0 {
		t.Errorf("degenerate UV rect (%v,%v)-(%v,%v)", u0, v0, u1, v1)
	}

	q0, q1, q2, q3 := f.GetGlyphUV('?')
	e0, e1, e2, e3 := f.GetGlyphUV('é')
	if q0 != e0 || q1 != e1 || q2 != e2 || q3 != e3 {
		t.Error("non-ASCII runes should fall back to '?'")
	}
}

func TestMeasureText(t *testing.T) {
	f := NewFont()
	tests := []struct {
		text  string
		scale float32
		w, h  float32
	}{
		{"Display / Screen", 1, 16 * 7, 13},
		{"ab\nabcd", 2, 4 * 7 * 2, 2 * 13 * 2},
		{"", 1, 0, 13},
	}
	for _, tt := range tests {
		w, h := f.MeasureText(tt.text, tt.scale)
		if w != tt.w || h != tt.h {
			t.Errorf("MeasureText(%q, %v) = %vx%v, want %vx%v", tt.text, tt.scale, w, h, tt.w, tt.h)
		}
	}
}

func TestAppendQuad(t *testing.T) {
	v := appendQuad(nil, 10, 20, 30, 40, func(dst []float32, s, t float32) []float32 {
		return append(dst, s, t)
	})
	if len(v) != 6*5 {
		t.Fatalf("len = %d, want 30", len(v))
	}
	// Third vertex is the bottom-right corner.
	if v[10] != 40 || v[11] != 60 || v[13] != 1 || v[14] != 1 {
		t.Errorf("bottom-right vertex = %v", v[10:15])
	}
}
