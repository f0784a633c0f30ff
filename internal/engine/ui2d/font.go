package ui2d

import (
	"image"
	"image/draw"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Printable ASCII is baked into the atlas; other runes draw as '?'.
const (
	firstGlyph   = ' '
	lastGlyph    = '~'
	atlasCols    = 16
	fallbackRune = '?'
)

// Font is a fixed-width bitmap font baked into a texture atlas.
type Font struct {
	face         *basicfont.Face
	atlas        *image.RGBA
	cellW, cellH int
	texture      uint32
}

// NewFont rasterises basicfont's 7x13 face. The GL texture is created on
// first use, so NewFont itself needs no GL context.
func NewFont() *Font {
	face := basicfont.Face7x13
	f := &Font{
		face:  face,
		cellW: face.Advance,
		cellH: face.Height,
	}

	count := int(lastGlyph-firstGlyph) + 1
	rows := (count + atlasCols - 1) / atlasCols
	f.atlas = image.NewRGBA(image.Rect(0, 0, atlasCols*f.cellW, rows*f.cellH))
	draw.Draw(f.atlas, f.atlas.Bounds(), image.Transparent, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: f.atlas, Src: image.White, Face: face}
	for r := firstGlyph; r <= lastGlyph; r++ {
		x, y := f.cell(r)
		d.Dot = fixed.P(x, y+face.Ascent)
		d.DrawString(string(r))
	}
	return f
}

// cell returns the top-left pixel of r's atlas cell.
func (f *Font) cell(r rune) (int, int) {
	if r < firstGlyph || r > lastGlyph {
		r = fallbackRune
	}
	i := int(r - firstGlyph)
	return (i % atlasCols) * f.cellW, (i / atlasCols) * f.cellH
}

// Atlas returns the rasterised glyph sheet.
func (f *Font) Atlas() *image.RGBA { return f.atlas }

// GlyphSize returns the size of one glyph cell in pixels.
func (f *Font) GlyphSize() (int, int) { return f.cellW, f.cellH }

// GetGlyphUV returns the atlas texture coordinates of r.
func (f *Font) GetGlyphUV(r rune) (u0, v0, u1, v1 float32) {
	x, y := f.cell(r)
	b := f.atlas.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	return float32(x) / w, float32(y) / h, float32(x+f.cellW) / w, float32(y+f.cellH) / h
}

// MeasureText returns the width and height of text at scale.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	lines, longest, cur := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		longest = max(longest, cur)
	}
	return float32(longest*f.cellW) * scale, float32(lines*f.cellH) * scale
}

// TextureID returns the atlas texture, uploading it on first call.
func (f *Font) TextureID() uint32 {
	if f.texture != 0 {
		return f.texture
	}
	b := f.atlas.Bounds()
	gl.GenTextures(1, &f.texture)
	gl.BindTexture(gl.TEXTURE_2D, f.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(f.atlas.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return f.texture
}

// Close frees the atlas texture.
func (f *Font) Close() {
	if f.texture != 0 {
		gl.DeleteTextures(1, &f.texture)
		f.texture = 0
	}
}
