// Package legend renders the visual key and the symbol overlay from matched
// colours and marker assignments. It only consumes pipeline outputs and
// never mutates them.
package legend

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/aast242/png2dmc/internal/marker"
	"github.com/aast242/png2dmc/internal/match"
	"github.com/aast242/png2dmc/internal/palette"
)

const (
	swatchWidth = 24
	rowHeight   = 16
	padding     = 4
	textColumn  = 120
)

// Key renders the legend image: one row per needed colour with a swatch
// tile, the recoloured marker glyph over it, and the entry's id and name.
// A nil charset falls back to the built-in bitmap font.
func Key(res *match.Result, asg *marker.Assignment, pal *palette.Palette, chs *Charset) *image.NRGBA {
	width := textColumn + 160
	height := padding + len(res.Needed)*(rowHeight+padding)
	if height <= padding {
		height = rowHeight
	}
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	y := padding
	for _, id := range res.Needed {
		entry, ok := pal.Lookup(id)
		if !ok {
			continue
		}

		// Swatch tile with a thin border.
		tile := image.Rect(padding, y, padding+swatchWidth, y+rowHeight)
		draw.Draw(out, tile, image.NewUniform(color.NRGBA{R: entry.RGB[0], G: entry.RGB[1], B: entry.RGB[2], A: 255}), image.Point{}, draw.Src)
		strokeRect(out, tile, color.NRGBA{A: 255})

		// Marker glyph centred on the swatch.
		if g := asg.Glyphs[id]; g != nil {
			gb := g.Bounds()
			at := image.Pt(tile.Min.X+(tile.Dx()-gb.Dx())/2, tile.Min.Y+(tile.Dy()-gb.Dy())/2)
			draw.Draw(out, gb.Add(at), g, gb.Min, draw.Over)
		}

		label := id + "  " + entry.Name
		if chs != nil {
			chs.Draw(out, label, padding+swatchWidth+padding, y+(rowHeight-chs.Cell())/2)
		} else {
			drawText(out, label, padding+swatchWidth+padding, y+rowHeight-padding)
		}

		y += rowHeight + padding
	}
	return out
}

// Overlay renders the full pattern: every raster pixel becomes a cell filled
// with its matched colour and stamped with the colour's marker glyph. A grid
// line separates cells, drawn heavier every tenth cell for counting.
func Overlay(res *match.Result, asg *marker.Assignment, cell int) *image.NRGBA {
	if cell < 3 {
		cell = 3
	}
	b := res.Image.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w*(cell+1)+1, h*(cell+1)+1))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			i := res.Image.PixOffset(b.Min.X+px, b.Min.Y+py)
			if res.Image.Pix[i+3] == 0 {
				continue
			}
			rgb := [3]uint8{res.Image.Pix[i], res.Image.Pix[i+1], res.Image.Pix[i+2]}
			cellRect := image.Rect(px*(cell+1)+1, py*(cell+1)+1, (px+1)*(cell+1), (py+1)*(cell+1))
			draw.Draw(out, cellRect, image.NewUniform(color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}), image.Point{}, draw.Src)

			entry, ok := res.ByColor[rgb]
			if !ok {
				continue
			}
			if g := asg.Glyphs[entry.ID]; g != nil {
				gb := g.Bounds()
				at := image.Pt(cellRect.Min.X+(cellRect.Dx()-gb.Dx())/2, cellRect.Min.Y+(cellRect.Dy()-gb.Dy())/2)
				draw.Draw(out, gb.Add(at), g, gb.Min, draw.Over)
			}
		}
	}

	// Grid: light lines per cell, heavy every ten cells.
	light := color.NRGBA{R: 190, G: 190, B: 190, A: 255}
	heavy := color.NRGBA{A: 255}
	for px := 0; px <= w; px++ {
		c := light
		if px%10 == 0 || px == w {
			c = heavy
		}
		vline(out, px*(cell+1), 0, h*(cell+1)+1, c)
	}
	for py := 0; py <= h; py++ {
		c := light
		if py%10 == 0 || py == h {
			c = heavy
		}
		hline(out, 0, w*(cell+1)+1, py*(cell+1), c)
	}
	return out
}

// drawText renders a label with the built-in 7x13 bitmap face.
func drawText(dst *image.NRGBA, s string, x, y int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.NRGBA{A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func strokeRect(dst *image.NRGBA, r image.Rectangle, c color.Color) {
	hline(dst, r.Min.X, r.Max.X, r.Min.Y, c)
	hline(dst, r.Min.X, r.Max.X, r.Max.Y-1, c)
	vline(dst, r.Min.X, r.Min.Y, r.Max.Y, c)
	vline(dst, r.Max.X-1, r.Min.Y, r.Max.Y, c)
}

func hline(dst *image.NRGBA, x0, x1, y int, c color.Color) {
	for x := x0; x < x1; x++ {
		dst.Set(x, y, c)
	}
}

func vline(dst *image.NRGBA, x, y0, y1 int, c color.Color) {
	for y := y0; y < y1; y++ {
		dst.Set(x, y, c)
	}
}
