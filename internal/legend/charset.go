package legend

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/aast242/png2dmc/internal/marker"
)

// Charset is a sliced character strip used to stamp palette ids onto the
// key in pixel-art style. The strip holds one square cell per rune of its
// declared character order; runes without a cell render as blank space.
type Charset struct {
	cells map[rune]*image.NRGBA
	cell  int
}

// LoadCharset slices a character strip into cell-by-cell squares, row-major,
// pairing them with runes of order. The strip must divide evenly into
// squares and must hold at least len(order) cells.
func LoadCharset(img image.Image, cell int, order string) (*Charset, error) {
	if cell <= 0 {
		return nil, fmt.Errorf("%w: cell size must be positive, got %d", marker.ErrMalformedSheet, cell)
	}
	b := img.Bounds()
	if b.Dx()%cell != 0 || b.Dy()%cell != 0 {
		return nil, fmt.Errorf("%w: %dx%d strip does not divide into %dpx squares",
			marker.ErrMalformedSheet, b.Dx(), b.Dy(), cell)
	}

	cols := b.Dx() / cell
	rows := b.Dy() / cell
	runes := []rune(order)
	if cols*rows < len(runes) {
		return nil, fmt.Errorf("%w: strip holds %d cells but character order needs %d",
			marker.ErrMalformedSheet, cols*rows, len(runes))
	}

	cells := make(map[rune]*image.NRGBA, len(runes))
	for i, r := range runes {
		g := image.NewNRGBA(image.Rect(0, 0, cell, cell))
		col, row := i%cols, i/cols
		src := image.Pt(b.Min.X+col*cell, b.Min.Y+row*cell)
		draw.Draw(g, g.Bounds(), img, src, draw.Src)
		cells[r] = g
	}
	return &Charset{cells: cells, cell: cell}, nil
}

// Cell returns the square cell edge length in pixels.
func (c *Charset) Cell() int { return c.cell }

// Draw stamps s onto dst starting at (x, y). Runes without a cell advance
// the cursor without drawing.
func (c *Charset) Draw(dst *image.NRGBA, s string, x, y int) {
	for _, r := range s {
		if g, ok := c.cells[r]; ok {
			gb := g.Bounds()
			draw.Draw(dst, gb.Add(image.Pt(x, y)), g, gb.Min, draw.Over)
		}
		x += c.cell + 1
	}
}
