// Package marker assigns symbolic glyphs to matched palette entries so
// colours stay distinguishable when a pattern is reproduced without colour.
package marker

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// ErrMalformedSheet indicates a glyph sheet that does not slice evenly into
// fixed-size squares.
var ErrMalformedSheet = errors.New("malformed marker sheet")

// Sheet is a sliced set of fixed-size square glyph bitmaps. Glyph index 0 is
// reserved as the fully transparent "empty" marker; every other glyph's
// non-zero-alpha region is its symbol outline.
type Sheet struct {
	glyphs []*image.NRGBA
	cell   int
}

// LoadSheet slices a glyph sheet into cell-by-cell squares, row-major.
func LoadSheet(img image.Image, cell int) (*Sheet, error) {
	if cell <= 0 {
		return nil, fmt.Errorf("%w: cell size must be positive, got %d", ErrMalformedSheet, cell)
	}
	b := img.Bounds()
	if b.Dx()%cell != 0 || b.Dy()%cell != 0 {
		return nil, fmt.Errorf("%w: %dx%d sheet does not divide into %dpx squares",
			ErrMalformedSheet, b.Dx(), b.Dy(), cell)
	}

	cols := b.Dx() / cell
	rows := b.Dy() / cell
	if cols*rows < 2 {
		return nil, fmt.Errorf("%w: sheet needs at least the empty glyph plus one marker", ErrMalformedSheet)
	}

	glyphs := make([]*image.NRGBA, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			g := image.NewNRGBA(image.Rect(0, 0, cell, cell))
			src := image.Rect(b.Min.X+col*cell, b.Min.Y+row*cell, b.Min.X+(col+1)*cell, b.Min.Y+(row+1)*cell)
			xdraw.Draw(g, g.Bounds(), img, src.Min, xdraw.Src)
			glyphs = append(glyphs, g)
		}
	}
	return &Sheet{glyphs: glyphs, cell: cell}, nil
}

// Alphabet is the usable marker count: glyph count minus the reserved empty
// glyph at index 0.
func (s *Sheet) Alphabet() int { return len(s.glyphs) - 1 }

// Cell returns the square glyph edge length in pixels.
func (s *Sheet) Cell() int { return s.cell }

// Glyph returns the glyph bitmap at index i (0 is the empty glyph).
func (s *Sheet) Glyph(i int) *image.NRGBA { return s.glyphs[i] }

const defaultCell = 9

// defaultShapes define the built-in glyph set as coordinate predicates over
// an n-by-n cell. Index 0 is the empty glyph.
var defaultShapes = []func(x, y, n int) bool{
	func(x, y, n int) bool { return false }, // reserved empty
	func(x, y, n int) bool { return x == y || x+y == n-1 },                                     // X
	func(x, y, n int) bool { return x == n/2 || y == n/2 },                                     // +
	func(x, y, n int) bool { return x == 0 || y == 0 || x == n-1 || y == n-1 },                 // square outline
	func(x, y, n int) bool { return abs(x-n/2)+abs(y-n/2) == n/2 },                             // diamond
	func(x, y, n int) bool { return x+y == n-1 },                                               // slash
	func(x, y, n int) bool { return x == y },                                                   // backslash
	func(x, y, n int) bool { return y == n/2 },                                                 // dash
	func(x, y, n int) bool { return x == n/2 },                                                 // bar
	func(x, y, n int) bool { return abs(x-n/2) <= 1 && abs(y-n/2) <= 1 },                       // dot
	func(x, y, n int) bool { return y == n-1 || abs(x-n/2) == (y+1)/2 },                        // triangle
	func(x, y, n int) bool { return (x == y || x+y == n-1) || x == n/2 || y == n/2 },           // asterisk
	func(x, y, n int) bool { return abs(x-n/2)+abs(y-n/2) <= n/4 },                             // filled diamond
}

// DefaultSheet builds the built-in marker sheet so the tool works without an
// external glyph asset. Glyph pixels are opaque black; recoloring happens at
// assignment time.
func DefaultSheet() *Sheet {
	glyphs := make([]*image.NRGBA, len(defaultShapes))
	for i, shape := range defaultShapes {
		g := image.NewNRGBA(image.Rect(0, 0, defaultCell, defaultCell))
		for y := 0; y < defaultCell; y++ {
			for x := 0; x < defaultCell; x++ {
				if shape(x, y, defaultCell) {
					o := g.PixOffset(x, y)
					g.Pix[o+3] = 255
				}
			}
		}
		glyphs[i] = g
	}
	return &Sheet{glyphs: glyphs, cell: defaultCell}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
