package quantize

import (
	"image"
	"image/color"

	mediancut "github.com/ericpauley/go-quantize/quantize"
)

// adaptiveReduce is the legacy reduction path: a global adaptive palette with
// a fixed colour budget computed by median-cut directly in RGB, with no
// perceptual-space clustering. It produces visibly different results from
// the cluster strategy and is kept as an alternate behind the same contract.
func adaptiveReduce(img *image.NRGBA, k int) {
	// Weight transparent pixels to zero so a large cleared region cannot
	// pull the fitted palette toward black.
	q := mediancut.MedianCutQuantizer{
		Weighting: func(m image.Image, x, y int) uint32 {
			if _, _, _, a := m.At(x, y).RGBA(); a == 0 {
				return 0
			}
			return 1
		},
	}
	pal := q.Quantize(make(color.Palette, 0, k), img)
	if len(pal) == 0 {
		return
	}

	b := img.Bounds()
	snapped := make(map[[3]uint8][3]uint8)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			if img.Pix[i+3] == 0 {
				continue
			}
			key := [3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}
			rgb, ok := snapped[key]
			if !ok {
				idx := pal.Index(color.NRGBA{R: key[0], G: key[1], B: key[2], A: 255})
				r, g, bb, _ := pal[idx].RGBA()
				rgb = [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(bb >> 8)}
				snapped[key] = rgb
			}
			img.Pix[i] = rgb[0]
			img.Pix[i+1] = rgb[1]
			img.Pix[i+2] = rgb[2]
		}
	}
}
