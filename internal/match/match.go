// Package match maps every distinct colour in a quantized raster onto its
// nearest reference palette entry and tallies per-entry stitch counts.
package match

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/aast242/png2dmc/internal/palette"
)

// Metric selects the colour-difference formula used for matching.
type Metric string

const (
	// MetricRGB is plain Euclidean distance in raw RGB. Fast, legacy, less
	// perceptually accurate.
	MetricRGB Metric = "rgb"

	// MetricLab is the default: distance in the L*a*b* perceptually uniform
	// space, where Euclidean distance tracks perceived colour difference
	// far better for chromatic colours.
	MetricLab Metric = "lab"
)

// ErrInvariant indicates a pixel colour that escaped quantization's
// normalization and is absent from the match table. It points at a logic
// defect upstream and is never recovered from.
var ErrInvariant = errors.New("pixel colour missing from match table")

// Result is the outcome of matching a quantized raster against a palette.
type Result struct {
	// Image is a freshly allocated raster whose every opaque pixel carries
	// the RGB of its matched palette entry. The input raster is never
	// mutated.
	Image *image.NRGBA

	// Needed lists the ids of the palette entries the pattern actually
	// uses, in the canonical order: numeric ids ascending, then
	// non-numeric ids lexically.
	Needed []string

	// Counts maps each needed id to its stitch count, incremented once per
	// opaque pixel.
	Counts map[string]int

	// ByColor maps each matched RGB back to its palette entry, for
	// downstream rendering.
	ByColor map[[3]uint8]palette.Entry
}

// Match matches every distinct opaque colour in img to its nearest palette
// entry under metric. Distances are computed once per distinct colour, not
// per pixel; ties go to the entry earliest in palette file order.
func Match(img *image.NRGBA, pal *palette.Palette, metric Metric) (*Result, error) {
	switch metric {
	case MetricRGB, MetricLab:
	default:
		return nil, fmt.Errorf("unknown match metric: %q", metric)
	}
	if pal.Len() == 0 {
		return nil, fmt.Errorf("reference palette is empty")
	}

	b := img.Bounds()

	// Pass 1: collect the distinct opaque colours.
	distinct := make(map[[3]uint8]struct{})
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			if img.Pix[i+3] == 0 {
				continue
			}
			distinct[[3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}] = struct{}{}
		}
	}

	// Pass 2: nearest entry per distinct colour.
	matched := make(map[[3]uint8]palette.Entry, len(distinct))
	for key := range distinct {
		matched[key] = nearest(key, pal, metric)
	}

	// Pass 3: rewrite pixels into a new raster and tally stitches.
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	counts := make(map[string]int)
	byColor := make(map[[3]uint8]palette.Entry)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := out.PixOffset(x-b.Min.X, y-b.Min.Y)
			if img.Pix[si+3] == 0 {
				continue
			}
			entry, ok := matched[[3]uint8{img.Pix[si], img.Pix[si+1], img.Pix[si+2]}]
			if !ok {
				return nil, fmt.Errorf("%w: %v at (%d,%d)", ErrInvariant,
					[3]uint8{img.Pix[si], img.Pix[si+1], img.Pix[si+2]}, x, y)
			}
			out.Pix[di] = entry.RGB[0]
			out.Pix[di+1] = entry.RGB[1]
			out.Pix[di+2] = entry.RGB[2]
			out.Pix[di+3] = 255
			counts[entry.ID]++
			byColor[entry.RGB] = entry
		}
	}

	needed := make([]string, 0, len(counts))
	for id := range counts {
		needed = append(needed, id)
	}
	SortIDs(needed)

	return &Result{Image: out, Needed: needed, Counts: counts, ByColor: byColor}, nil
}

// nearest returns the palette entry with minimum distance to rgb, first
// occurrence winning ties.
func nearest(rgb [3]uint8, pal *palette.Palette, metric Metric) palette.Entry {
	entries := pal.Entries()
	best := entries[0]
	bestDist := distance(rgb, entries[0].RGB, metric)
	for _, e := range entries[1:] {
		if d := distance(rgb, e.RGB, metric); d < bestDist {
			bestDist = d
			best = e
		}
	}
	return best
}

func distance(a, b [3]uint8, metric Metric) float64 {
	if metric == MetricRGB {
		dr := float64(a[0]) - float64(b[0])
		dg := float64(a[1]) - float64(b[1])
		db := float64(a[2]) - float64(b[2])
		return dr*dr + dg*dg + db*db
	}
	ca := colorful.Color{R: float64(a[0]) / 255.0, G: float64(a[1]) / 255.0, B: float64(a[2]) / 255.0}
	cb := colorful.Color{R: float64(b[0]) / 255.0, G: float64(b[1]) / 255.0, B: float64(b[2]) / 255.0}
	return ca.DistanceLab(cb)
}

// SortIDs sorts palette ids in place: ids that parse as integers numerically
// ascending first, then non-numeric ids lexically after all numeric ones.
// Floss catalogs mix plain numbers with alphanumeric specialty ids, so this
// dual ordering is a fixed contract.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		ni, iErr := strconv.Atoi(ids[i])
		nj, jErr := strconv.Atoi(ids[j])
		switch {
		case iErr == nil && jErr == nil:
			return ni < nj
		case iErr == nil:
			return true
		case jErr == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
