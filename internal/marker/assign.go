package marker

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"math/rand"

	"github.com/aast242/png2dmc/internal/palette"
)

// ErrInsufficientMarkers indicates more colours are needed than the marker
// alphabet holds and reuse is disallowed.
var ErrInsufficientMarkers = errors.New("insufficient markers")

// Assignment maps each needed palette entry id to one marker index from the
// sheet's alphabet, together with a copy of that glyph recoloured for
// legibility against the entry's colour.
type Assignment struct {
	// Markers maps id -> marker index (1-based; 0 is the reserved empty
	// glyph and never assigned).
	Markers map[string]int

	// Glyphs maps id -> recoloured glyph bitmap, ready for compositing.
	Glyphs map[string]*image.NRGBA

	// Alphabet records the usable marker count, for diagnostics.
	Alphabet int
}

// SeedFor derives the default marker seed from an output base name, so
// repeated runs on the same input reproduce the same assignment.
func SeedFor(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

// Assign gives each needed id one marker index. The pool of indices is
// shuffled once under rng; indices are popped front-to-back in needed-id
// order. When the pool runs dry with ids remaining, a fresh full pool is
// reshuffled from the same stream (never reseeded) if allowReuse is set,
// so an index can repeat across pool passes but never within one.
// Reproducibility is a property of the entire sequence: replaying a prefix
// of the needed ids under the same seed yields the same prefix of markers.
func Assign(needed []string, pal *palette.Palette, sheet *Sheet, rng *rand.Rand, allowReuse bool) (*Assignment, error) {
	alphabet := sheet.Alphabet()
	asg := &Assignment{
		Markers:  make(map[string]int, len(needed)),
		Glyphs:   make(map[string]*image.NRGBA, len(needed)),
		Alphabet: alphabet,
	}

	pool := shuffledPool(rng, alphabet)
	for _, id := range needed {
		if len(pool) == 0 {
			if !allowReuse {
				return nil, fmt.Errorf("%w: %d colours needed but only %d markers available",
					ErrInsufficientMarkers, len(needed), alphabet)
			}
			pool = shuffledPool(rng, alphabet)
		}
		idx := pool[0]
		pool = pool[1:]

		entry, ok := pal.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("needed id %q is not in the reference palette", id)
		}
		asg.Markers[id] = idx
		asg.Glyphs[id] = Recolor(sheet.Glyph(idx), entry.RGB)
	}
	return asg, nil
}

// shuffledPool returns the marker indices [1..alphabet] in a fresh random
// order drawn from rng.
func shuffledPool(rng *rand.Rand, alphabet int) []int {
	pool := rng.Perm(alphabet)
	for i := range pool {
		pool[i]++
	}
	return pool
}

// Recolor copies glyph with its symbol pixels forced to pure black or pure
// white, chosen by the backing colour's luma so the symbol stays legible
// once composited: dark backing gets a white glyph, light backing black.
func Recolor(glyph *image.NRGBA, backing [3]uint8) *image.NRGBA {
	luma := 0.299*float64(backing[0]) + 0.587*float64(backing[1]) + 0.114*float64(backing[2])
	var v uint8
	if luma < 128 {
		v = 255
	}

	out := image.NewNRGBA(glyph.Bounds())
	copy(out.Pix, glyph.Pix)
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i+3] == 0 {
			continue
		}
		out.Pix[i] = v
		out.Pix[i+1] = v
		out.Pix[i+2] = v
		out.Pix[i+3] = 255
	}
	return out
}
