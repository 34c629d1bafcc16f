package match

import (
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/aast242/png2dmc/internal/palette"
)

func testPalette(t *testing.T) *palette.Palette {
	t.Helper()
	pal, err := palette.New([]palette.Entry{
		{ID: "321", Name: "Red", RGB: [3]uint8{199, 43, 59}},
		{ID: "700", Name: "Green", RGB: [3]uint8{7, 115, 27}},
		{ID: "797", Name: "Royal Blue", RGB: [3]uint8{19, 71, 125}},
		{ID: "310", Name: "Black", RGB: [3]uint8{0, 0, 0}},
		{ID: "B5200", Name: "Snow White", RGB: [3]uint8{255, 255, 255}},
	})
	if err != nil {
		t.Fatalf("palette.New() error = %v", err)
	}
	return pal
}

func TestSortIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{
			name: "numeric before lexical",
			ids:  []string{"12", "B", "3", "A"},
			want: []string{"3", "12", "A", "B"},
		},
		{
			name: "numeric ascending not lexical",
			ids:  []string{"100", "99", "3"},
			want: []string{"3", "99", "100"},
		},
		{
			name: "non-numeric after numeric regardless of lexical value",
			ids:  []string{"Ecru", "3866", "B5200", "310"},
			want: []string{"310", "3866", "B5200", "Ecru"},
		},
		{
			name: "empty",
			ids:  []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SortIDs(tt.ids)
			if !reflect.DeepEqual(tt.ids, tt.want) {
				t.Errorf("SortIDs() = %v, want %v", tt.ids, tt.want)
			}
		})
	}
}

func TestMatchSnapsToPalette(t *testing.T) {
	pal := testPalette(t)
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 210, G: 40, B: 50, A: 255})  // near 321
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 120, B: 30, A: 255})  // near 700
	img.SetNRGBA(2, 0, color.NRGBA{})                              // transparent

	for _, metric := range []Metric{MetricRGB, MetricLab} {
		t.Run(string(metric), func(t *testing.T) {
			res, err := Match(img, pal, metric)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}

			if got := res.Image.NRGBAAt(0, 0); got != (color.NRGBA{R: 199, G: 43, B: 59, A: 255}) {
				t.Errorf("pixel 0 = %v, want snapped to 321", got)
			}
			if got := res.Image.NRGBAAt(1, 0); got != (color.NRGBA{R: 7, G: 115, B: 27, A: 255}) {
				t.Errorf("pixel 1 = %v, want snapped to 700", got)
			}
			if got := res.Image.NRGBAAt(2, 0); got != (color.NRGBA{}) {
				t.Errorf("transparent pixel = %v, want untouched", got)
			}

			if !reflect.DeepEqual(res.Needed, []string{"321", "700"}) {
				t.Errorf("Needed = %v, want [321 700]", res.Needed)
			}
			if res.Counts["321"] != 1 || res.Counts["700"] != 1 {
				t.Errorf("Counts = %v, want one stitch each", res.Counts)
			}
		})
	}
}

func TestMatchCountsPerPixel(t *testing.T) {
	pal := testPalette(t)
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
		}
	}
	img.SetNRGBA(0, 0, color.NRGBA{A: 0})

	res, err := Match(img, pal, MetricLab)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	// Stitch counts reflect pixel coverage, not distinct-colour cardinality,
	// and transparent pixels are excluded.
	if got := res.Counts["B5200"]; got != 7 {
		t.Errorf("Counts[B5200] = %d, want 7", got)
	}
}

func TestMatchIdempotent(t *testing.T) {
	pal := testPalette(t)
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 60), G: uint8(y * 60), B: uint8((x + y) * 30), A: 255,
			})
		}
	}

	first, err := Match(img, pal, MetricLab)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	second, err := Match(first.Image, pal, MetricLab)
	if err != nil {
		t.Fatalf("Match() on matched raster error = %v", err)
	}

	if !reflect.DeepEqual(first.Image.Pix, second.Image.Pix) {
		t.Error("re-matching a normalized raster changed pixels; matching must be a no-op")
	}
	if !reflect.DeepEqual(first.Needed, second.Needed) {
		t.Errorf("Needed changed: %v vs %v", first.Needed, second.Needed)
	}
}

func TestMatchTieBreaksByPaletteOrder(t *testing.T) {
	pal, err := palette.New([]palette.Entry{
		{ID: "first", Name: "First Gray", RGB: [3]uint8{100, 100, 100}},
		{ID: "second", Name: "Same Gray", RGB: [3]uint8{100, 100, 100}},
	})
	if err != nil {
		t.Fatalf("palette.New() error = %v", err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 100, B: 100, A: 255})

	res, err := Match(img, pal, MetricLab)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !reflect.DeepEqual(res.Needed, []string{"first"}) {
		t.Errorf("Needed = %v, want the entry earliest in palette order", res.Needed)
	}
}

func TestMatchDoesNotMutateInput(t *testing.T) {
	pal := testPalette(t)
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 210, G: 40, B: 50, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 120, B: 30, A: 255})
	before := append([]uint8(nil), img.Pix...)

	if _, err := Match(img, pal, MetricLab); err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !reflect.DeepEqual(img.Pix, before) {
		t.Error("Match() mutated the input raster")
	}
}

func TestMatchErrors(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	if _, err := Match(img, testPalette(t), "cmyk"); err == nil {
		t.Error("Match() with unknown metric expected error")
	}

	empty, err := palette.New(nil)
	if err != nil {
		t.Fatalf("palette.New() error = %v", err)
	}
	if _, err := Match(img, empty, MetricLab); err == nil {
		t.Error("Match() with empty palette expected error")
	}
}
