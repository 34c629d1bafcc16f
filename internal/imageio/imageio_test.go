package imageio

import (
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputBase(t *testing.T) {
	tests := []struct {
		name      string
		inputPath string
		override  string
		want      string
	}{
		{
			name:      "input name with extension stripped",
			inputPath: "sprite.png",
			want:      "sprite",
		},
		{
			name:      "directory components dropped",
			inputPath: "art/sources/sprite.png",
			want:      "sprite",
		},
		{
			name:      "override wins",
			inputPath: "sprite.png",
			override:  "pattern-v2",
			want:      "pattern-v2",
		},
		{
			name:      "no extension",
			inputPath: "sprite",
			want:      "sprite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputBase(tt.inputPath, tt.override); got != tt.want {
				t.Errorf("OutputBase(%q, %q) = %q, want %q", tt.inputPath, tt.override, got, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	if got := PatternPath("sprite"); got != "sprite_pattern.png" {
		t.Errorf("PatternPath() = %q, want %q", got, "sprite_pattern.png")
	}
	if got := KeyPath("sprite"); got != "sprite_key.png" {
		t.Errorf("KeyPath() = %q, want %q", got, "sprite_key.png")
	}
}

func TestScaleShortSide(t *testing.T) {
	tests := []struct {
		name      string
		w, h      int
		shortSide int
		wantW     int
		wantH     int
	}{
		{name: "landscape halved", w: 16, h: 8, shortSide: 4, wantW: 8, wantH: 4},
		{name: "portrait halved", w: 8, h: 16, shortSide: 4, wantW: 4, wantH: 8},
		{name: "upscale", w: 4, h: 4, shortSide: 8, wantW: 8, wantH: 8},
		{name: "zero means no rescale", w: 10, h: 5, shortSide: 0, wantW: 10, wantH: 5},
		{name: "already at target", w: 6, h: 9, shortSide: 6, wantW: 6, wantH: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := ScaleShortSide(src, tt.shortSide)
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("ScaleShortSide(%dx%d, %d) = %dx%d, want %dx%d",
					tt.w, tt.h, tt.shortSide, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestScaleShortSideKeepsHardEdges(t *testing.T) {
	// Two solid halves upscaled 2x must stay two solid halves, with no
	// blended colours along the seam.
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	left := color.NRGBA{R: 255, A: 255}
	right := color.NRGBA{B: 255, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				src.SetNRGBA(x, y, left)
			} else {
				src.SetNRGBA(x, y, right)
			}
		}
	}

	got := ScaleShortSide(src, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := left
			if x >= 4 {
				want = right
			}
			if c := got.NRGBAAt(x, y); c != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, c, want)
			}
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "empty path", path: "", wantErr: "cannot be empty"},
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.png"), wantErr: "not found"},
		{name: "directory", path: t.TempDir(), wantErr: "directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatalf("Load(%q) succeeded, want error", tt.path)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load(%q) error = %q, want substring %q", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	path := filepath.Join(t.TempDir(), "out.png")
	if err := SavePNG(src, path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got := ToNRGBA(img)
	if got.Bounds() != src.Bounds() {
		t.Fatalf("round-trip bounds = %v, want %v", got.Bounds(), src.Bounds())
	}
	if c := got.NRGBAAt(1, 1); c != src.NRGBAAt(1, 1) {
		t.Errorf("round-trip pixel = %v, want %v", c, src.NRGBAAt(1, 1))
	}
}

func TestEnsureWritable(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "taken.png")
	if err := SavePNG(image.NewNRGBA(image.Rect(0, 0, 1, 1)), existing); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	free := filepath.Join(dir, "free.png")

	if err := EnsureWritable([]string{free}, false); err != nil {
		t.Errorf("EnsureWritable() on free path error = %v", err)
	}
	if err := EnsureWritable([]string{free, existing}, false); err == nil {
		t.Error("EnsureWritable() on existing path succeeded, want error")
	}
	if err := EnsureWritable([]string{existing}, true); err != nil {
		t.Errorf("EnsureWritable() with overwrite error = %v", err)
	}
}
