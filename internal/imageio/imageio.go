// Package imageio provides utilities for loading, scaling, and saving the
// rasters the conversion pipeline works on.
package imageio

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	"image/png"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP format
)

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP.
func Load(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return img, nil
}

// ToNRGBA converts any image to NRGBA, copying pixels if necessary.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

// ScaleShortSide scales src uniformly so its shorter side equals shortSide,
// using nearest-neighbor resampling so pixel boundaries stay hard. Upscaling
// is permitted. A shortSide of 0 returns src unchanged.
func ScaleShortSide(src *image.NRGBA, shortSide int) *image.NRGBA {
	if shortSide <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return src
	}

	var factor float64
	if w < h {
		factor = float64(shortSide) / float64(w)
	} else {
		factor = float64(shortSide) / float64(h)
	}
	nw := int(float64(w)*factor + 0.5)
	nh := int(float64(h)*factor + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	if nw == w && nh == h {
		return src
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// SavePNG writes img to path as a PNG.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path) // #nosec G304 - User-specified output path
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// OutputBase derives the base name used for output files and for the default
// marker seed. An explicit override wins; otherwise the input file name with
// its extension stripped is used.
func OutputBase(inputPath, override string) string {
	if override != "" {
		return override
	}
	name := filepath.Base(inputPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// PatternPath and KeyPath name the two output files for a given base.
func PatternPath(base string) string { return base + "_pattern.png" }

// KeyPath returns the key (legend) output path for a given base.
func KeyPath(base string) string { return base + "_key.png" }

// EnsureWritable refuses to clobber existing output files unless overwrite
// is set. The first colliding path is reported.
func EnsureWritable(paths []string, overwrite bool) error {
	if overwrite {
		return nil
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("output file already exists: %s (use --overwrite to replace)", p)
		}
	}
	return nil
}
