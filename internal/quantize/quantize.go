// Package quantize reduces an image's colour cardinality to a bounded target
// so the result can be matched against a finite reference palette.
//
// Two strategies sit behind one contract: a perceptual clustering reduction
// (the default) and a legacy adaptive-palette reduction. Both share the same
// alpha-binarization and resize behaviour.
package quantize

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"github.com/hashicorp/go-hclog"

	"github.com/aast242/png2dmc/internal/imageio"
)

// Strategy selects the colour-reduction algorithm.
type Strategy string

const (
	// StrategyCluster clusters opaque pixels in a perceptually uniform
	// colour space and snaps every pixel to its nearest cluster centre.
	StrategyCluster Strategy = "cluster"

	// StrategyAdaptive is the legacy path: a global adaptive palette with a
	// fixed colour budget, computed directly in RGB.
	StrategyAdaptive Strategy = "adaptive"
)

const (
	// AlphaThreshold is the opacity cutoff for binarization: pixels below it
	// become fully transparent with their RGB zeroed, all others become
	// fully opaque.
	AlphaThreshold = 150

	// MaxClusterSamples caps how many opaque pixels are fed to the
	// clustering fit, bounding its cost independent of image resolution.
	MaxClusterSamples = 10000

	// DefaultClusterColors is the cluster count used when the caller asks
	// for "no reduction" together with the clustering strategy, which still
	// needs some finite k.
	DefaultClusterColors = 16

	// WarnPixelArea is the scaled pixel area above which an advisory is
	// emitted before proceeding.
	WarnPixelArea = 62500 // 250x250

	// AbortPixelArea is the scaled pixel area at which processing fails
	// unless explicitly overridden.
	AbortPixelArea = 250000 // 500x500
)

// ErrSizeLimit indicates the scaled image is at or beyond the abort
// threshold and no override was given.
var ErrSizeLimit = errors.New("scaled image exceeds size limit")

// Config controls a quantization run.
type Config struct {
	// TargetColors is the requested colour count. Must be >= 3, or 0 for
	// "no reduction" (alpha is still binarized).
	TargetColors int

	// Strategy selects the reduction algorithm.
	Strategy Strategy

	// ResizeTo scales the image so its shorter side equals this pixel
	// count before quantization. 0 leaves the image unscaled.
	ResizeTo int

	// Force proceeds past the abort size threshold.
	Force bool
}

// Validate checks the numeric arguments before any heavy work.
func (c Config) Validate() error {
	if c.TargetColors != 0 && c.TargetColors < 3 {
		return fmt.Errorf("target colour count must be 0 (no reduction) or at least 3, got %d", c.TargetColors)
	}
	if c.ResizeTo < 0 {
		return fmt.Errorf("resize size cannot be negative, got %d", c.ResizeTo)
	}
	switch c.Strategy {
	case StrategyCluster, StrategyAdaptive:
	default:
		return fmt.Errorf("unknown quantization strategy: %q", c.Strategy)
	}
	return nil
}

// Quantize scales img per cfg, binarizes its alpha channel, and reduces its
// distinct opaque colours to at most cfg.TargetColors. The rng drives the
// clustering subsample so a run's reproducibility is a property of the
// caller-supplied stream. The returned raster is freshly allocated.
func Quantize(img image.Image, cfg Config, rng *rand.Rand, logger hclog.Logger) (*image.NRGBA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1)) // #nosec G404 - Subsampling only
	}

	src := imageio.ToNRGBA(img)
	scaled := imageio.ScaleShortSide(src, cfg.ResizeTo)
	if scaled == src {
		// Work on a copy so the caller's raster is never mutated.
		scaled = cloneNRGBA(src)
	}

	b := scaled.Bounds()
	area := b.Dx() * b.Dy()
	if area >= AbortPixelArea && !cfg.Force {
		return nil, fmt.Errorf("%w: %dx%d = %d pixels (limit %d)", ErrSizeLimit, b.Dx(), b.Dy(), area, AbortPixelArea)
	}
	if area >= WarnPixelArea {
		logger.Warn("large pattern", "width", b.Dx(), "height", b.Dy(), "stitches", area)
	}

	transparent := binarizeAlpha(scaled)
	logger.Debug("alpha binarized", "transparent", len(transparent), "opaque", area-len(transparent))

	if cfg.TargetColors == 0 && cfg.Strategy == StrategyAdaptive {
		// No reduction requested on the legacy path: pass through.
		return scaled, nil
	}

	switch cfg.Strategy {
	case StrategyCluster:
		k := cfg.TargetColors
		if k == 0 {
			k = DefaultClusterColors
		}
		if err := clusterReduce(scaled, transparent, k, rng, logger); err != nil {
			return nil, err
		}
	case StrategyAdaptive:
		adaptiveReduce(scaled, cfg.TargetColors)
	}

	return scaled, nil
}

// binarizeAlpha snaps every pixel to fully transparent (RGB zeroed) or fully
// opaque, returning the transparent coordinate set. No semi-transparent
// pixel may survive this pass.
func binarizeAlpha(img *image.NRGBA) []image.Point {
	var transparent []image.Point
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			if img.Pix[i+3] < AlphaThreshold {
				img.Pix[i] = 0
				img.Pix[i+1] = 0
				img.Pix[i+2] = 0
				img.Pix[i+3] = 0
				transparent = append(transparent, image.Point{X: x, Y: y})
			} else {
				img.Pix[i+3] = 255
			}
		}
	}
	return transparent
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
