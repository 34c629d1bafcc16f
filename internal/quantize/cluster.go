package quantize

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/hashicorp/go-hclog"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
)

// clusterReduce fits k cluster centres over a subsample of the opaque pixels
// in L*a*b* space, then snaps every opaque pixel to its nearest centre.
// Euclidean distance in raw RGB does not track perceived colour difference,
// which is why the fit happens in a perceptually uniform space.
//
// Transparent coordinates are excluded from the statistics and restored
// afterwards. The fit-then-predict split keeps clustering cost bounded by
// MaxClusterSamples regardless of image resolution.
func clusterReduce(img *image.NRGBA, transparent []image.Point, k int, rng *rand.Rand, logger hclog.Logger) error {
	b := img.Bounds()

	// Gather the distinct opaque colours and their Lab coordinates.
	type labColor struct{ l, a, bb float64 }
	distinct := make(map[[3]uint8]labColor)
	var observations clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			if img.Pix[i+3] == 0 {
				continue
			}
			key := [3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}
			lab, seen := distinct[key]
			if !seen {
				c := colorful.Color{
					R: float64(key[0]) / 255.0,
					G: float64(key[1]) / 255.0,
					B: float64(key[2]) / 255.0,
				}
				l, a, bb := c.Lab()
				lab = labColor{l: l, a: a, bb: bb}
				distinct[key] = lab
			}
			observations = append(observations, clusters.Coordinates{lab.l, lab.a, lab.bb})
		}
	}

	if len(observations) == 0 {
		// Fully transparent image, nothing to reduce.
		return nil
	}
	if len(distinct) <= k {
		// Already at or under the target; clustering would only collapse
		// colours that are meant to survive.
		logger.Debug("skipping cluster fit", "distinct", len(distinct), "target", k)
		return nil
	}

	// Draw a bounded uniform subsample under the caller's random stream.
	sample := observations
	if len(observations) > MaxClusterSamples {
		sample = make(clusters.Observations, MaxClusterSamples)
		for i, j := range rng.Perm(len(observations))[:MaxClusterSamples] {
			sample[i] = observations[j]
		}
	}
	if k > len(sample) {
		k = len(sample)
	}

	cc := fitClusters(sample, k, rng)
	logger.Debug("cluster fit complete", "clusters", len(cc), "samples", len(sample))

	// Convert fitted centres back to RGB once.
	type centre struct {
		lab [3]float64
		rgb [3]uint8
	}
	centres := make([]centre, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Lab(c.Center[0], c.Center[1], c.Center[2]).Clamped()
		r, g, bb := col.RGB255()
		centres = append(centres, centre{
			lab: [3]float64{c.Center[0], c.Center[1], c.Center[2]},
			rgb: [3]uint8{r, g, bb},
		})
	}
	if len(centres) == 0 {
		return fmt.Errorf("cluster fit produced no usable centres")
	}

	// Predict: nearest centre per distinct colour, memoized, then rewrite
	// every opaque pixel.
	snapped := make(map[[3]uint8][3]uint8, len(distinct))
	for key, lab := range distinct {
		best := 0
		bestDist := labDistSq(lab.l, lab.a, lab.bb, centres[0].lab)
		for i := 1; i < len(centres); i++ {
			if d := labDistSq(lab.l, lab.a, lab.bb, centres[i].lab); d < bestDist {
				bestDist = d
				best = i
			}
		}
		snapped[key] = centres[best].rgb
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			if img.Pix[i+3] == 0 {
				continue
			}
			rgb := snapped[[3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}]
			img.Pix[i] = rgb[0]
			img.Pix[i+1] = rgb[1]
			img.Pix[i+2] = rgb[2]
		}
	}

	// Restore tracked transparent coordinates after re-projection.
	for _, p := range transparent {
		i := img.PixOffset(p.X, p.Y)
		img.Pix[i] = 0
		img.Pix[i+1] = 0
		img.Pix[i+2] = 0
		img.Pix[i+3] = 0
	}

	return nil
}

const (
	fitIterationLimit = 96
	fitDeltaThreshold = 0.01
)

// fitClusters runs Lloyd's algorithm over the sample. Every random draw,
// the initial centres and any empty-cluster refill, comes from rng, so the
// fitted centres are a pure function of the sample and the seed. Initial
// centres are distinct sample points rather than uniform noise, which also
// converges faster on the narrow colour gamuts typical of pixel art.
func fitClusters(sample clusters.Observations, k int, rng *rand.Rand) clusters.Clusters {
	cc := make(clusters.Clusters, k)
	for i, j := range rng.Perm(len(sample))[:k] {
		cc[i].Center = append(clusters.Coordinates(nil), sample[j].Coordinates()...)
	}

	points := make([]int, len(sample))
	for iter, changes := 0, 1; changes > 0; iter++ {
		changes = 0
		cc.Reset()
		for p, obs := range sample {
			ci := cc.Nearest(obs)
			cc[ci].Append(obs)
			if points[p] != ci {
				points[p] = ci
				changes++
			}
		}

		// A centre can end up with no members when two initial centres
		// started on duplicate sample points. Refill it from a cluster
		// that can spare a point and force another iteration.
		for ci := range cc {
			if len(cc[ci].Observations) == 0 {
				var ri int
				for {
					ri = rng.Intn(len(sample))
					if len(cc[points[ri]].Observations) > 1 {
						break
					}
				}
				cc[ci].Append(sample[ri])
				points[ri] = ci
				changes = len(sample)
			}
		}

		if changes > 0 {
			cc.Recenter()
		}
		if iter == fitIterationLimit || changes < int(float64(len(sample))*fitDeltaThreshold) {
			break
		}
	}
	return cc
}

func labDistSq(l, a, b float64, c [3]float64) float64 {
	dl := l - c[0]
	da := a - c[1]
	db := b - c[2]
	return dl*dl + da*da + db*db
}
