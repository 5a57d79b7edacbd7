package analysis

import (
	"math"

	"backend-ridehub/internal/gpx"
)

// Distribution bucket edges on absolute gradient, in percent.
const (
	flatMax     = 3.0
	moderateMax = 6.0
	steepMax    = 10.0
)

// smoothWindow is how many raw points on each side feed a smoothed
// gradient sample.
const smoothWindow = 3

// minSmoothSpanKm guards the smoothed gradient against GPS-stationary
// jitter: windows shorter than this horizontally yield no gradient.
const minSmoothSpanKm = 0.01

type Bucket struct {
	DistanceKm float64 `json:"distance_km"`
	Percentage float64 `json:"percentage"`
}

type GradientDistribution struct {
	Flat      Bucket `json:"flat"`
	Moderate  Bucket `json:"moderate"`
	Steep     Bucket `json:"steep"`
	VerySteep Bucket `json:"very_steep"`
}

// SegmentGradients returns the raw per-segment gradient in percent,
// parallel to the segments (len(points)-1 entries). Entries are NaN where
// the gradient is undefined: zero horizontal distance or missing elevation
// on either end. NaN, not zero, so degenerate segments stay out of
// aggregates instead of diluting them.
func SegmentGradients(points []gpx.RawPoint, cumKm []float64) []float64 {
	if len(points) < 2 {
		return nil
	}
	grads := make([]float64, len(points)-1)
	for i := range grads {
		distM := (cumKm[i+1] - cumKm[i]) * 1000
		a, b := points[i].ElevationM, points[i+1].ElevationM
		if distM == 0 || a == nil || b == nil {
			grads[i] = math.NaN()
			continue
		}
		grads[i] = (*b - *a) / distM * 100
	}
	return grads
}

// SmoothedGradients returns a per-point gradient in percent, computed over
// a window of neighboring raw points so a single noisy elevation sample
// cannot produce a spike. NaN where the window has no usable span.
func SmoothedGradients(points []gpx.RawPoint, cumKm []float64) []float64 {
	n := len(points)
	grads := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i - smoothWindow
		if lo < 0 {
			lo = 0
		}
		hi := i + smoothWindow
		if hi > n-1 {
			hi = n - 1
		}

		spanKm := cumKm[hi] - cumKm[lo]
		a, b := points[lo].ElevationM, points[hi].ElevationM
		if spanKm < minSmoothSpanKm || a == nil || b == nil {
			grads[i] = math.NaN()
			continue
		}
		grads[i] = (*b - *a) / (spanKm * 1000) * 100
	}
	return grads
}

// Distribution partitions raw-segment distance into the four gradient
// buckets by absolute magnitude. Undefined segments are excluded, and the
// percentages are taken against the bucketed total, so they close to 100
// within rounding for any track with nonzero distance.
func Distribution(segGradients []float64, cumKm []float64) GradientDistribution {
	var flat, moderate, steep, verySteep float64
	for i, g := range segGradients {
		if math.IsNaN(g) {
			continue
		}
		d := cumKm[i+1] - cumKm[i]
		switch mag := math.Abs(g); {
		case mag < flatMax:
			flat += d
		case mag < moderateMax:
			moderate += d
		case mag < steepMax:
			steep += d
		default:
			verySteep += d
		}
	}

	total := flat + moderate + steep + verySteep
	pct := func(d float64) float64 {
		if total == 0 {
			return 0
		}
		return d / total * 100
	}
	return GradientDistribution{
		Flat:      Bucket{DistanceKm: flat, Percentage: pct(flat)},
		Moderate:  Bucket{DistanceKm: moderate, Percentage: pct(moderate)},
		Steep:     Bucket{DistanceKm: steep, Percentage: pct(steep)},
		VerySteep: Bucket{DistanceKm: verySteep, Percentage: pct(verySteep)},
	}
}

// GradientSummary reduces segment and smoothed gradients to the pair
// reported in route statistics: the distance-weighted average and the
// smoothed maximum.
func GradientSummary(segGradients, smoothed []float64, cumKm []float64) (avg, max float64) {
	var weighted, dist float64
	for i, g := range segGradients {
		if math.IsNaN(g) {
			continue
		}
		d := cumKm[i+1] - cumKm[i]
		weighted += g * d
		dist += d
	}
	if dist > 0 {
		avg = weighted / dist
	}

	for _, g := range smoothed {
		if !math.IsNaN(g) && g > max {
			max = g
		}
	}
	return avg, max
}
