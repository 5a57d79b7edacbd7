// Package simplify reduces a raw GPS point sequence to a rendering-bound
// subset using Douglas-Peucker line simplification with an adaptive
// tolerance search. It returns indices into the raw sequence so callers can
// re-attach raw-derived values (cumulative distance, elevation, gradient)
// to the kept points instead of recomputing them from the thinned polyline.
package simplify

import (
	"math"

	"backend-ridehub/internal/gpx"
)

type Config struct {
	// Target size range for the simplified sequence. A result below
	// MinPoints at the base tolerance is accepted as-is; fidelity matters
	// more than hitting the lower bound.
	MinPoints int
	MaxPoints int

	// BaseEpsilon is the starting perpendicular-deviation tolerance in
	// degrees, doubled on each retry. ~1e-5 deg is roughly a metre.
	BaseEpsilon   float64
	MaxIterations int
}

func (c Config) withDefaults() Config {
	if c.MinPoints == 0 {
		c.MinPoints = 200
	}
	if c.MaxPoints == 0 {
		c.MaxPoints = 500
	}
	if c.BaseEpsilon == 0 {
		c.BaseEpsilon = 1e-5
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 10
	}
	return c
}

// Indices selects the raw indices to keep, always including both endpoints.
// Sequences already within the budget are returned whole. Otherwise the
// tolerance is doubled until the kept count fits under MaxPoints; if the
// iteration bound runs out the tightest candidate found is returned rather
// than failing the track.
func Indices(points []gpx.RawPoint, cfg Config) []int {
	cfg = cfg.withDefaults()

	if len(points) <= cfg.MaxPoints {
		all := make([]int, len(points))
		for i := range all {
			all[i] = i
		}
		return all
	}

	eps := cfg.BaseEpsilon
	var last []int
	for i := 0; i < cfg.MaxIterations; i++ {
		last = douglasPeucker(points, eps)
		if len(last) <= cfg.MaxPoints {
			return last
		}
		eps *= 2
	}
	return last
}

// douglasPeucker runs the split-at-max-deviation recursion with an explicit
// work stack, so adversarially long tracks cannot blow the goroutine stack.
func douglasPeucker(points []gpx.RawPoint, epsilon float64) []int {
	n := len(points)
	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	type span struct{ start, end int }
	stack := []span{{0, n - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.end-s.start < 2 {
			continue
		}

		maxDist := 0.0
		maxIdx := -1
		for i := s.start + 1; i < s.end; i++ {
			d := perpendicularDistance(points[i], points[s.start], points[s.end])
			if d > maxDist {
				maxDist = d
				maxIdx = i
			}
		}

		if maxIdx >= 0 && maxDist > epsilon {
			keep[maxIdx] = true
			stack = append(stack, span{s.start, maxIdx}, span{maxIdx, s.end})
		}
	}

	kept := make([]int, 0, n)
	for i, k := range keep {
		if k {
			kept = append(kept, i)
		}
	}
	return kept
}

// perpendicularDistance measures deviation of p from the chord a-b on a
// locally flat lat/lon plane, with longitude scaled by cos(lat) so a degree
// means roughly the same ground distance on both axes. Collinear and
// duplicate points yield zero and are never selected.
func perpendicularDistance(p, a, b gpx.RawPoint) float64 {
	scale := math.Cos(a.Lat * math.Pi / 180)

	px, py := (p.Lon-a.Lon)*scale, p.Lat-a.Lat
	bx, by := (b.Lon-a.Lon)*scale, b.Lat-a.Lat

	segLen2 := bx*bx + by*by
	if segLen2 == 0 {
		return math.Hypot(px, py)
	}

	t := (px*bx + py*by) / segLen2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-t*bx, py-t*by)
}
