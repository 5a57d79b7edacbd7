// Package hover resolves an arbitrary chart-cursor distance to an analytics
// sample over the simplified point sequence. It is pure and allocation-light
// on purpose: the client calls it on every pointer-move event.
package hover

// Point is one simplified track vertex as the read boundary serves it.
type Point struct {
	Lat        float64
	Lng        float64
	DistanceKm float64
	ElevationM *float64
	Gradient   *float64
}

// Sample is the tooltip payload for a hovered distance.
type Sample struct {
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	DistanceKm float64  `json:"distance_km"`
	ElevationM *float64 `json:"elevation_m,omitempty"`
	Gradient   *float64 `json:"gradient,omitempty"`
}

// At interpolates the sample at targetKm. Scalar fields (distance,
// elevation, gradient) are linearly interpolated between the bracketing
// vertices so the tooltip is numerically exact at the hovered distance.
// The coordinate is NOT interpolated: a lat/lng blend draws a chord that
// drifts off the rendered polyline, so the marker snaps to the nearer real
// vertex instead. Targets outside the track clamp to the endpoints.
//
// The second return is false only for an empty sequence.
func At(points []Point, targetKm float64) (Sample, bool) {
	if len(points) == 0 {
		return Sample{}, false
	}
	if targetKm <= points[0].DistanceKm {
		return vertexSample(points[0]), true
	}
	last := points[len(points)-1]
	if targetKm >= last.DistanceKm {
		return vertexSample(last), true
	}

	// first vertex at or past the target
	lo, hi := 0, len(points)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if points[mid].DistanceKm < targetKm {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	a, b := points[lo-1], points[lo]

	span := b.DistanceKm - a.DistanceKm
	t := 0.0
	if span > 0 {
		t = (targetKm - a.DistanceKm) / span
	}

	s := Sample{
		DistanceKm: targetKm,
		ElevationM: lerpOpt(a.ElevationM, b.ElevationM, t),
		Gradient:   lerpOpt(a.Gradient, b.Gradient, t),
	}
	if t < 0.5 {
		s.Lat, s.Lng = a.Lat, a.Lng
	} else {
		s.Lat, s.Lng = b.Lat, b.Lng
	}
	return s, true
}

func vertexSample(p Point) Sample {
	return Sample{
		Lat:        p.Lat,
		Lng:        p.Lng,
		DistanceKm: p.DistanceKm,
		ElevationM: copyOpt(p.ElevationM),
		Gradient:   copyOpt(p.Gradient),
	}
}

// lerpOpt interpolates two optional scalars; it yields nothing unless both
// ends carry a value, since inventing half an interpolation would show a
// fabricated number in the tooltip.
func lerpOpt(a, b *float64, t float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a + (*b-*a)*t
	return &v
}

func copyOpt(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
