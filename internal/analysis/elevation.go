// Package analysis derives ride statistics from the raw point sequence.
// Everything here works on raw points, never on the simplified ones:
// smoothing away vertices before measuring would underestimate elevation
// gain and distort the gradient profile.
package analysis

import "backend-ridehub/internal/gpx"

// ElevationStats is the gain/loss/max/min group. It is nil as a whole when
// the track carries no elevation, never partially populated.
type ElevationStats struct {
	GainM float64 `json:"gain_m"`
	LossM float64 `json:"loss_m"`
	MaxM  float64 `json:"max_m"`
	MinM  float64 `json:"min_m"`
}

// Elevation sums positive and negative deltas between consecutive raw
// points. Loss is reported as a positive magnitude. Points without an
// elevation sample break the delta chain but still count for nothing.
func Elevation(points []gpx.RawPoint) *ElevationStats {
	var stats *ElevationStats
	var prev *float64

	for i := range points {
		ele := points[i].ElevationM
		if ele == nil {
			continue
		}
		if stats == nil {
			stats = &ElevationStats{MaxM: *ele, MinM: *ele}
		}
		if *ele > stats.MaxM {
			stats.MaxM = *ele
		}
		if *ele < stats.MinM {
			stats.MinM = *ele
		}
		if prev != nil {
			delta := *ele - *prev
			if delta > 0 {
				stats.GainM += delta
			} else {
				stats.LossM -= delta
			}
		}
		prev = ele
	}
	return stats
}
