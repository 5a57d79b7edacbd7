package analysis

import (
	"time"

	"backend-ridehub/internal/gpx"
	"backend-ridehub/internal/shared/geo"
)

// lonStepPer100m is roughly 100 m of longitude at 45N.
const lonStepPer100m = 0.00127

// ridePoints lays out points west-to-east at 45N, one per elevation entry,
// ~100 m apart. Entries may be nil for points without an elevation sample.
// If secondsApart > 0 each point is stamped secondsApart after the previous.
func ridePoints(elevations []*float64, secondsApart int) []gpx.RawPoint {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	points := make([]gpx.RawPoint, len(elevations))
	for i := range points {
		points[i] = gpx.RawPoint{
			Lat:        45.0,
			Lon:        7.0 + float64(i)*lonStepPer100m,
			ElevationM: elevations[i],
		}
		if secondsApart > 0 {
			ts := start.Add(time.Duration(i*secondsApart) * time.Second)
			points[i].Time = &ts
		}
	}
	return points
}

func cumKmOf(points []gpx.RawPoint) []float64 {
	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	for i, p := range points {
		lats[i], lons[i] = p.Lat, p.Lon
	}
	return geo.CumulativeKm(lats, lons)
}

func elev(v float64) *float64 { return &v }

// ramp returns count elevations climbing from base by stepM per point.
func ramp(base, stepM float64, count int) []*float64 {
	out := make([]*float64, count)
	for i := range out {
		out[i] = elev(base + float64(i)*stepM)
	}
	return out
}

// flat returns count identical elevations.
func flat(v float64, count int) []*float64 {
	return ramp(v, 0, count)
}
