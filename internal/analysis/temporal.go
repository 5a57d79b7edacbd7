package analysis

import (
	"backend-ridehub/internal/gpx"

	"gonum.org/v1/gonum/stat"
)

type SpeedConfig struct {
	StationaryKmh   float64 // below this a segment doesn't count as moving
	MaxPlausibleKmh float64 // above this a segment is a GPS jump artifact
}

type TemporalStats struct {
	AvgSpeedKmh   float64 `json:"avg_speed_kmh"`
	MaxSpeedKmh   float64 `json:"max_speed_kmh"`
	TotalTimeMin  float64 `json:"total_time_min"`
	MovingTimeMin float64 `json:"moving_time_min"`
}

// Temporal computes elapsed/moving time and speed statistics. It returns
// nil unless every point is timestamped (the parser enforces all-or-none
// coverage, so checking via HasTimestamps is enough).
//
// Segments implying a speed above the plausible ceiling are excluded from
// the average and maximum but still sit inside total elapsed time. Zero-dt
// segments contribute nothing anywhere; there is no division by zero.
func Temporal(points []gpx.RawPoint, cumKm []float64, cfg SpeedConfig) *TemporalStats {
	if !gpx.HasTimestamps(points) || len(points) < 2 {
		return nil
	}

	var speeds, weights []float64
	var maxSpeed, movingSec float64

	for i := 0; i < len(points)-1; i++ {
		dt := points[i+1].Time.Sub(*points[i].Time).Seconds()
		if dt <= 0 {
			continue
		}
		distKm := cumKm[i+1] - cumKm[i]
		speed := distKm / dt * 3600

		if speed > cfg.StationaryKmh {
			movingSec += dt
		}
		if cfg.MaxPlausibleKmh > 0 && speed > cfg.MaxPlausibleKmh {
			continue
		}
		speeds = append(speeds, speed)
		weights = append(weights, dt)
		if speed > maxSpeed {
			maxSpeed = speed
		}
	}

	stats := &TemporalStats{
		TotalTimeMin:  points[len(points)-1].Time.Sub(*points[0].Time).Minutes(),
		MovingTimeMin: movingSec / 60,
		MaxSpeedKmh:   maxSpeed,
	}
	if len(speeds) > 0 {
		stats.AvgSpeedKmh = stat.Mean(speeds, weights)
	}
	return stats
}
