package track

import (
	"math"

	"backend-ridehub/internal/analysis"
	"backend-ridehub/internal/config"
	"backend-ridehub/internal/gpx"
	"backend-ridehub/internal/shared/geo"
	"backend-ridehub/internal/simplify"
)

// PipelineConfig bundles the knobs for one processing run.
type PipelineConfig struct {
	Limits   gpx.Limits
	Simplify simplify.Config
	Climb    analysis.ClimbConfig
	Speed    analysis.SpeedConfig
}

func PipelineFromConfig(cfg config.Config) PipelineConfig {
	return PipelineConfig{
		Limits: gpx.Limits{
			MaxBytes:  cfg.MaxUploadBytes,
			MaxPoints: cfg.MaxRawPoints,
		},
		Climb: analysis.ClimbConfig{
			MinGradient: cfg.ClimbMinGradient,
			MinLengthKm: cfg.ClimbMinLengthKm,
			MaxGapKm:    cfg.ClimbMaxGapKm,
		},
		Speed: analysis.SpeedConfig{
			StationaryKmh:   cfg.StationarySpeedKmh,
			MaxPlausibleKmh: cfg.MaxPlausibleSpeedKmh,
		},
	}
}

// Process runs the full sequential pipeline over a raw file: parse, raw
// cumulative distance, analyses over the raw sequence, then simplification
// with raw-derived values re-attached to the kept points.
func Process(raw []byte, cfg PipelineConfig) (*Result, error) {
	points, err := gpx.Parse(raw, cfg.Limits)
	if err != nil {
		return nil, err
	}
	return ProcessPoints(points, cfg), nil
}

// ProcessPoints is the post-parse pipeline. It cannot fail: every numeric
// degeneracy (zero-distance or zero-time segments) is handled locally by
// exclusion, and a simplification that cannot converge still yields its
// best candidate.
func ProcessPoints(points []gpx.RawPoint, cfg PipelineConfig) *Result {
	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	for i, p := range points {
		lats[i], lons[i] = p.Lat, p.Lon
	}
	cumKm := geo.CumulativeKm(lats, lons)

	res := &Result{
		TotalPoints:     len(points),
		TotalDistanceKm: cumKm[len(cumKm)-1],
		Elevation:       analysis.Elevation(points),
		HasTimestamps:   gpx.HasTimestamps(points),
	}

	smoothed := analysis.SmoothedGradients(points, cumKm)

	kept := simplify.Indices(points, cfg.Simplify)
	res.Points = make([]Point, len(kept))
	for seq, idx := range kept {
		p := Point{
			Sequence:   seq,
			Lat:        points[idx].Lat,
			Lng:        points[idx].Lon,
			DistanceKm: cumKm[idx],
		}
		if points[idx].ElevationM != nil {
			ele := *points[idx].ElevationM
			p.ElevationM = &ele
		}
		if g := smoothed[idx]; !math.IsNaN(g) {
			grad := g
			p.Gradient = &grad
		}
		res.Points[seq] = p
	}

	if res.HasTimestamps {
		temporal := analysis.Temporal(points, cumKm, cfg.Speed)
		segGrads := analysis.SegmentGradients(points, cumKm)
		avgGrad, maxGrad := analysis.GradientSummary(segGrads, smoothed, cumKm)

		res.Statistics = &Statistics{
			AvgSpeedKmh:          temporal.AvgSpeedKmh,
			MaxSpeedKmh:          temporal.MaxSpeedKmh,
			TotalTimeMin:         temporal.TotalTimeMin,
			MovingTimeMin:        temporal.MovingTimeMin,
			AvgGradient:          avgGrad,
			MaxGradient:          maxGrad,
			TopClimbs:            analysis.TopClimbs(points, cumKm, cfg.Climb),
			GradientDistribution: analysis.Distribution(segGrads, cumKm),
		}
	}

	return res
}
