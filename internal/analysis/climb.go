package analysis

import (
	"fmt"
	"math"
	"sort"

	"backend-ridehub/internal/gpx"
)

type Climb struct {
	StartKm        float64 `json:"start_km"`
	EndKm          float64 `json:"end_km"`
	DistanceKm     float64 `json:"distance_km"`
	ElevationGainM float64 `json:"elevation_gain_m"`
	AvgGradient    float64 `json:"avg_gradient"`
	Description    string  `json:"description"`
}

type ClimbConfig struct {
	MinGradient float64 // percent a smoothed sample must exceed to count as ascending
	MinLengthKm float64 // shorter candidates are noise, not climbs
	MaxGapKm    float64 // non-ascending gaps below this merge adjacent runs
}

// score favors sustained steep climbs over long shallow ones.
func (c Climb) score() float64 {
	return c.ElevationGainM * c.AvgGradient
}

// TopClimbs segments the raw sequence into sustained-ascent runs and keeps
// the three most significant, ordered by descending score with ties broken
// by larger elevation gain. A flat route yields an empty, non-nil slice.
func TopClimbs(points []gpx.RawPoint, cumKm []float64, cfg ClimbConfig) []Climb {
	climbs := []Climb{}
	if len(points) < 2 {
		return climbs
	}

	smoothed := SmoothedGradients(points, cumKm)

	type run struct{ start, end int } // inclusive point index range
	var runs []run
	inRun := false
	var cur run
	for i, g := range smoothed {
		ascending := !math.IsNaN(g) && g > cfg.MinGradient
		switch {
		case ascending && !inRun:
			cur = run{start: i, end: i}
			inRun = true
		case ascending:
			cur.end = i
		case inRun:
			runs = append(runs, cur)
			inRun = false
		}
	}
	if inRun {
		runs = append(runs, cur)
	}

	// Riders don't perceive a short flat stretch as ending a climb.
	merged := runs[:0]
	for _, r := range runs {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if cumKm[r.start]-cumKm[last.end] < cfg.MaxGapKm {
				last.end = r.end
				continue
			}
		}
		merged = append(merged, r)
	}

	for _, r := range merged {
		dist := cumKm[r.end] - cumKm[r.start]
		if dist < cfg.MinLengthKm {
			continue
		}
		gain := ascentM(points[r.start : r.end+1])
		if gain <= 0 {
			continue
		}
		c := Climb{
			StartKm:        cumKm[r.start],
			EndKm:          cumKm[r.end],
			DistanceKm:     dist,
			ElevationGainM: gain,
			AvgGradient:    gain / (dist * 1000) * 100,
		}
		c.Description = fmt.Sprintf("%.1f km at %.1f%%", c.DistanceKm, c.AvgGradient)
		climbs = append(climbs, c)
	}

	sort.SliceStable(climbs, func(i, j int) bool {
		si, sj := climbs[i].score(), climbs[j].score()
		if si != sj {
			return si > sj
		}
		return climbs[i].ElevationGainM > climbs[j].ElevationGainM
	})
	if len(climbs) > 3 {
		climbs = climbs[:3]
	}
	return climbs
}

func ascentM(points []gpx.RawPoint) float64 {
	var gain float64
	var prev *float64
	for i := range points {
		ele := points[i].ElevationM
		if ele == nil {
			continue
		}
		if prev != nil && *ele > *prev {
			gain += *ele - *prev
		}
		prev = ele
	}
	return gain
}
