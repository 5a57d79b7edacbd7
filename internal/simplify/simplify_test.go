package simplify

import (
	"math"
	"testing"

	"backend-ridehub/internal/gpx"
	"backend-ridehub/internal/shared/geo"
)

// syntheticRoute builds a wiggly route with n points. The wiggle keeps the
// track from being perfectly collinear, which would collapse under any
// tolerance.
func syntheticRoute(n int) []gpx.RawPoint {
	points := make([]gpx.RawPoint, n)
	for i := range points {
		f := float64(i)
		points[i] = gpx.RawPoint{
			Lat: 45.0 + f*0.0004 + 0.0002*math.Sin(f/3),
			Lon: 7.0 + f*0.0003 + 0.0002*math.Cos(f/5),
		}
	}
	return points
}

func cumKm(points []gpx.RawPoint) []float64 {
	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	for i, p := range points {
		lats[i], lons[i] = p.Lat, p.Lon
	}
	return geo.CumulativeKm(lats, lons)
}

func TestSmallTrackKeptWhole(t *testing.T) {
	points := syntheticRoute(150)
	kept := Indices(points, Config{})
	if len(kept) != 150 {
		t.Fatalf("expected all points kept, got %d", len(kept))
	}
	for i, idx := range kept {
		if idx != i {
			t.Fatalf("expected identity mapping at %d, got %d", i, idx)
		}
	}
}

func TestBudgetRespected(t *testing.T) {
	points := syntheticRoute(10000)
	kept := Indices(points, Config{})
	if len(kept) > 500 {
		t.Fatalf("kept %d points, budget is 500", len(kept))
	}
	if len(kept) < 2 {
		t.Fatalf("degenerate result: %d points", len(kept))
	}
	if kept[0] != 0 || kept[len(kept)-1] != len(points)-1 {
		t.Fatalf("endpoints must survive simplification")
	}
	for i := 1; i < len(kept); i++ {
		if kept[i] <= kept[i-1] {
			t.Fatalf("kept indices must be strictly increasing")
		}
	}
}

func TestDistancePreservation(t *testing.T) {
	points := syntheticRoute(10000)
	cum := cumKm(points)
	rawTotal := cum[len(cum)-1]

	kept := Indices(points, Config{})

	// The kept points are stamped with raw cumulative distance, so the
	// simplified total is exactly the raw total no matter how hard the
	// shape was thinned.
	simplifiedTotal := cum[kept[len(kept)-1]]
	if math.Abs(simplifiedTotal-rawTotal)/rawTotal > 0.001 {
		t.Fatalf("total distance drifted: raw %v vs simplified %v", rawTotal, simplifiedTotal)
	}
}

func TestCollinearCollapses(t *testing.T) {
	points := make([]gpx.RawPoint, 1000)
	for i := range points {
		points[i] = gpx.RawPoint{Lat: 45.0 + float64(i)*0.0001, Lon: 7.0}
	}
	kept := Indices(points, Config{})
	if len(kept) != 2 {
		t.Fatalf("collinear track should collapse to endpoints, got %d", len(kept))
	}
}

func TestDuplicatePointsNeverSelected(t *testing.T) {
	points := syntheticRoute(600)
	// a burst of stationary samples mid-track
	for i := 300; i < 340; i++ {
		points[i] = points[299]
	}
	kept := Indices(points, Config{})
	dupKept := 0
	for _, idx := range kept {
		if idx > 299 && idx < 340 {
			dupKept++
		}
	}
	if dupKept != 0 {
		t.Fatalf("zero-deviation duplicates were selected: %d", dupKept)
	}
}

func TestIterationBoundReturnsBestCandidate(t *testing.T) {
	points := syntheticRoute(5000)
	// one iteration at a hopeless tolerance: must still return something
	kept := Indices(points, Config{BaseEpsilon: 1e-12, MaxIterations: 1})
	if len(kept) < 2 {
		t.Fatalf("expected a candidate even on exhaustion")
	}
}

func TestPerpendicularDistance(t *testing.T) {
	a := gpx.RawPoint{Lat: 0, Lon: 0}
	b := gpx.RawPoint{Lat: 0, Lon: 1}
	p := gpx.RawPoint{Lat: 0.5, Lon: 0.5}
	if d := perpendicularDistance(p, a, b); math.Abs(d-0.5) > 1e-9 {
		t.Fatalf("expected 0.5, got %v", d)
	}

	// degenerate chord falls back to point distance
	if d := perpendicularDistance(p, a, a); math.Abs(d-math.Hypot(0.5, 0.5)) > 1e-9 {
		t.Fatalf("unexpected degenerate distance %v", d)
	}
}
