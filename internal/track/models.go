package track

import (
	"time"

	"backend-ridehub/internal/analysis"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Record is one processed track file. The elevation group is a single
// nullable struct so gain/loss/max/min are present or absent together.
type Record struct {
	ID               string                   `json:"id"`
	TripID           string                   `json:"trip_id"`
	TotalPoints      int                      `json:"total_points"`
	SimplifiedPoints int                      `json:"simplified_points"`
	TotalDistanceKm  float64                  `json:"total_distance_km"`
	Elevation        *analysis.ElevationStats `json:"elevation,omitempty"`
	HasElevation     bool                     `json:"has_elevation"`
	HasTimestamps    bool                     `json:"has_timestamps"`
	Status           Status                   `json:"processing_status"`
	ErrorDetail      string                   `json:"error_detail,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	ProcessedAt      *time.Time               `json:"processed_at,omitempty"`
}

// Point is a member of the rendering-bound simplified sequence.
// DistanceKm is the raw-sequence cumulative distance at the kept index,
// never recomputed from the thinned polyline, so the simplified total
// always equals the raw total.
type Point struct {
	Sequence   int      `json:"sequence"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	ElevationM *float64 `json:"elevation_m,omitempty"`
	DistanceKm float64  `json:"distance_km"`
	Gradient   *float64 `json:"gradient,omitempty"`
}

// Statistics is computed once at processing time and immutable after.
// Present only for timestamped tracks.
type Statistics struct {
	AvgSpeedKmh          float64                       `json:"avg_speed_kmh"`
	MaxSpeedKmh          float64                       `json:"max_speed_kmh"`
	TotalTimeMin         float64                       `json:"total_time_min"`
	MovingTimeMin        float64                       `json:"moving_time_min"`
	AvgGradient          float64                       `json:"avg_gradient"`
	MaxGradient          float64                       `json:"max_gradient"`
	TopClimbs            []analysis.Climb              `json:"top_climbs"`
	GradientDistribution analysis.GradientDistribution `json:"gradient_distribution"`
}

// Result is everything the pipeline derives from one raw file.
type Result struct {
	TotalPoints     int
	TotalDistanceKm float64
	Elevation       *analysis.ElevationStats
	HasTimestamps   bool
	Points          []Point
	Statistics      *Statistics
}

// Payload is what the status and read boundaries return for a record.
// Points and Statistics are populated only once the record is completed.
type Payload struct {
	Record     Record      `json:"record"`
	Points     []Point     `json:"points,omitempty"`
	Statistics *Statistics `json:"statistics,omitempty"`
}
