package gpx

import (
	"errors"
	"fmt"
	"time"

	gpxgo "github.com/tkrajina/gpxgo/gpx"
)

// Parse failures are reported against one of these sentinels so the
// processing layer can map them to a terminal record state.
var (
	ErrMalformed = errors.New("malformed track file")
	ErrOversize  = errors.New("track file exceeds upload ceiling")
)

// Limits caps what Parse will accept. MaxBytes is checked before the file
// is decoded at all; MaxPoints right after decoding.
type Limits struct {
	MaxBytes  int64
	MaxPoints int
}

// RawPoint is one recorded GPS sample in original recording order.
// Immutable once parsed.
type RawPoint struct {
	Lat        float64
	Lon        float64
	ElevationM *float64
	Time       *time.Time
}

// HasElevation reports whether any point carries an elevation sample.
func HasElevation(points []RawPoint) bool {
	for i := range points {
		if points[i].ElevationM != nil {
			return true
		}
	}
	return false
}

// HasTimestamps reports whether the first point carries a timestamp.
// Parse guarantees coverage is all-or-none, so checking one point suffices.
func HasTimestamps(points []RawPoint) bool {
	return len(points) > 0 && points[0].Time != nil
}

// Parse decodes a GPX payload into the flat recorded point sequence.
//
// Beyond structural decoding it enforces: at least two points, coordinates
// in range, timestamp coverage on all points or none, and non-decreasing
// timestamps. A single out-of-order sample fails the whole file rather than
// being silently reordered, since reordering can mask GPS glitches the
// uploader should see.
func Parse(data []byte, limits Limits) ([]RawPoint, error) {
	if limits.MaxBytes > 0 && int64(len(data)) > limits.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrOversize, len(data))
	}

	parsed, err := gpxgo.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	points := flatten(parsed)
	if limits.MaxPoints > 0 && len(points) > limits.MaxPoints {
		return nil, fmt.Errorf("%w: %d points", ErrOversize, len(points))
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrMalformed, len(points))
	}

	if err := validate(points); err != nil {
		return nil, err
	}
	return points, nil
}

func flatten(parsed *gpxgo.GPX) []RawPoint {
	var points []RawPoint
	appendPoint := func(p gpxgo.GPXPoint) {
		raw := RawPoint{Lat: p.Latitude, Lon: p.Longitude}
		if p.Elevation.NotNull() {
			ele := p.Elevation.Value()
			raw.ElevationM = &ele
		}
		if !p.Timestamp.IsZero() {
			ts := p.Timestamp
			raw.Time = &ts
		}
		points = append(points, raw)
	}

	for _, track := range parsed.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				appendPoint(p)
			}
		}
	}
	if len(points) == 0 {
		for _, route := range parsed.Routes {
			for _, p := range route.Points {
				appendPoint(p)
			}
		}
	}
	return points
}

func validate(points []RawPoint) error {
	timestamped := points[0].Time != nil
	var prev *time.Time

	for i := range points {
		p := &points[i]
		if p.Lat < -90 || p.Lat > 90 {
			return fmt.Errorf("%w: point %d latitude %v out of range", ErrMalformed, i, p.Lat)
		}
		if p.Lon < -180 || p.Lon > 180 {
			return fmt.Errorf("%w: point %d longitude %v out of range", ErrMalformed, i, p.Lon)
		}
		if (p.Time != nil) != timestamped {
			return fmt.Errorf("%w: point %d breaks timestamp coverage (all points or none)", ErrMalformed, i)
		}
		if p.Time != nil {
			if prev != nil && p.Time.Before(*prev) {
				return fmt.Errorf("%w: point %d timestamp out of order", ErrMalformed, i)
			}
			prev = p.Time
		}
	}
	return nil
}
