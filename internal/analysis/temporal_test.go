package analysis

import (
	"math"
	"testing"
	"time"
)

var testSpeedConfig = SpeedConfig{
	StationaryKmh:   2.0,
	MaxPlausibleKmh: 90.0,
}

func TestTemporalBasics(t *testing.T) {
	// ~100 m every 10 s => ~36 km/h throughout
	points := ridePoints(flat(100, 20), 10)
	cum := cumKmOf(points)

	stats := Temporal(points, cum, testSpeedConfig)
	if stats == nil {
		t.Fatalf("expected temporal stats")
	}
	if math.Abs(stats.TotalTimeMin-190.0/60) > 1e-9 {
		t.Fatalf("total time %v min, want %v", stats.TotalTimeMin, 190.0/60)
	}
	if math.Abs(stats.MovingTimeMin-stats.TotalTimeMin) > 1e-9 {
		t.Fatalf("constant movement: moving %v != total %v", stats.MovingTimeMin, stats.TotalTimeMin)
	}
	if stats.AvgSpeedKmh < 30 || stats.AvgSpeedKmh > 42 {
		t.Fatalf("avg speed %v outside expectation", stats.AvgSpeedKmh)
	}
	if stats.MaxSpeedKmh < stats.AvgSpeedKmh {
		t.Fatalf("max below avg")
	}
}

func TestTemporalNilWithoutTimestamps(t *testing.T) {
	points := ridePoints(flat(100, 10), 0)
	if stats := Temporal(points, cumKmOf(points), testSpeedConfig); stats != nil {
		t.Fatalf("expected nil stats without timestamps, got %+v", stats)
	}
}

func TestTemporalExcludesGPSJumps(t *testing.T) {
	points := ridePoints(flat(100, 20), 10)
	// teleport: ~2 km sideways in one 10 s sample => ~700 km/h
	points[10].Lat += 0.02
	cum := cumKmOf(points)

	stats := Temporal(points, cum, testSpeedConfig)
	if stats.MaxSpeedKmh > testSpeedConfig.MaxPlausibleKmh {
		t.Fatalf("jump artifact leaked into max speed: %v", stats.MaxSpeedKmh)
	}
	if stats.AvgSpeedKmh > testSpeedConfig.MaxPlausibleKmh {
		t.Fatalf("jump artifact leaked into avg speed: %v", stats.AvgSpeedKmh)
	}
	// elapsed time still covers the excluded segments
	if math.Abs(stats.TotalTimeMin-190.0/60) > 1e-9 {
		t.Fatalf("total time must ignore plausibility: %v", stats.TotalTimeMin)
	}
}

func TestTemporalStationaryAndZeroDT(t *testing.T) {
	points := ridePoints(flat(100, 10), 10)
	// park between samples 4 and 7: same position, clock running
	for i := 5; i <= 7; i++ {
		points[i].Lon = points[4].Lon
	}
	// and a duplicate timestamp pair
	points[9].Time = points[8].Time
	cum := cumKmOf(points)

	stats := Temporal(points, cum, testSpeedConfig)
	if stats == nil {
		t.Fatalf("expected stats")
	}
	// 3 stationary segments of 10 s each drop out of moving time
	expectedMoving := stats.TotalTimeMin - 30.0/60
	if math.Abs(stats.MovingTimeMin-expectedMoving) > 1e-6 {
		t.Fatalf("moving time %v, want %v", stats.MovingTimeMin, expectedMoving)
	}
}

func TestTemporalAllStationary(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	points := ridePoints(flat(100, 5), 10)
	for i := range points {
		points[i].Lon = points[0].Lon
		ts := start.Add(time.Duration(i*10) * time.Second)
		points[i].Time = &ts
	}
	cum := cumKmOf(points)

	stats := Temporal(points, cum, testSpeedConfig)
	if stats.MovingTimeMin != 0 {
		t.Fatalf("no movement expected, got %v min", stats.MovingTimeMin)
	}
	if stats.MaxSpeedKmh != 0 || stats.AvgSpeedKmh != 0 {
		t.Fatalf("expected zero speeds, got %+v", stats)
	}
}
