package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func hr(v int) *int { return &v }

func TestActivitySummary(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	activity := &Activity{
		StartTime: base,
		Type:      "Running",
		Laps: []Lap{
			{
				TrackPoints: []TrackPoint{
					{Time: base, Position: Position{Lat: 46, Lon: 7}, Altitude: 100, HeartRate: hr(120)},
					{Time: base.Add(10 * time.Second), Altitude: 110, HeartRate: hr(140), Distance: 30, Speed: 3},
					{Time: base.Add(20 * time.Second), Altitude: 105, Distance: 60, Speed: 3},
				},
				TotalDistance: 60,
				TotalTime:     20,
				MaxSpeed:      3,
			},
			{
				TrackPoints: []TrackPoint{
					{Time: base.Add(time.Minute), Altitude: 50, HeartRate: hr(160)},
					{Time: base.Add(time.Minute + 20*time.Second), Altitude: 70, Distance: 100, Speed: 5},
				},
				TotalDistance: 100,
				TotalTime:     20,
				MaxSpeed:      5,
			},
		},
	}

	want := Summary{
		StartTime:     base,
		ActivityType:  "Running",
		LapCount:      2,
		PointCount:    5,
		Duration:      40 * time.Second,
		Distance:      160,
		MaxSpeed:      5,
		AvgSpeed:      4,
		MaxHeartRate:  160,
		AvgHeartRate:  140,
		ElevationGain: 30,
		ElevationLoss: 5,
		Start:         &Position{Lat: 46, Lon: 7},
	}

	if diff := cmp.Diff(want, activity.Summary()); diff != "" {
		t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
	}
	if n := activity.PointCount(); n != 5 {
		t.Errorf("PointCount() = %d, want 5", n)
	}
}

func TestSummarySinglePoint(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	activity := &Activity{
		StartTime: base,
		Laps:      []Lap{{TrackPoints: []TrackPoint{{Time: base}}}},
	}

	s := activity.Summary()
	if s.Duration != 0 || s.Distance != 0 || s.AvgSpeed != 0 || s.AvgHeartRate != 0 {
		t.Errorf("expected zero totals for a single point, got %+v", s)
	}
}

func TestLapDuration(t *testing.T) {
	lap := Lap{TotalTime: 1.5}
	if d := lap.Duration(); d != 1500*time.Millisecond {
		t.Errorf("Duration() = %v, want 1.5s", d)
	}
}
