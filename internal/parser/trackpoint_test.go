package parser

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/dominikstraub/Waddle/internal/geo"
	"github.com/dominikstraub/Waddle/internal/gpx"
	"github.com/dominikstraub/Waddle/internal/models"
)

func TestBuildTrackPointFirst(t *testing.T) {
	el := withHR(trkpt(46.5, 7.25, baseTime), "145")
	el.Append(gpx.NewText("ele", "1012.5"))

	tp, err := BuildTrackPoint(el, nil)
	if err != nil {
		t.Fatalf("BuildTrackPoint failed: %v", err)
	}

	if !tp.Time.Equal(baseTime) {
		t.Errorf("expected time %v, got %v", baseTime, tp.Time)
	}
	if tp.Position != (models.Position{Lat: 46.5, Lon: 7.25}) {
		t.Errorf("unexpected position %+v", tp.Position)
	}
	if tp.Altitude != 1012.5 {
		t.Errorf("expected altitude 1012.5, got %f", tp.Altitude)
	}
	if tp.HeartRate == nil || *tp.HeartRate != 145 {
		t.Errorf("expected heart rate 145, got %v", tp.HeartRate)
	}
	if tp.Distance != 0 || tp.Speed != 0 {
		t.Errorf("first point must have zero distance and speed, got %f / %f", tp.Distance, tp.Speed)
	}
}

func TestBuildTrackPointWithPrevious(t *testing.T) {
	prev, err := BuildTrackPoint(trkpt(52.0, 4.3, baseTime), nil)
	if err != nil {
		t.Fatal(err)
	}
	prev.Distance = 100

	lat := 52.0 + metersNorth(10)
	tp, err := BuildTrackPoint(trkpt(lat, 4.3, baseTime.Add(2*time.Second)), &prev)
	if err != nil {
		t.Fatalf("BuildTrackPoint failed: %v", err)
	}

	delta := geo.Distance(52.0, 4.3, lat, 4.3)
	if tp.Distance != prev.Distance+delta {
		t.Errorf("expected cumulative distance %f, got %f", prev.Distance+delta, tp.Distance)
	}
	if math.Abs(tp.Speed-5) > 1e-6 {
		t.Errorf("expected speed 5 m/s, got %f", tp.Speed)
	}
}

func TestBuildTrackPointTimeDeltas(t *testing.T) {
	tests := []struct {
		name  string
		dt    time.Duration
		check func(speed float64) bool
	}{
		{"same timestamp gives zero speed", 0, func(s float64) bool { return s == 0 }},
		{"out of order gives negative speed", -time.Second, func(s float64) bool { return s < 0 }},
		{"forward gives positive speed", time.Second, func(s float64) bool { return s > 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, err := BuildTrackPoint(trkpt(46, 7, baseTime), nil)
			if err != nil {
				t.Fatal(err)
			}
			tp, err := BuildTrackPoint(trkpt(46+metersNorth(10), 7, baseTime.Add(tt.dt)), &prev)
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(tp.Speed) {
				t.Errorf("unexpected speed %f", tp.Speed)
			}
			if math.IsInf(tp.Speed, 0) || math.IsNaN(tp.Speed) {
				t.Errorf("speed must be finite, got %f", tp.Speed)
			}
		})
	}
}

func TestBuildTrackPointMissingTimestamp(t *testing.T) {
	tests := []struct {
		name string
		el   *gpx.Element
	}{
		{"no time element", gpx.NewElement("trkpt").WithAttr("lat", "1").WithAttr("lon", "2")},
		{"empty time", gpx.NewElement("trkpt", gpx.NewText("time", "  "))},
		{"garbage time", gpx.NewElement("trkpt", gpx.NewText("time", "yesterday"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTrackPoint(tt.el, nil)
			if !errors.Is(err, ErrMissingTimestamp) {
				t.Errorf("expected ErrMissingTimestamp, got %v", err)
			}
		})
	}
}

func TestBuildTrackPointLenientFields(t *testing.T) {
	el := gpx.NewElement("trkpt",
		gpx.NewText("time", "2025-01-01T10:00:00"),
		gpx.NewText("ele", "n/a"),
	).WithAttr("lat", "not-a-number")
	withHR(el, "fast")

	tp, err := BuildTrackPoint(el, nil)
	if err != nil {
		t.Fatalf("BuildTrackPoint failed: %v", err)
	}
	if tp.Position.Lat != 0 || tp.Position.Lon != 0 {
		t.Errorf("expected coordinates to default to 0, got %+v", tp.Position)
	}
	if tp.Altitude != 0 {
		t.Errorf("expected altitude 0, got %f", tp.Altitude)
	}
	if tp.HeartRate != nil {
		t.Errorf("expected unset heart rate, got %d", *tp.HeartRate)
	}
	if !tp.Time.Equal(baseTime) || tp.Time.Location() != time.UTC {
		t.Errorf("expected zone-less time read as UTC, got %v", tp.Time)
	}
}

func TestBuildTrackPointKeepsZone(t *testing.T) {
	el := gpx.NewElement("trkpt", gpx.NewText("time", "2025-01-01T12:00:00.250+02:00"))
	tp, err := BuildTrackPoint(el, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !tp.Time.Equal(baseTime.Add(250 * time.Millisecond)) {
		t.Errorf("unexpected instant %v", tp.Time)
	}
	if _, offset := tp.Time.Zone(); offset != 2*3600 {
		t.Errorf("expected +02:00 offset to be kept, got %d", offset)
	}
}
