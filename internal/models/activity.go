package models

import "time"

// Position is a WGS84 coordinate in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TrackPoint is one GPS sample with the metrics derived from the point
// before it in the same lap.
type TrackPoint struct {
	Time      time.Time `json:"time"`
	Position  Position  `json:"position"`
	Altitude  float64   `json:"altitude"`             // meters, 0 if absent
	HeartRate *int      `json:"heart_rate,omitempty"` // bpm
	Distance  float64   `json:"distance"`             // meters from the lap's first point
	Speed     float64   `json:"speed"`                // m/s from the previous point
}

// Lap is one GPX track segment.
type Lap struct {
	TrackPoints   []TrackPoint `json:"track_points"`
	TotalDistance float64      `json:"total_distance"` // meters
	TotalTime     float64      `json:"total_time"`     // seconds
	MaxSpeed      float64      `json:"max_speed"`      // m/s
}

// Duration returns TotalTime as a time.Duration.
func (l Lap) Duration() time.Duration {
	return time.Duration(l.TotalTime * float64(time.Second))
}

// Activity is one parsed GPX track.
type Activity struct {
	StartTime time.Time `json:"start_time"`
	Type      string    `json:"type"`
	Laps      []Lap     `json:"laps"`
}

// PointCount returns the number of trackpoints across all laps.
func (a *Activity) PointCount() int {
	n := 0
	for _, lap := range a.Laps {
		n += len(lap.TrackPoints)
	}
	return n
}
