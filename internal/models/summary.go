package models

import "time"

// Summary contains the activity-level metrics derived from its laps.
type Summary struct {
	StartTime     time.Time     `json:"start_time"`
	ActivityType  string        `json:"activity_type"`
	LapCount      int           `json:"lap_count"`
	PointCount    int           `json:"point_count"`
	Duration      time.Duration `json:"duration"`
	Distance      float64       `json:"distance"`  // in meters
	MaxSpeed      float64       `json:"max_speed"` // in m/s
	AvgSpeed      float64       `json:"avg_speed"` // in m/s
	MaxHeartRate  int           `json:"max_heart_rate"`
	AvgHeartRate  int           `json:"avg_heart_rate"`
	ElevationGain float64       `json:"elevation_gain"` // in meters
	ElevationLoss float64       `json:"elevation_loss"` // in meters
	Start         *Position     `json:"start,omitempty"`
}

// Summary aggregates the laps of the activity. Totals are sums of the lap
// totals, so gaps between segments count toward neither distance nor time.
func (a *Activity) Summary() Summary {
	s := Summary{
		StartTime:    a.StartTime,
		ActivityType: a.Type,
		LapCount:     len(a.Laps),
	}

	var totalTime float64
	var hrSum, hrCount int

	for _, lap := range a.Laps {
		s.Distance += lap.TotalDistance
		totalTime += lap.TotalTime
		if lap.MaxSpeed > s.MaxSpeed {
			s.MaxSpeed = lap.MaxSpeed
		}

		for i, p := range lap.TrackPoints {
			s.PointCount++
			if s.Start == nil {
				start := p.Position
				s.Start = &start
			}

			if p.HeartRate != nil {
				hrSum += *p.HeartRate
				hrCount++
				if *p.HeartRate > s.MaxHeartRate {
					s.MaxHeartRate = *p.HeartRate
				}
			}

			if i > 0 {
				delta := p.Altitude - lap.TrackPoints[i-1].Altitude
				if delta > 0 {
					s.ElevationGain += delta
				} else {
					s.ElevationLoss -= delta
				}
			}
		}
	}

	s.Duration = time.Duration(totalTime * float64(time.Second))
	if totalTime > 0 {
		s.AvgSpeed = s.Distance / totalTime
	}
	if hrCount > 0 {
		s.AvgHeartRate = hrSum / hrCount
	}

	return s
}
