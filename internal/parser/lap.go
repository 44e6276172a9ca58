package parser

import (
	"fmt"

	"github.com/dominikstraub/Waddle/internal/gpx"
	"github.com/dominikstraub/Waddle/internal/models"
)

// BuildLap folds the <trkpt> nodes of one segment into a Lap, threading
// each built point into the next as its predecessor. Any point error
// fails the whole lap.
func BuildLap(points []gpx.Node) (models.Lap, error) {
	if len(points) == 0 {
		return models.Lap{}, ErrEmptySegment
	}

	lap := models.Lap{
		TrackPoints: make([]models.TrackPoint, 0, len(points)),
	}

	var prev *models.TrackPoint
	for i, node := range points {
		tp, err := BuildTrackPoint(node, prev)
		if err != nil {
			return models.Lap{}, fmt.Errorf("trackpoint %d: %w", i, err)
		}

		if prev != nil {
			lap.TotalTime += tp.Time.Sub(prev.Time).Seconds()
		}
		if tp.Speed > lap.MaxSpeed {
			lap.MaxSpeed = tp.Speed
		}

		lap.TrackPoints = append(lap.TrackPoints, tp)
		last := tp
		prev = &last
	}

	lap.TotalDistance = prev.Distance

	return lap, nil
}
