package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dominikstraub/Waddle/internal/geo"
	"github.com/dominikstraub/Waddle/internal/gpx"
	"github.com/dominikstraub/Waddle/internal/models"
)

// Layouts accepted for <time>. The second covers devices that omit the
// zone designator; such times are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// BuildTrackPoint converts a <trkpt> node into a TrackPoint. prev is the
// point built just before it in the same lap, or nil for the first one.
//
// Missing lat/lon attributes and a missing <ele> read as 0. A missing or
// malformed heart rate leaves HeartRate nil. Out-of-order timestamps give a
// negative speed.
func BuildTrackPoint(node gpx.Node, prev *models.TrackPoint) (models.TrackPoint, error) {
	t, err := pointTime(node)
	if err != nil {
		return models.TrackPoint{}, err
	}

	tp := models.TrackPoint{
		Time: t,
		Position: models.Position{
			Lat: floatAttr(node, "lat"),
			Lon: floatAttr(node, "lon"),
		},
		Altitude:  floatText(node.Child("ele")),
		HeartRate: heartRate(node),
	}

	if prev == nil {
		return tp, nil
	}

	delta := geo.Distance(prev.Position.Lat, prev.Position.Lon, tp.Position.Lat, tp.Position.Lon)
	tp.Distance = prev.Distance + delta

	if dt := tp.Time.Sub(prev.Time).Seconds(); dt != 0 {
		tp.Speed = delta / dt
	}

	return tp, nil
}

func pointTime(node gpx.Node) (time.Time, error) {
	el := node.Child("time")
	if el == nil {
		return time.Time{}, ErrMissingTimestamp
	}
	text := el.Text()
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q", ErrMissingTimestamp, text)
}

func floatAttr(node gpx.Node, name string) float64 {
	v, ok := node.Attr(name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}

func floatText(node gpx.Node) float64 {
	if node == nil {
		return 0
	}
	f, err := strconv.ParseFloat(node.Text(), 64)
	if err != nil {
		return 0
	}
	return f
}

// heartRate reads extensions/TrackPointExtension/hr. Prefixes differ
// between vendors (gpxtpx:, ns3:) but the local names are stable.
func heartRate(node gpx.Node) *int {
	el := gpx.Path(node, "extensions", "TrackPointExtension", "hr")
	if el == nil {
		return nil
	}
	f, err := strconv.ParseFloat(el.Text(), 64)
	if err != nil || f < 0 {
		return nil
	}
	bpm := int(math.Round(f))
	return &bpm
}
