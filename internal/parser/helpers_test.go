package parser

import (
	"fmt"
	"math"
	"time"

	"github.com/dominikstraub/Waddle/internal/geo"
	"github.com/dominikstraub/Waddle/internal/gpx"
)

var baseTime = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

// metersNorth is the latitude offset that moves a point d meters north.
func metersNorth(d float64) float64 {
	return d / (geo.EarthRadius * math.Pi / 180)
}

func trkpt(lat, lon float64, t time.Time) *gpx.Element {
	return gpx.NewElement("trkpt",
		gpx.NewText("time", t.Format(time.RFC3339Nano)),
	).WithAttr("lat", fmt.Sprint(lat)).WithAttr("lon", fmt.Sprint(lon))
}

func withHR(el *gpx.Element, bpm string) *gpx.Element {
	return el.Append(gpx.NewElement("extensions",
		gpx.NewElement("TrackPointExtension", gpx.NewText("hr", bpm)),
	))
}

func trkseg(points ...*gpx.Element) *gpx.Element {
	return gpx.NewElement("trkseg", points...)
}

func trk(name string, segs ...*gpx.Element) *gpx.Element {
	el := gpx.NewElement("trk")
	if name != "" {
		el.Append(gpx.NewText("name", name))
	}
	return el.Append(segs...)
}

func doc(children ...*gpx.Element) *gpx.Element {
	return gpx.NewElement("gpx", children...)
}

func nodes(els ...*gpx.Element) []gpx.Node {
	out := make([]gpx.Node, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}

// walk returns n points heading north, step meters and one second apart.
func walk(n int, step float64) []*gpx.Element {
	pts := make([]*gpx.Element, n)
	for i := range pts {
		pts[i] = trkpt(46+metersNorth(step*float64(i)), 7, baseTime.Add(time.Duration(i)*time.Second))
	}
	return pts
}
