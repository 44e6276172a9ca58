package parser

import (
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/dominikstraub/Waddle/internal/gpx"
	"github.com/dominikstraub/Waddle/internal/models"
)

// GPXParser implements Parser for GPX 1.0/1.1 documents.
type GPXParser struct {
	files       FileChecker
	loader      DocumentLoader
	workers     int
	maxElements int
}

// ParseFile parses the first track of the file at path into one Activity.
func (p *GPXParser) ParseFile(path string) (*models.Activity, error) {
	root, err := p.load(path)
	if err != nil {
		return nil, err
	}
	return p.ParseDocument(root)
}

// ParseFileMulti parses every track of the file at path.
func (p *GPXParser) ParseFileMulti(path string) ([]*models.Activity, error) {
	root, err := p.load(path)
	if err != nil {
		return nil, err
	}
	return p.ParseDocumentMulti(root)
}

// ParseReader is ParseFile for an already open document.
func (p *GPXParser) ParseReader(r io.Reader) (*models.Activity, error) {
	root, err := p.decode(r)
	if err != nil {
		return nil, err
	}
	return p.ParseDocument(root)
}

// ParseReaderMulti is ParseFileMulti for an already open document.
func (p *GPXParser) ParseReaderMulti(r io.Reader) ([]*models.Activity, error) {
	root, err := p.decode(r)
	if err != nil {
		return nil, err
	}
	return p.ParseDocumentMulti(root)
}

// ParseDocument builds an Activity from the first <trk> under root. The
// first segment of that track must have a first point with a valid time,
// which becomes the start time. Empty segments are skipped.
func (p *GPXParser) ParseDocument(root gpx.Node) (*models.Activity, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidActivity)
	}
	trk := root.Child("trk")
	if trk == nil {
		return nil, fmt.Errorf("%w: no track found", ErrInvalidActivity)
	}

	first := gpx.Path(trk, "trkseg", "trkpt")
	if first == nil {
		return nil, fmt.Errorf("%w: first segment has no trackpoints", ErrInvalidActivity)
	}

	startTime, err := pointTime(first)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}

	laps, err := buildLaps(trk)
	if err != nil {
		return nil, err
	}

	return &models.Activity{
		StartTime: startTime,
		Type:      gpx.ChildText(trk, "name"),
		Laps:      laps,
	}, nil
}

// ParseDocumentMulti builds one Activity per <trk> under root, in document
// order. Tracks whose first segment or first point is missing are skipped;
// timestamp errors inside a track still fail the whole call. A document
// without any <trk> or <wpt> is invalid, one without usable tracks yields
// an empty slice.
func (p *GPXParser) ParseDocumentMulti(root gpx.Node) ([]*models.Activity, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidActivity)
	}
	tracks := root.Children("trk")
	if len(tracks) == 0 && root.Child("wpt") == nil {
		return nil, fmt.Errorf("%w: no tracks or waypoints found", ErrInvalidActivity)
	}

	results := make([]*models.Activity, len(tracks))

	if p.workers > 1 {
		g := new(errgroup.Group)
		g.SetLimit(p.workers)
		for i, trk := range tracks {
			i, trk := i, trk
			g.Go(func() error {
				a, err := parseTrack(i, trk)
				if err != nil {
					return err
				}
				results[i] = a
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, trk := range tracks {
			a, err := parseTrack(i, trk)
			if err != nil {
				return nil, err
			}
			results[i] = a
		}
	}

	activities := make([]*models.Activity, 0, len(results))
	for _, a := range results {
		if a != nil {
			activities = append(activities, a)
		}
	}
	return activities, nil
}

// parseTrack returns nil without error when the track must be skipped.
func parseTrack(index int, trk gpx.Node) (*models.Activity, error) {
	first := gpx.Path(trk, "trkseg", "trkpt")
	if first == nil {
		return nil, nil
	}

	startTime, err := pointTime(first)
	if err != nil {
		return nil, fmt.Errorf("track %d: start time: %w", index, err)
	}

	laps, err := buildLaps(trk)
	if err != nil {
		return nil, fmt.Errorf("track %d: %w", index, err)
	}

	activityType := gpx.ChildText(trk, "type")
	if activityType == "" {
		activityType = gpx.ChildText(trk, "name")
	}

	return &models.Activity{
		StartTime: startTime,
		Type:      activityType,
		Laps:      laps,
	}, nil
}

func buildLaps(trk gpx.Node) ([]models.Lap, error) {
	var laps []models.Lap
	for i, seg := range trk.Children("trkseg") {
		points := seg.Children("trkpt")
		if len(points) == 0 {
			continue
		}
		lap, err := BuildLap(points)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		laps = append(laps, lap)
	}
	return laps, nil
}

func (p *GPXParser) load(path string) (gpx.Node, error) {
	if !p.files.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	root, err := p.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidActivity, path, err)
	}
	return root, nil
}

func (p *GPXParser) decode(r io.Reader) (gpx.Node, error) {
	root, err := gpx.Decoder{MaxElements: p.maxElements}.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidActivity, err)
	}
	return root, nil
}
