package parser

import "errors"

var (
	// ErrFileNotFound means the input path does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidActivity means the document lacks the structure needed to
	// build an activity: it failed to load, has no track, or the first
	// track has no first point.
	ErrInvalidActivity = errors.New("invalid activity")
	// ErrMissingTimestamp means a trackpoint has no parseable <time>.
	ErrMissingTimestamp = errors.New("trackpoint is missing a timestamp")
	// ErrEmptySegment is returned by BuildLap for a segment without points.
	ErrEmptySegment = errors.New("segment has no trackpoints")
	// ErrUnsupportedFormat is returned for inputs that are not GPX.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
