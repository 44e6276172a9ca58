package parser

import (
	"io"
	"os"

	"github.com/dominikstraub/Waddle/internal/gpx"
	"github.com/dominikstraub/Waddle/internal/models"
)

// Parser turns GPX input into activities.
type Parser interface {
	ParseFile(path string) (*models.Activity, error)
	ParseFileMulti(path string) ([]*models.Activity, error)
	ParseReader(r io.Reader) (*models.Activity, error)
	ParseReaderMulti(r io.Reader) ([]*models.Activity, error)
}

// FileChecker reports whether a path can be read.
type FileChecker interface {
	Exists(path string) bool
}

// DocumentLoader loads the root node of a GPX document.
type DocumentLoader interface {
	Load(path string) (gpx.Node, error)
}

// OSFileChecker checks paths on the local filesystem.
type OSFileChecker struct{}

func (OSFileChecker) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Option configures a GPXParser.
type Option func(*GPXParser)

// WithFileChecker replaces the filesystem existence check.
func WithFileChecker(fc FileChecker) Option {
	return func(p *GPXParser) { p.files = fc }
}

// WithLoader replaces the document loader used by the path-based methods.
func WithLoader(l DocumentLoader) Option {
	return func(p *GPXParser) { p.loader = l }
}

// WithWorkers sets how many tracks multi-track parsing derives at once.
// Values below 2 parse sequentially.
func WithWorkers(n int) Option {
	return func(p *GPXParser) { p.workers = n }
}

// WithMaxElements limits the number of XML elements read per document.
// It applies to readers and to the default file loader.
func WithMaxElements(n int) Option {
	return func(p *GPXParser) { p.maxElements = n }
}

// NewGPXParser creates a parser reading from the local filesystem unless
// options say otherwise.
func NewGPXParser(opts ...Option) *GPXParser {
	p := &GPXParser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.files == nil {
		p.files = OSFileChecker{}
	}
	if p.loader == nil {
		p.loader = gpx.FileLoader{MaxElements: p.maxElements}
	}
	return p
}

var _ Parser = (*GPXParser)(nil)
