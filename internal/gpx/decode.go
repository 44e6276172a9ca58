package gpx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html/charset"
)

// ErrDocumentTooLarge is returned when a document holds more elements than
// the decoder's limit allows.
var ErrDocumentTooLarge = errors.New("gpx document exceeds element limit")

// Decoder turns GPX XML into a tree of Elements.
type Decoder struct {
	// MaxElements caps the number of elements read. Zero means no limit.
	MaxElements int
}

// Decode reads a whole document from r and returns its root element, which
// must be <gpx>.
func (d Decoder) Decode(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	// Older devices still write ISO-8859-1 and windows-1252 files.
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Element
		stack []*Element
		count int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse GPX: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			count++
			if d.MaxElements > 0 && count > d.MaxElements {
				return nil, fmt.Errorf("%w (%d)", ErrDocumentTooLarge, d.MaxElements)
			}
			el := &Element{Local: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.WithAttr(a.Name.Local, a.Value)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("failed to parse GPX: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Nodes = append(parent.Nodes, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Content += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("failed to parse GPX: document is empty")
	}
	if root.Local != "gpx" {
		return nil, fmt.Errorf("failed to parse GPX: root element is <%s>, not <gpx>", root.Local)
	}
	return root, nil
}

// Decode reads a document from r without an element limit.
func Decode(r io.Reader) (*Element, error) {
	return Decoder{}.Decode(r)
}

// FileLoader loads GPX documents from disk.
type FileLoader struct {
	MaxElements int
}

// Load opens and decodes the file at path.
func (l FileLoader) Load(path string) (Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	root, err := Decoder{MaxElements: l.MaxElements}.Decode(file)
	if err != nil {
		return nil, err
	}
	return root, nil
}
