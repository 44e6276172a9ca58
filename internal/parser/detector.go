// internal/parser/detector.go
package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/tormoder/fit"
)

type FileType string

const (
	FileTypeFIT     FileType = "fit"
	FileTypeTCX     FileType = "tcx"
	FileTypeGPX     FileType = "gpx"
	FileTypeUnknown FileType = "unknown"
)

// sniffLen is how much of a file is inspected for detection.
const sniffLen = 512

func DetectFileType(filepath string) (FileType, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return FileTypeUnknown, err
	}
	defer file.Close()

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, err
	}

	return DetectFileTypeFromData(header[:n]), nil
}

func DetectFileTypeFromData(data []byte) FileType {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}

	// FIT files carry ".FIT" at offset 8 of a 12 or 14 byte header.
	if len(data) >= 12 && bytes.Equal(data[8:12], []byte(".FIT")) {
		if _, err := fit.DecodeHeader(bytes.NewReader(data)); err == nil {
			return FileTypeFIT
		}
		return FileTypeUnknown
	}

	// XML-based formats, possibly behind a BOM or a prolog.
	text := bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	text = bytes.TrimSpace(text)
	if !bytes.HasPrefix(text, []byte("<")) {
		return FileTypeUnknown
	}
	if bytes.Contains(text, []byte("<gpx")) ||
		bytes.Contains(text, []byte("topografix.com/GPX")) {
		return FileTypeGPX
	}
	if bytes.Contains(text, []byte("TrainingCenterDatabase")) {
		return FileTypeTCX
	}

	return FileTypeUnknown
}

// CheckGPX returns ErrUnsupportedFormat unless data looks like GPX.
func CheckGPX(data []byte) error {
	if ft := DetectFileTypeFromData(data); ft != FileTypeGPX {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ft)
	}
	return nil
}
