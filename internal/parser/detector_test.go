package parser

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func fitHeader() []byte {
	h := make([]byte, 12)
	h[0] = 12   // header size
	h[1] = 0x10 // protocol 1.0
	binary.LittleEndian.PutUint16(h[2:4], 2093)
	binary.LittleEndian.PutUint32(h[4:8], 100) // data size
	copy(h[8:12], ".FIT")
	return h
}

func TestDetectFileTypeFromData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want FileType
	}{
		{"gpx with prolog", []byte(`<?xml version="1.0"?><gpx version="1.1">`), FileTypeGPX},
		{"gpx without prolog", []byte("\n  <gpx creator=\"x\">"), FileTypeGPX},
		{"gpx with bom", []byte("\xef\xbb\xbf<?xml version=\"1.0\"?>\n<gpx>"), FileTypeGPX},
		{"tcx", []byte(`<?xml version="1.0"?><TrainingCenterDatabase xmlns="x">`), FileTypeTCX},
		{"fit", fitHeader(), FileTypeFIT},
		{"short", []byte("ab"), FileTypeUnknown},
		{"text", []byte("gpx but not xml"), FileTypeUnknown},
		{"empty", nil, FileTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFileTypeFromData(tt.data); got != tt.want {
				t.Errorf("DetectFileTypeFromData() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectFileType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.gpx")
	if err := os.WriteFile(path, []byte(`<gpx></gpx>`), 0644); err != nil {
		t.Fatal(err)
	}

	ft, err := DetectFileType(path)
	if err != nil {
		t.Fatalf("DetectFileType failed: %v", err)
	}
	if ft != FileTypeGPX {
		t.Errorf("expected gpx, got %s", ft)
	}

	if _, err := DetectFileType(filepath.Join(dir, "missing")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestCheckGPX(t *testing.T) {
	if err := CheckGPX([]byte(`<gpx/>`)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckGPX(fitHeader()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
