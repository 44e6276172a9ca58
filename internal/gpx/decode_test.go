package gpx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"
     xmlns:gpxtpx="http://www.garmin.com/xmlschemas/TrackPointExtension/v1">
	<trk>
		<name>Running</name>
		<trkseg>
			<trkpt lat="46.0" lon="7.0">
				<ele>1000</ele>
				<time>2025-01-01T10:00:00Z</time>
				<extensions>
					<gpxtpx:TrackPointExtension>
						<gpxtpx:hr>145</gpxtpx:hr>
					</gpxtpx:TrackPointExtension>
				</extensions>
			</trkpt>
			<trkpt lat="46.001" lon="7.001">
				<time>2025-01-01T10:00:01Z</time>
			</trkpt>
		</trkseg>
	</trk>
</gpx>`

func TestDecode(t *testing.T) {
	root, err := Decode(strings.NewReader(sampleGPX))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if root.Name() != "gpx" {
		t.Fatalf("expected root gpx, got %q", root.Name())
	}
	if v, ok := root.Attr("version"); !ok || v != "1.1" {
		t.Errorf("expected version=1.1, got %q (present=%v)", v, ok)
	}
	if _, ok := root.Attr("gpxtpx"); ok {
		t.Errorf("namespace declarations should not be exposed as attributes")
	}

	trk := root.Child("trk")
	if trk == nil {
		t.Fatalf("expected trk element")
	}
	if name := ChildText(trk, "name"); name != "Running" {
		t.Errorf("expected track name Running, got %q", name)
	}

	points := Path(trk, "trkseg").Children("trkpt")
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if lat, _ := points[0].Attr("lat"); lat != "46.0" {
		t.Errorf("expected lat 46.0, got %q", lat)
	}
	if ele := ChildText(points[0], "ele"); ele != "1000" {
		t.Errorf("expected ele 1000, got %q", ele)
	}

	hr := Path(points[0], "extensions", "TrackPointExtension", "hr")
	if hr == nil || hr.Text() != "145" {
		t.Fatalf("expected heart rate 145 through prefixed extension elements")
	}
	if Path(points[1], "extensions", "TrackPointExtension", "hr") != nil {
		t.Errorf("expected no heart rate on second point")
	}
}

func TestDecodeElementLimit(t *testing.T) {
	_, err := Decoder{MaxElements: 5}.Decode(strings.NewReader(sampleGPX))
	if !errors.Is(err, ErrDocumentTooLarge) {
		t.Fatalf("expected ErrDocumentTooLarge, got %v", err)
	}

	if _, err := (Decoder{MaxElements: 100}).Decode(strings.NewReader(sampleGPX)); err != nil {
		t.Fatalf("unexpected error under limit: %v", err)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not gpx", `<TrainingCenterDatabase></TrainingCenterDatabase>`},
		{"truncated", `<gpx><trk><name>x</name>`},
		{"garbage", `this is not xml`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.input)); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestDecodeLatin1(t *testing.T) {
	// "Zürich" encoded as ISO-8859-1
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><gpx><trk><name>Z\xfcrich</name></trk></gpx>"
	root, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if name := ChildText(root.Child("trk"), "name"); name != "Zürich" {
		t.Errorf("expected Zürich, got %q", name)
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.gpx")
	if err := os.WriteFile(path, []byte(sampleGPX), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := FileLoader{}.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(root.Children("trk")) != 1 {
		t.Errorf("expected 1 track")
	}

	if _, err := (FileLoader{}).Load(filepath.Join(t.TempDir(), "missing.gpx")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
