package bundle

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"SiteFM/model"
)

func TestSortTracks(t *testing.T) {
	tracks := []model.Track{
		{Title: "b", GroupPath: "Jazz", RelPath: "Jazz/2"},
		{Title: "a", GroupPath: "Rock", RelPath: "Rock/1"},
		{Title: "Z", GroupPath: "Jazz", RelPath: "Jazz/3"},
		{Title: "x", GroupPath: "", RelPath: "x"},
		{Title: "b", GroupPath: "Jazz", RelPath: "Jazz/1"},
	}
	SortTracks(tracks)
	var got []string
	for _, tr := range tracks {
		got = append(got, tr.RelPath)
	}
	// Byte-wise: "" < "Jazz" < "Rock", "Z" < "b".
	want := "x Jazz/3 Jazz/1 Jazz/2 Rock/1"
	if strings.Join(got, " ") != want {
		t.Fatalf("order = %v, want %s", got, want)
	}
}

func TestEncodeManifest_Shape(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 123456000, time.FixedZone("X", 3600))
	tracks := []model.Track{{
		ID:             "id1",
		Title:          "Blue & <Green>",
		Duration:       nil,
		GroupPath:      "",
		Sources:        []model.Source{},
		OriginalFormat: "flac",
		RelPath:        "a.flac",
	}}
	b, err := EncodeManifest(tracks, at)
	if err != nil {
		t.Fatalf("EncodeManifest: %v", err)
	}
	s := string(b)
	for _, want := range []string{
		`"generated_at": "2024-05-01T11:30:00.123456Z"`,
		`"duration": null`,
		`"groupPath": ""`,
		`"sources": []`,
		`"title": "Blue & <Green>"`,
		`"artist": ""`,
		`"album": ""`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("manifest missing %s:\n%s", want, s)
		}
	}
	if strings.Contains(s, "a.flac") {
		t.Errorf("relative path must not be serialised:\n%s", s)
	}
	if !strings.HasSuffix(s, "}\n") {
		t.Errorf("manifest should end with a newline")
	}
}

func TestEncodeManifest_NilTracks(t *testing.T) {
	b, err := EncodeManifest(nil, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("EncodeManifest: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["tracks"]) != "[]" {
		t.Fatalf("tracks = %s", raw["tracks"])
	}
	if len(raw) != 2 {
		t.Fatalf("unexpected keys: %v", raw)
	}
}

func TestWriteAndReadManifest(t *testing.T) {
	p := filepath.Join(t.TempDir(), ManifestName)
	d := 3.5
	tracks := []model.Track{{
		ID:       "x",
		Title:    "日本語",
		Duration: &d,
		Sources:  []model.Source{{MIME: "audio/mpeg", URL: "audio/raw/日本語.mp3"}},
	}}
	if err := WriteManifest(p, tracks, time.Now()); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	m, err := ReadManifest(p)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(m.Tracks) != 1 || m.Tracks[0].Title != "日本語" || *m.Tracks[0].Duration != 3.5 {
		t.Fatalf("round trip = %+v", m)
	}
}

func TestWriteManifest_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	touch(t, blocker, "x")
	err := WriteManifest(filepath.Join(blocker, ManifestName), nil, time.Now())
	if Code(err) != ErrCodeManifest {
		t.Fatalf("expected manifest error, got %v", err)
	}
}
