package bundle

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"SiteFM/core/utils"
	"SiteFM/model"
)

// ManifestName is the manifest file in the output root.
const ManifestName = "index.json"

// TimestampLayout formats generated_at (always UTC).
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// SortTracks orders tracks by (groupPath, title) with byte-wise
// comparison; the relative source path breaks ties.
func SortTracks(tracks []model.Track) {
	slices.SortStableFunc(tracks, func(a, b model.Track) int {
		return cmp.Or(
			cmp.Compare(a.GroupPath, b.GroupPath),
			cmp.Compare(a.Title, b.Title),
			cmp.Compare(a.RelPath, b.RelPath),
		)
	})
}

// EncodeManifest renders already sorted tracks as indented JSON.
func EncodeManifest(tracks []model.Track, generatedAt time.Time) ([]byte, error) {
	if tracks == nil {
		tracks = []model.Track{}
	}
	m := model.Manifest{
		GeneratedAt: generatedAt.UTC().Format(TimestampLayout),
		Tracks:      tracks,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteManifest writes the manifest atomically to path.
func WriteManifest(path string, tracks []model.Track, generatedAt time.Time) error {
	b, err := EncodeManifest(tracks, generatedAt)
	if err != nil {
		return &Error{Code: ErrCodeManifest, Path: path, Err: err}
	}
	if err := utils.WriteFileAtomic(path, b); err != nil {
		return &Error{Code: ErrCodeManifest, Path: path, Err: err}
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (model.Manifest, error) {
	var m model.Manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}
