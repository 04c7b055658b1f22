package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/GiGurra/cmder"
	"github.com/dhowden/tag"
)

// FFprobe implements Prober by shelling out to ffprobe.
type FFprobe struct {
	ffprobePath string
	timeout     time.Duration
	tagFallback bool
}

// NewFFprobe creates a prober. With tagFallback set, embedded tags are read
// in-process when ffprobe is unusable; duration then stays unknown.
func NewFFprobe(ffprobePath string, timeout time.Duration, tagFallback bool) *FFprobe {
	return &FFprobe{ffprobePath: ffprobePath, timeout: timeout, tagFallback: tagFallback}
}

// probeArgs requests only the format duration and three tags, as JSON.
func probeArgs(ffprobePath, inputFile string) []string {
	return []string{
		ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration:format_tags=artist,title,album",
		"-of", "json",
		inputFile,
	}
}

// Probe runs ffprobe on inputFile.
func (p *FFprobe) Probe(ctx context.Context, inputFile string) (Metadata, error) {
	res := cmder.New(probeArgs(p.ffprobePath, inputFile)...).
		WithAttemptTimeout(p.timeout).
		Run(ctx)
	if res.Err != nil {
		return p.fallback(inputFile, toolError(p.ffprobePath, res.Err, res.Combined))
	}

	md, err := ParseProbeOutput([]byte(res.StdOut))
	if err != nil {
		return p.fallback(inputFile, err)
	}
	return md, nil
}

func (p *FFprobe) fallback(inputFile string, cause error) (Metadata, error) {
	if !p.tagFallback {
		return Metadata{}, cause
	}
	md, err := readEmbeddedTags(inputFile)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w (tag fallback: %v)", cause, err)
	}
	return md, cause
}

func readEmbeddedTags(inputFile string) (Metadata, error) {
	f, err := os.Open(inputFile)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		Title:  strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
	}, nil
}

// ffprobeOutput defines the structure for ffprobe JSON output.
type ffprobeOutput struct {
	Format *struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

// ParseProbeOutput decodes ffprobe's JSON. A missing or malformed duration
// leaves Duration nil; only a missing format section is an error.
func ParseProbeOutput(out []byte) (Metadata, error) {
	var probeData ffprobeOutput
	if err := json.Unmarshal(out, &probeData); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrBadOutput, err)
	}
	if probeData.Format == nil {
		return Metadata{}, fmt.Errorf("%w: no format section", ErrBadOutput)
	}

	tags := probeData.Format.Tags
	return Metadata{
		Duration: parseDuration(probeData.Format.Duration),
		Artist:   lookupTag(tags, "artist"),
		Title:    lookupTag(tags, "title"),
		Album:    lookupTag(tags, "album"),
	}, nil
}

func parseDuration(s string) *float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return nil
	}
	return &d
}

// lookupTag matches tag names case-insensitively. Containers disagree on
// case (ID3 "title", Vorbis "TITLE"); exact lower then upper case win over
// other spellings, which are tried in sorted order.
func lookupTag(tags map[string]string, name string) string {
	if v := strings.TrimSpace(tags[name]); v != "" {
		return v
	}
	if v := strings.TrimSpace(tags[strings.ToUpper(name)]); v != "" {
		return v
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, name) {
			if v := strings.TrimSpace(tags[k]); v != "" {
				return v
			}
		}
	}
	return ""
}
