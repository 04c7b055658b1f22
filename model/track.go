package model

// Source is one playable variant of a track.
type Source struct {
	MIME string `json:"mime"`
	URL  string `json:"url"` // Relative to the output root, always '/'-separated
}

// Track represents an audio file discovered in the library.
type Track struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Artist         string   `json:"artist"`
	Album          string   `json:"album"`
	Duration       *float64 `json:"duration"` // Seconds; nil means unknown and is written as null
	GroupPath      string   `json:"groupPath"`
	Sources        []Source `json:"sources"`
	OriginalFormat string   `json:"originalFormat"` // Lower-case extension without the dot
	RelPath        string   `json:"-"`              // Library-relative source path, used as sort tie-breaker
}

// HasDuration reports whether probing produced a usable duration.
func (t Track) HasDuration() bool {
	return t.Duration != nil
}

// MIMEs lists the variant MIME types in serving order.
func (t Track) MIMEs() []string {
	out := make([]string, 0, len(t.Sources))
	for _, s := range t.Sources {
		out = append(out, s.MIME)
	}
	return out
}
