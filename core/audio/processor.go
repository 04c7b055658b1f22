package audio

import "context"

// Metadata is what the probe step extracts from a source file.
// A nil Duration means the length is unknown.
type Metadata struct {
	Duration *float64
	Artist   string
	Title    string
	Album    string
}

// Prober extracts duration and tags. Probe always returns usable metadata;
// a non-nil error explains why it may be empty or partial.
type Prober interface {
	Probe(ctx context.Context, path string) (Metadata, error)
}

// Encoder produces compressed variants of a source file.
type Encoder interface {
	// Available reports whether the encoder can run at all.
	Available(ctx context.Context) bool
	// Encode writes the codec variant of input to output.
	Encode(ctx context.Context, codec Codec, input, output, bitrate string) error
}
