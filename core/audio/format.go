package audio

import (
	"mime"
	"path/filepath"
	"strings"
)

// Format describes a supported source extension.
type Format struct {
	Ext      string // without the dot, lower case
	MIME     string
	Lossless bool
}

var formats = map[string]Format{
	"mp3":  {Ext: "mp3", MIME: "audio/mpeg"},
	"m4a":  {Ext: "m4a", MIME: "audio/mp4"},
	"aac":  {Ext: "aac", MIME: "audio/aac"},
	"ogg":  {Ext: "ogg", MIME: "audio/ogg"},
	"wav":  {Ext: "wav", MIME: "audio/wav", Lossless: true},
	"flac": {Ext: "flac", MIME: "audio/flac", Lossless: true},
}

// Lookup classifies an extension ("FLAC", ".flac" and "flac" are equal).
func Lookup(ext string) (Format, bool) {
	f, ok := formats[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return f, ok
}

// FormatOf classifies a file by its name.
func FormatOf(path string) (Format, bool) {
	return Lookup(filepath.Ext(path))
}

// ContentType picks the MIME type for any file in the output tree.
// Audio uses the same table as the manifest so served headers match it.
func ContentType(path string) string {
	if f, ok := FormatOf(path); ok {
		return f.MIME
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Codec is an encoded fallback variant.
type Codec string

const (
	CodecAAC Codec = "aac"
	CodecMP3 Codec = "mp3"
)

// FallbackCodecs is the preferred-first order of encoded variants.
var FallbackCodecs = []Codec{CodecAAC, CodecMP3}

// MIME of the encoded output.
func (c Codec) MIME() string {
	switch c {
	case CodecAAC:
		return "audio/mp4"
	case CodecMP3:
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}

// Ext is the output file extension without the dot.
func (c Codec) Ext() string {
	switch c {
	case CodecAAC:
		return "m4a"
	default:
		return string(c)
	}
}
