package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"
)

func TestEncodeArgs(t *testing.T) {
	aac, err := encodeArgs("ffmpeg", CodecAAC, "in.flac", "out.m4a", "128k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-i", "in.flac", "-vn",
		"-c:a", "aac", "-b:a", "128k", "-movflags", "+faststart",
		"-map_metadata", "0", "out.m4a",
	}
	if !slices.Equal(aac, want) {
		t.Fatalf("aac args:\n got %v\nwant %v", aac, want)
	}

	mp3, err := encodeArgs("ffmpeg", CodecMP3, "in.wav", "out.mp3", "192k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slices.Contains(mp3, "-movflags") {
		t.Fatalf("mp3 must not request faststart: %v", mp3)
	}
	if !slices.Contains(mp3, "libmp3lame") || mp3[len(mp3)-1] != "out.mp3" {
		t.Fatalf("mp3 args: %v", mp3)
	}

	if _, err := encodeArgs("ffmpeg", Codec("opus"), "a", "b", "1k"); err == nil {
		t.Fatalf("unknown codec should fail")
	}
}

func TestAvailable_MissingBinary(t *testing.T) {
	p := NewFFmpegProcessor(filepath.Join(t.TempDir(), "no-ffmpeg"), time.Second)
	if p.Available(context.Background()) {
		t.Fatalf("missing binary must not be available")
	}
}

func TestEncode_FailureRemovesPartialOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	// Writes half a file to the last argument, then fails.
	script := "#!/bin/sh\nfor a; do last=$a; done\necho partial > \"$last\"\necho 'Unknown encoder' >&2\nexit 1\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake: %v", err)
	}

	out := filepath.Join(dir, "enc", "sub", "a.mp3")
	err := NewFFmpegProcessor(bin, 5*time.Second).Encode(context.Background(), CodecMP3, "a.flac", out, "256k")
	if !errors.Is(err, ErrToolFailed) {
		t.Fatalf("want ErrToolFailed, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("partial output should be removed, stat err=%v", statErr)
	}
}

func TestEncode_Success(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor a; do last=$a; done\necho encoded > \"$last\"\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake: %v", err)
	}

	p := NewFFmpegProcessor(bin, 5*time.Second)
	if !p.Available(context.Background()) {
		t.Fatalf("fake ffmpeg should be available")
	}
	out := filepath.Join(dir, "enc", "Jazz", "t.m4a")
	if err := p.Encode(context.Background(), CodecAAC, "t.flac", out, "192k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}
