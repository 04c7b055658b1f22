package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GiGurra/cmder"
)

const availabilityTimeout = 10 * time.Second

// FFmpegProcessor implements the Encoder interface using ffmpeg.
type FFmpegProcessor struct {
	ffmpegPath string
	timeout    time.Duration
}

// NewFFmpegProcessor creates a new FFmpegProcessor. timeout bounds each encode.
func NewFFmpegProcessor(ffmpegPath string, timeout time.Duration) *FFmpegProcessor {
	return &FFmpegProcessor{ffmpegPath: ffmpegPath, timeout: timeout}
}

// Available runs a trial invocation; any error means ffmpeg is unusable.
func (p *FFmpegProcessor) Available(ctx context.Context) bool {
	res := cmder.New(p.ffmpegPath, "-hide_banner", "-version").
		WithAttemptTimeout(availabilityTimeout).
		Run(ctx)
	return res.Err == nil
}

// encodeArgs builds the ffmpeg command line for one variant. Video streams
// (cover art) are dropped and source tags are carried over.
func encodeArgs(ffmpegPath string, codec Codec, inputFile, outputFile, bitrate string) ([]string, error) {
	args := []string{
		ffmpegPath,
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputFile,
		"-vn",
	}
	switch codec {
	case CodecAAC:
		args = append(args,
			"-c:a", "aac",
			"-b:a", bitrate,
			"-movflags", "+faststart",
		)
	case CodecMP3:
		args = append(args,
			"-c:a", "libmp3lame",
			"-b:a", bitrate,
		)
	default:
		return nil, fmt.Errorf("unsupported codec %q", codec)
	}
	return append(args, "-map_metadata", "0", outputFile), nil
}

// Encode transcodes inputFile into outputFile. On failure the partial
// output is removed so the tree never holds a half-written variant.
func (p *FFmpegProcessor) Encode(ctx context.Context, codec Codec, inputFile, outputFile, bitrate string) error {
	args, err := encodeArgs(p.ffmpegPath, codec, inputFile, outputFile, bitrate)
	if err != nil {
		return err
	}

	outputDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	res := cmder.New(args...).
		WithAttemptTimeout(p.timeout).
		Run(ctx)
	if res.Err != nil {
		_ = os.Remove(outputFile)
		return toolError(p.ffmpegPath, res.Err, res.Combined)
	}
	return nil
}
