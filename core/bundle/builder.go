package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"SiteFM/config"
	"SiteFM/core/audio"
	"SiteFM/core/utils"
	"SiteFM/logger"
	"SiteFM/model"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Result summarises a finished build.
type Result struct {
	BuildID         string
	Tracks          []model.Track
	EmptyTracks     int
	ProbeFailures   int
	VariantFailures int
	OutDir          string
	ManifestPath    string
	Elapsed         time.Duration
}

// Encoded counts tracks with at least one transcoded variant.
func (r Result) Encoded() int {
	return lo.CountBy(r.Tracks, func(t model.Track) bool {
		return lo.ContainsBy(t.Sources, func(s model.Source) bool {
			return strings.HasPrefix(s.URL, EncDir+"/")
		})
	})
}

// Builder runs a full static bundle build.
type Builder struct {
	cfg     *config.Config
	prober  audio.Prober
	encoder audio.Encoder
	now     func() time.Time
}

// NewBuilder creates a Builder for cfg.
func NewBuilder(cfg *config.Config, prober audio.Prober, encoder audio.Encoder) *Builder {
	return &Builder{
		cfg:     cfg,
		prober:  prober,
		encoder: encoder,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for generated_at.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// checkOutDir refuses output roots that would wipe an input, or that sit
// inside one and so get scanned and watched along with it.
func (b *Builder) checkOutDir() error {
	out := b.cfg.DistDir
	if out == "" {
		return &Error{Code: ErrCodeOutputDir, Err: errors.New("output directory is empty")}
	}
	for _, in := range []string{b.cfg.MusicDir, b.cfg.SiteDir} {
		if in == "" {
			continue
		}
		contains, err := utils.IsWithin(out, in)
		if err != nil {
			return &Error{Code: ErrCodeOutputDir, Path: out, Err: err}
		}
		if contains {
			return &Error{Code: ErrCodeOutputDir, Path: out, Err: fmt.Errorf("refusing to wipe a directory containing %s", in)}
		}
		nested, err := utils.IsWithin(in, out)
		if err != nil {
			return &Error{Code: ErrCodeOutputDir, Path: out, Err: err}
		}
		if nested {
			return &Error{Code: ErrCodeOutputDir, Path: out, Err: fmt.Errorf("output must not live inside %s", in)}
		}
	}
	return nil
}

// Run builds the bundle: clean output, site assets, variants, manifest.
// Per-file problems are logged and counted; only errors that leave no
// usable bundle are returned.
func (b *Builder) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{
		BuildID:      uuid.NewString(),
		OutDir:       b.cfg.DistDir,
		ManifestPath: filepath.Join(b.cfg.DistDir, ManifestName),
	}

	logger.Info("开始构建",
		logger.String("build_id", res.BuildID),
		logger.String("music", b.cfg.MusicDir),
		logger.String("site", b.cfg.SiteDir),
		logger.String("out", b.cfg.DistDir))

	if err := b.checkOutDir(); err != nil {
		return res, err
	}
	if err := os.RemoveAll(b.cfg.DistDir); err != nil {
		return res, &Error{Code: ErrCodeOutputDir, Path: b.cfg.DistDir, Err: err}
	}
	if err := os.MkdirAll(b.cfg.DistDir, 0755); err != nil {
		return res, &Error{Code: ErrCodeOutputDir, Path: b.cfg.DistDir, Err: err}
	}

	assets, err := CopySiteAssets(b.cfg.SiteDir, b.cfg.DistDir)
	if err != nil {
		return res, err
	}
	logger.Debug("site assets copied", logger.Strings("assets", assets))

	pub := b.cfg.Publish
	canEncode := false
	if pub.EncodeLossless {
		canEncode = b.encoder.Available(ctx)
		if !canEncode {
			logger.Warn("ffmpeg 不可用，无损文件将不会转码",
				logger.String("ffmpeg", b.cfg.FFmpegPath))
		}
	}

	files, err := Scan(b.cfg.MusicDir)
	if err != nil {
		return res, err
	}
	logger.Info("扫描完成", logger.Int("files", len(files)))

	producer := NewProducer(b.cfg.DistDir, VariantOptions{
		PublishOriginals: pub.Originals,
		EncodeLossless:   pub.EncodeLossless,
		AACBitrate:       pub.AACBitrate,
		MP3Bitrate:       pub.MP3Bitrate,
	}, b.encoder, canEncode)

	tracks, stats, err := NewAssembler(b.prober, producer, b.cfg.Workers).Assemble(ctx, files)
	if err != nil {
		return res, &Error{Code: ErrCodeCanceled, Err: err}
	}
	SortTracks(tracks)

	if err := WriteManifest(res.ManifestPath, tracks, b.now()); err != nil {
		return res, err
	}

	res.Tracks = tracks
	res.EmptyTracks = stats.EmptyTracks
	res.ProbeFailures = stats.ProbeFailures
	res.VariantFailures = stats.VariantFailures
	res.Elapsed = time.Since(start)

	logger.Info("构建完成",
		logger.String("build_id", res.BuildID),
		logger.Int("tracks", len(tracks)),
		logger.Int("empty", res.EmptyTracks),
		logger.Int("probe_failures", res.ProbeFailures),
		logger.Int("variant_failures", res.VariantFailures),
		logger.Duration("elapsed", res.Elapsed))
	return res, nil
}
