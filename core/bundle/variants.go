package bundle

import (
	"context"
	"path"
	"path/filepath"

	"SiteFM/core/audio"
	"SiteFM/core/utils"
	"SiteFM/logger"
	"SiteFM/model"
)

// Output subtrees, relative to the output root.
const (
	RawDir = "audio/raw"
	EncDir = "audio/enc"
)

// VariantOptions is the publish policy applied to every source file.
type VariantOptions struct {
	PublishOriginals bool
	EncodeLossless   bool
	AACBitrate       string
	MP3Bitrate       string
}

// Producer writes the playable variants of a source file into the output
// tree and reports them in serving order.
type Producer struct {
	outDir  string
	opts    VariantOptions
	encoder audio.Encoder
	// canEncode is the capability check result, fixed for the whole build.
	canEncode bool
}

// NewProducer creates a Producer. canEncode must come from a single
// Encoder.Available call made before any file is processed.
func NewProducer(outDir string, opts VariantOptions, encoder audio.Encoder, canEncode bool) *Producer {
	return &Producer{outDir: outDir, opts: opts, encoder: encoder, canEncode: canEncode}
}

func (p *Producer) bitrate(codec audio.Codec) string {
	if codec == audio.CodecAAC {
		return p.opts.AACBitrate
	}
	return p.opts.MP3Bitrate
}

// Produce returns the variants of f, encoded ones first and the original
// last, plus the number of variants that failed. A failed variant is
// logged and left out; it never aborts the file.
func (p *Producer) Produce(ctx context.Context, f SourceFile) ([]model.Source, int) {
	sources := []model.Source{}
	failed := 0

	if f.Format.Lossless && p.opts.EncodeLossless && p.canEncode {
		for _, codec := range audio.FallbackCodecs {
			url := path.Join(EncDir, f.EncodeBase+"."+codec.Ext())
			out := filepath.Join(p.outDir, filepath.FromSlash(url))
			if err := p.encoder.Encode(ctx, codec, f.Path, out, p.bitrate(codec)); err != nil {
				failed++
				logger.Warn("转码失败，跳过该版本",
					logger.String("file", f.RelPath),
					logger.String("variant", string(codec)),
					logger.ErrorField(err))
				continue
			}
			sources = append(sources, model.Source{MIME: codec.MIME(), URL: url})
		}
	}

	copyOriginal := p.opts.PublishOriginals
	if !copyOriginal && !f.Format.Lossless {
		// Already-compressed files have no other variant; copy them anyway
		// rather than dropping the track.
		copyOriginal = true
		logger.Info("originals disabled, copying compressed source as its only variant",
			logger.String("file", f.RelPath))
	}
	if copyOriginal {
		url := path.Join(RawDir, f.RelPath)
		if err := utils.CopyFile(f.Path, filepath.Join(p.outDir, filepath.FromSlash(url))); err != nil {
			failed++
			logger.Warn("复制原始文件失败",
				logger.String("file", f.RelPath),
				logger.String("variant", "original"),
				logger.ErrorField(err))
		} else {
			sources = append(sources, model.Source{MIME: f.Format.MIME, URL: url})
		}
	}

	return sources, failed
}
