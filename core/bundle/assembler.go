package bundle

import (
	"context"
	"sync"

	"SiteFM/core/audio"
	"SiteFM/logger"
	"SiteFM/model"

	"github.com/google/uuid"
)

// trackNamespace scopes the name-based UUIDs used as track ids.
var trackNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("sitefm:track"))

// TrackID derives the stable id of a library-relative path.
func TrackID(relPath string) string {
	return uuid.NewSHA1(trackNamespace, []byte(relPath)).String()
}

// AssembleStats counts the non-fatal problems of one assembly run.
type AssembleStats struct {
	ProbeFailures   int
	VariantFailures int
	EmptyTracks     int
}

// Assembler turns scanned files into track records.
type Assembler struct {
	prober   audio.Prober
	producer *Producer
	workers  int
}

// NewAssembler creates an Assembler running at most workers files at once.
func NewAssembler(prober audio.Prober, producer *Producer, workers int) *Assembler {
	if workers < 1 {
		workers = 1
	}
	return &Assembler{prober: prober, producer: producer, workers: workers}
}

type assembled struct {
	track          model.Track
	probeFailed    bool
	variantsFailed int
}

// Assemble processes files on a bounded worker pool. Results keep the
// input order. Cancelling ctx stops dispatching new files and returns
// ctx.Err().
func (a *Assembler) Assemble(ctx context.Context, files []SourceFile) ([]model.Track, AssembleStats, error) {
	results := make([]assembled, len(files))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = a.assembleOne(ctx, files[i])
			}
		}()
	}

dispatch:
	for i := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, AssembleStats{}, err
	}

	var stats AssembleStats
	tracks := make([]model.Track, 0, len(results))
	for _, r := range results {
		if r.probeFailed {
			stats.ProbeFailures++
		}
		stats.VariantFailures += r.variantsFailed
		if len(r.track.Sources) == 0 {
			stats.EmptyTracks++
			logger.Warn("track has no playable source; check publish settings and ffmpeg availability",
				logger.String("file", r.track.RelPath),
				logger.String("format", r.track.OriginalFormat))
		}
		tracks = append(tracks, r.track)
	}
	return tracks, stats, nil
}

func (a *Assembler) assembleOne(ctx context.Context, f SourceFile) assembled {
	md, err := a.prober.Probe(ctx, f.Path)
	if err != nil {
		logger.Debug("probe failed, metadata degraded",
			logger.String("file", f.RelPath),
			logger.ErrorField(err))
	}

	title := md.Title
	if title == "" {
		title = f.Stem()
	}

	sources, failed := a.producer.Produce(ctx, f)

	return assembled{
		track: model.Track{
			ID:             TrackID(f.RelPath),
			Title:          title,
			Artist:         md.Artist,
			Album:          md.Album,
			Duration:       md.Duration,
			GroupPath:      f.GroupPath(),
			Sources:        sources,
			OriginalFormat: f.Format.Ext,
			RelPath:        f.RelPath,
		},
		probeFailed:    err != nil,
		variantsFailed: failed,
	}
}
