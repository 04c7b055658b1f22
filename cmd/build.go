package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"SiteFM/config"
	"SiteFM/core/audio"
	"SiteFM/core/bundle"
	"SiteFM/logger"

	"github.com/spf13/cobra"
)

var (
	buildMusic   string
	buildSite    string
	buildOut     string
	buildWorkers int
	buildArchive string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the static site bundle",
	Long: `扫描音乐目录，生成可播放版本和 index.json，并复制前端文件到输出目录。
输出目录每次构建前都会被清空。`,
	Example: `  sitefm build
  sitefm build --music ~/Music --out public --archive site.tar.gz`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyBuildFlags(cmd, cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := newBuilder(cfg).Run(ctx)
		if err != nil {
			return err
		}
		if buildArchive != "" {
			if err := bundle.ArchiveDir(ctx, res.OutDir, buildArchive); err != nil {
				return err
			}
			logger.Info("归档完成", logger.String("archive", buildArchive))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Built %d tracks → %s\n", len(res.Tracks), res.OutDir)
		if res.EmptyTracks > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d tracks have no playable source\n", res.EmptyTracks)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildMusic, "music", "", "library root (default $MUSIC_DIR or music)")
	buildCmd.Flags().StringVar(&buildSite, "site", "", "front-end asset dir (default $SITE_DIR or site)")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "output root, wiped on every build (default $DIST_DIR or dist)")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "files processed concurrently (default $BUILD_WORKERS or CPU count)")
	buildCmd.Flags().StringVar(&buildArchive, "archive", "", "also pack the output into .zip, .tar, .tar.gz or .tar.zst")
	rootCmd.AddCommand(buildCmd)
}

// applyBuildFlags 命令行参数覆盖配置
func applyBuildFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("music") {
		c.MusicDir = buildMusic
	}
	if flags.Changed("site") {
		c.SiteDir = buildSite
	}
	if flags.Changed("out") {
		c.DistDir = buildOut
	}
	if flags.Changed("workers") && buildWorkers > 0 {
		c.Workers = buildWorkers
	}
}

func newBuilder(c *config.Config) *bundle.Builder {
	prober := audio.NewFFprobe(c.FFprobePath, c.ProbeTimeout, c.TagFallback)
	encoder := audio.NewFFmpegProcessor(c.FFmpegPath, c.TranscodeTimeout)
	return bundle.NewBuilder(c, prober, encoder)
}
