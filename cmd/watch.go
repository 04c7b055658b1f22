package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SiteFM/core/watch"
	"SiteFM/logger"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Build, then rebuild whenever the library or site changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyBuildFlags(cmd, cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rebuild := func(ctx context.Context) error {
			res, err := newBuilder(cfg).Run(ctx)
			if err != nil {
				return err
			}
			logger.Info("重新构建完成", logger.Int("tracks", len(res.Tracks)), logger.String("out", res.OutDir))
			return nil
		}
		if err := rebuild(ctx); err != nil {
			logger.Error("首次构建失败", logger.ErrorField(err))
		}

		return watch.New([]string{cfg.MusicDir, cfg.SiteDir}, watch.DefaultDebounce, rebuild).Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&buildMusic, "music", "", "library root (default $MUSIC_DIR or music)")
	watchCmd.Flags().StringVar(&buildSite, "site", "", "front-end asset dir (default $SITE_DIR or site)")
	watchCmd.Flags().StringVar(&buildOut, "out", "", "output root (default $DIST_DIR or dist)")
	watchCmd.Flags().IntVar(&buildWorkers, "workers", 0, "files processed concurrently")
	rootCmd.AddCommand(watchCmd)
}
