package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SiteFM/server"

	"github.com/spf13/cobra"
)

var (
	serveAddr string
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the built site locally",
	Long:  `启动本地 HTTP 服务器预览输出目录，支持音频 Range 请求`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.ServeAddr = serveAddr
		}
		if cmd.Flags().Changed("out") {
			cfg.DistDir = serveDir
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(cfg.DistDir, cfg.ServeAddr).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address (default $SERVE_ADDR)")
	serveCmd.Flags().StringVar(&serveDir, "out", "", "directory to serve (default $DIST_DIR or dist)")
	rootCmd.AddCommand(serveCmd)
}
