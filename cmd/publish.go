package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SiteFM/storage"

	"github.com/spf13/cobra"
)

var (
	publishPrefix      string
	publishDeleteStale bool
	publishStats       bool
	publishDir         string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload the built site to a MinIO/S3 bucket",
	Long:  `把输出目录上传到 MinIO 存储桶（不存在时自动创建），每个文件带正确的 Content-Type。`,
	Example: `  # 上传到 $MINIO_BUCKET 根目录
  sitefm publish

  # 上传到前缀并删除远端多余文件
  sitefm publish -p radio --delete-stale

  # 只查看前缀下的统计信息
  sitefm publish -p radio -s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("prefix") {
			cfg.Minio.Prefix = publishPrefix
		}
		if cmd.Flags().Changed("out") {
			cfg.DistDir = publishDir
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		publisher, err := storage.NewPublisher(cfg.Minio)
		if err != nil {
			return err
		}
		if err := publisher.EnsureBucket(ctx); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if publishStats {
			stats, err := publisher.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "对象数量: %d\n", stats.TotalObjects)
			fmt.Fprintf(out, "总大小: %.2f MB\n", float64(stats.TotalSize)/1024/1024)
			if !stats.LastModified.IsZero() {
				fmt.Fprintf(out, "最后修改: %s\n", stats.LastModified.Format(time.RFC3339))
			}
			return nil
		}

		if _, err := os.Stat(cfg.DistDir); err != nil {
			return fmt.Errorf("输出目录不可用，请先运行 build: %w", err)
		}
		stats, err := publisher.Publish(ctx, cfg.DistDir, publishDeleteStale)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Published %d files (%.2f MB) to %s/%s, removed %d\n",
			stats.Uploaded, float64(stats.Bytes)/1024/1024, cfg.Minio.Bucket, cfg.Minio.Prefix, stats.Removed)
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVarP(&publishPrefix, "prefix", "p", "", "object key prefix (default $MINIO_PREFIX)")
	publishCmd.Flags().BoolVar(&publishDeleteStale, "delete-stale", false, "delete objects under the prefix that are not in the build")
	publishCmd.Flags().BoolVarP(&publishStats, "stats", "s", false, "only print object statistics for the prefix")
	publishCmd.Flags().StringVar(&publishDir, "out", "", "directory to upload (default $DIST_DIR or dist)")
	rootCmd.AddCommand(publishCmd)
}
