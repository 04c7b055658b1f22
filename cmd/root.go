package cmd

import (
	"fmt"
	"os"

	"SiteFM/config"
	"SiteFM/logger"

	"github.com/spf13/cobra"
)

var (
	envFile     string
	buildConfig string
	logLevel    string

	// cfg 由 PersistentPreRunE 加载，子命令直接使用
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "sitefm",
	Short:         "SiteFM turns a music folder into a static web player.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(config.Options{EnvFile: envFile, BuildConfig: buildConfig})
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		level, err := logger.ParseLevel(loaded.LogLevel)
		if err != nil {
			return err
		}
		if err := logger.InitLogger(logger.Config{
			Level:      level,
			Format:     logger.Format(loaded.LogFormat),
			OutputPath: loaded.LogFile,
			MaxSize:    loaded.LogMaxSize,
			MaxBackups: loaded.LogMaxBackups,
			MaxAge:     loaded.LogMaxAge,
			Compress:   loaded.LogCompress,
		}); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load (missing is fine)")
	rootCmd.PersistentFlags().StringVar(&buildConfig, "config", "", "build config JSON (default $BUILD_CONFIG or config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
}

// Execute executes the root command.
func Execute() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
