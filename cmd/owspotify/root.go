package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "owspotify",
	Short: "Control Spotify playback from the Overwatch game state",
	Long: `owspotify watches a fixed set of screen pixels while Overwatch runs,
classifies the game state from their colors, and drives Spotify playback
(play, pause, set volume) on confirmed state changes.`,
	SilenceUsage: true,
}

// Execute runs the CLI. Startup failures exit non-zero; a clean daemon
// shutdown exits zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default "+config.DefaultPath+")")
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// newLogger builds the log sink from configuration: structured, leveled,
// optionally appending to a file for post-hoc troubleshooting.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()

	if cfg.Logging.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("logging.level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	if cfg.Logging.File != "" {
		zc.OutputPaths = []string{cfg.Logging.File}
		zc.ErrorOutputPaths = []string{cfg.Logging.File}
	}

	return zc.Build()
}
