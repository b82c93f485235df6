package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/calibrate"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/config"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Capture the screen and compare it against the configured signatures",
	Long: `calibrate takes one screen capture, saves a cropped snapshot around
every configured signature pixel, and prints the sampled colors next to
the expected ones. Use it with the game on the relevant screen to tune
coordinates and colors for your resolution and brightness.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCalibrate(cmd)
	},
}

func init() {
	calibrateCmd.Flags().String("out", "calibration", "Directory for the snapshot PNGs")
	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrate(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	outDir, _ := cmd.Flags().GetString("out")

	tool := calibrate.New(logger)
	reports, err := tool.Run(cfg.Signatures, outDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range reports {
		verdict := "NO MATCH"
		if r.Matched {
			verdict = "MATCH"
		}
		fmt.Fprintf(out, "%s (%s): %s\n", r.State, r.Kind, verdict)
		for _, p := range r.Pixels {
			fmt.Fprintf(out, "  %-12s sampled %s", p.Coordinate, p.Sampled)
			if r.Kind == domain.MatchColor {
				fmt.Fprintf(out, "  expected %s", r.Color)
			}
			if p.Matches {
				fmt.Fprint(out, "  ok")
			}
			if p.Snapshot != "" {
				fmt.Fprintf(out, "  -> %s", p.Snapshot)
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}
