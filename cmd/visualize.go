package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lennox55555/HAHD/internal/visualize"
	"github.com/spf13/cobra"
)

func newVisualizeCmd() *cobra.Command {
	var baseDir string
	var outputDir string
	var debug bool

	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Render attention heatmaps from the acquired gaze data",
		Long: `Render heatmap visualizations from a tree produced by hahd setup.

For each of three randomly selected images with enough viewer coverage, writes
one PNG combining aggregate, viewer-separated, and temporal attention views.`,
		Example: `  # Visualize from the current directory's eye_gaze_research tree
  hahd visualize

  # Explicit locations
  hahd visualize --base-dir /data --output-dir /data/viz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(debug)

			if baseDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				baseDir = wd
			}

			err := runVisualize(baseDir, outputDir)
			if err != nil && debug {
				// Debug mode surfaces the full failure rather than a
				// clean exit.
				panic(err)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Base directory containing the eye_gaze_research folder (default: current directory)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory to save visualizations (default: <base>/eye_gaze_research/visualizations)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Debug logging")

	return cmd
}

func runVisualize(baseDir, outputDir string) error {
	v, err := visualize.New(baseDir, slog.Default())
	if err != nil {
		return err
	}

	if outputDir == "" {
		outputDir = filepath.Join(v.EyeGazeDir, "visualizations")
	}

	if err := v.VisualizeAll(outputDir); err != nil {
		return err
	}

	slog.Info("Visualizations saved", "dir", outputDir)
	return nil
}
