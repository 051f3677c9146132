package cmd

import (
	"log/slog"
	"os"

	"github.com/lennox55555/HAHD/internal/acquire"
	"github.com/spf13/cobra"
)

func newSetupCmd() *cobra.Command {
	var noCityscapes bool
	var debug bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Download and prepare the eye-gaze research dataset",
		Long: `Set up the eye gaze research environment in the current directory.

Reads the local mapping file, downloads the gaze dataset from Hugging Face,
downloads the Cityscapes leftImg8bit archive, extracts only the mapped images,
and converts them to JPEG under eye_gaze_research/cityscapes.

Credentials are read from HF_TOKEN, CITYSCAPES_USERNAME and
CITYSCAPES_PASSWORD (a .env file works too); anything missing is prompted for
interactively and never persisted.`,
		Example: `  # Full setup: gaze data plus Cityscapes images
  hahd setup

  # Gaze data only
  hahd setup --no-cityscapes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(debug)

			workDir, err := os.Getwd()
			if err != nil {
				return err
			}

			setup := acquire.NewSetup(workDir, acquire.CredentialsFromEnv(), slog.Default())
			setup.SkipCityscapes = noCityscapes

			return setup.Run()
		},
	}

	cmd.Flags().BoolVar(&noCityscapes, "no-cityscapes", false, "Skip the Cityscapes download, fetch gaze data only")
	cmd.Flags().BoolVar(&debug, "debug", false, "Debug logging")

	return cmd
}

// setupLogging installs the process-wide structured logger at the requested
// verbosity.
func setupLogging(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
