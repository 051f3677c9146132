package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hahd",
		Short: "Hazardous driving eye-gaze research toolkit",
		Long: `HAHD prepares and analyzes the hazardous driving eye-gaze dataset.

The setup command downloads the gaze data from Hugging Face, fetches the
matching Cityscapes images, and normalizes everything into a local research
tree. The visualize command renders attention heatmap overlays from that tree.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newVisualizeCmd())

	return cmd
}
