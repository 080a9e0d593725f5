package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Copubah/jkia-aircraft-notifier/internal/app"
)

var (
	replayPath   string
	replayDryRun bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Reprocess recorded state snapshots through the detection pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayPath == "" {
			return fmt.Errorf("--file must be provided")
		}

		opts := app.ReplayOptions{
			Path:   replayPath,
			DryRun: replayDryRun,
		}

		return getApp().Replay(cmd.Context(), opts)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayPath, "file", "", "Path to JSON-lines snapshot file")
	replayCmd.Flags().BoolVar(&replayDryRun, "dry-run", false, "Run without writing to storage")
}
