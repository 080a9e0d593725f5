package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Copubah/jkia-aircraft-notifier/internal/app"
)

var purgeOlderThan time.Duration

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete arrival records older than a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.PurgeOptions{
			OlderThan: purgeOlderThan,
		}

		return getApp().Purge(cmd.Context(), opts)
	},
}

func init() {
	purgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 90*24*time.Hour, "Delete records older than this duration")
}
