package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Copubah/jkia-aircraft-notifier/internal/app"
)

var (
	arrivalsDate string
	arrivalsJSON bool
)

var arrivalsCmd = &cobra.Command{
	Use:   "arrivals",
	Short: "Display recorded arrivals for a date (today by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if arrivalsDate != "" {
			if _, err := time.Parse("2006-01-02", arrivalsDate); err != nil {
				return fmt.Errorf("invalid --date value (want YYYY-MM-DD): %w", err)
			}
		}

		opts := app.ArrivalsOptions{
			Date: arrivalsDate,
			JSON: arrivalsJSON,
		}

		return getApp().Arrivals(cmd.Context(), opts)
	},
}

func init() {
	arrivalsCmd.Flags().StringVar(&arrivalsDate, "date", "", "UTC date to query (YYYY-MM-DD, defaults to today)")
	arrivalsCmd.Flags().BoolVar(&arrivalsJSON, "json", false, "Emit the report as JSON")
}
