package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"

	"github.com/Copubah/jkia-aircraft-notifier/internal/service"
)

// Arrivals prints the arrivals recorded for a date (today by default).
func (a *App) Arrivals(ctx context.Context, opts ArrivalsOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot query arrivals")
	}
	if closeStore != nil {
		defer closeStore()
	}

	queries := service.NewQueryService(store, clockwork.NewRealClock(), a.Logger)

	var report service.ArrivalsReport
	if opts.Date != "" {
		report, err = queries.ArrivalsForDate(ctx, opts.Date)
	} else {
		report, err = queries.TodaysArrivals(ctx)
	}
	if err != nil {
		return err
	}

	if opts.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	fmt.Fprintf(os.Stdout, "JKIA arrivals for %s\n", report.Date)
	fmt.Fprintf(os.Stdout, "Total arrivals detected: %d\n", report.TotalArrivals)
	if report.TotalArrivals == 0 {
		fmt.Fprintln(os.Stdout, "No arrivals detected yet.")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Flight\tTime\tStatus\tVelocity (m/s)")
	for _, arrival := range report.Arrivals {
		status := fmt.Sprintf("Landing (%.0fm)", arrival.AltitudeMeters)
		if arrival.OnGround {
			status = "On Ground"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%.1f\n", arrival.Callsign, arrival.Time, status, arrival.VelocityMPS)
	}
	return writer.Flush()
}
