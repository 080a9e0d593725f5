package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/Copubah/jkia-aircraft-notifier/internal/storage"
)

// Export writes a day's arrivals as CSV and/or a PNG chart of arrivals per
// UTC hour.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	date := opts.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	records, err := store.ListArrivalsByDate(ctx, date)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Str("date", date).Msg("no arrivals found for export date")
		return nil
	}

	a.Logger.Info().Str("date", date).Int("arrivals", len(records)).Msg("exporting arrivals")

	if opts.CSVPath != "" {
		if err := writeArrivalsCSV(opts.CSVPath, records); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeArrivalsPNG(opts.PNGPath, date, records); err != nil {
			return err
		}
	}

	return nil
}

func writeArrivalsCSV(path string, records []storage.ArrivalRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"arrival_key", "arrival_date", "timestamp", "callsign", "altitude_meters", "on_ground", "velocity_mps", "detection_time"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, record := range records {
		row := []string{
			record.ArrivalKey,
			record.ArrivalDate,
			record.Timestamp.UTC().Format(time.RFC3339),
			record.Callsign,
			strconv.FormatFloat(record.AltitudeMeters, 'f', 1, 64),
			strconv.FormatBool(record.OnGround),
			strconv.FormatFloat(record.VelocityMPS, 'f', 1, 64),
			record.DetectionTime,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeArrivalsPNG(path, date string, records []storage.ArrivalRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var perHour [24]int
	for _, record := range records {
		perHour[record.Timestamp.UTC().Hour()]++
	}

	bars := make([]chart.Value, 0, 24)
	for hour := 0; hour < 24; hour++ {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%02d", hour),
			Value: float64(perHour[hour]),
		})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("JKIA arrivals per UTC hour (%s)", date),
		Width:    1280,
		Height:   720,
		BarWidth: 36,
		Bars:     bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
