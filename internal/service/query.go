package service

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/Copubah/jkia-aircraft-notifier/internal/storage"
)

// ArrivalView is the external projection of a stored arrival. Numeric fields
// are always emitted as numbers; readings absent at detection time were
// stored as zero.
type ArrivalView struct {
	Callsign       string  `json:"callsign"`
	Time           string  `json:"time"`
	AltitudeMeters float64 `json:"altitude"`
	OnGround       bool    `json:"on_ground"`
	VelocityMPS    float64 `json:"velocity"`
}

// ArrivalsReport answers a "today's arrivals" query.
type ArrivalsReport struct {
	Date          string        `json:"date"`
	TotalArrivals int           `json:"total_arrivals"`
	Arrivals      []ArrivalView `json:"arrivals"`
}

// QueryService answers day-scoped queries over the arrival ledger.
type QueryService struct {
	ledger storage.ArrivalLedger
	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewQueryService constructs a QueryService.
func NewQueryService(ledger storage.ArrivalLedger, clock clockwork.Clock, logger zerolog.Logger) *QueryService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &QueryService{
		ledger: ledger,
		clock:  clock,
		logger: logger.With().Str("component", "query_service").Logger(),
	}
}

// TodaysArrivals lists every arrival recorded for the current UTC date. A
// day with no arrivals yields an empty report; a ledger failure is returned
// as an error so callers can tell "no arrivals yet" from "query broke".
func (q *QueryService) TodaysArrivals(ctx context.Context) (ArrivalsReport, error) {
	date := q.clock.Now().UTC().Format("2006-01-02")
	return q.ArrivalsForDate(ctx, date)
}

// ArrivalsForDate lists the arrivals recorded for one UTC calendar date.
func (q *QueryService) ArrivalsForDate(ctx context.Context, date string) (ArrivalsReport, error) {
	if q.ledger == nil {
		return ArrivalsReport{}, storage.ErrNotConfigured
	}

	records, err := q.ledger.ListArrivalsByDate(ctx, date)
	if err != nil {
		return ArrivalsReport{}, fmt.Errorf("query arrivals for %s: %w", date, err)
	}

	views := make([]ArrivalView, 0, len(records))
	for _, record := range records {
		views = append(views, ArrivalView{
			Callsign:       record.Callsign,
			Time:           record.DetectionTime,
			AltitudeMeters: record.AltitudeMeters,
			OnGround:       record.OnGround,
			VelocityMPS:    record.VelocityMPS,
		})
	}

	return ArrivalsReport{
		Date:          date,
		TotalArrivals: len(views),
		Arrivals:      views,
	}, nil
}
