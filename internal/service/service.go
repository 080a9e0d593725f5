package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/Copubah/jkia-aircraft-notifier/internal/alerting"
	"github.com/Copubah/jkia-aircraft-notifier/internal/detection"
	"github.com/Copubah/jkia-aircraft-notifier/internal/fetcher"
	"github.com/Copubah/jkia-aircraft-notifier/internal/metrics"
	"github.com/Copubah/jkia-aircraft-notifier/internal/scheduler"
	"github.com/Copubah/jkia-aircraft-notifier/internal/storage"
)

// CycleResult reports what one sampling cycle attempted and achieved. It is
// initialised before any fallible step so partial failure still yields
// populated counts.
type CycleResult struct {
	Status            string    `json:"status"`
	AircraftChecked   int       `json:"aircraft_checked"`
	LandingsDetected  int       `json:"landings_detected"`
	RecordsStored     int       `json:"records_stored"`
	NotificationsSent int       `json:"notifications_sent"`
	Timestamp         time.Time `json:"timestamp"`
}

// Service orchestrates one fetch-classify-store-notify cycle per tick.
type Service struct {
	scheduler *scheduler.Scheduler
	states    fetcher.StateFetcher
	filter    *detection.Filter
	ledger    storage.ArrivalLedger
	notifier  alerting.Notifier
	metrics   *metrics.Registry
	clock     clockwork.Clock
	logger    zerolog.Logger
}

// New constructs the arrival detection service. The ledger and notifier may
// be nil; the corresponding step is then skipped (dry runs, alerting off).
func New(sched *scheduler.Scheduler, states fetcher.StateFetcher, filter *detection.Filter, ledger storage.ArrivalLedger, notifier alerting.Notifier, m *metrics.Registry, clock clockwork.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		scheduler: sched,
		states:    states,
		filter:    filter,
		ledger:    ledger,
		notifier:  notifier,
		metrics:   m,
		clock:     clock,
		logger:    logger.With().Str("component", "service").Logger(),
	}
}

// Run begins the scheduled sampling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, func(ctx context.Context, _ time.Time) error {
		_, err := s.RunCycle(ctx)
		return err
	})
}

// RunCycle executes a single sampling cycle. Feed unavailability is a
// cycle-level failure: nothing is classified or written and the error is
// returned alongside the (zero-count) result. Failures past the fetch are
// per-item and never abort the batch.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	now := s.clock.Now().UTC()
	result := CycleResult{Status: "success", Timestamp: now}

	if s.metrics != nil {
		s.metrics.CyclesTotal.Inc()
	}

	states, err := s.states.FetchStates(ctx)
	if err != nil {
		result.Status = "error"
		if s.metrics != nil {
			s.metrics.CycleErrorsTotal.Inc()
		}
		return result, fmt.Errorf("fetch states: %w", err)
	}

	return s.ProcessStates(ctx, states, now), nil
}

// ProcessStates classifies a batch of already-fetched state vectors and runs
// each arrival through storage and notification. Exposed so replay can feed
// recorded snapshots through the identical path.
func (s *Service) ProcessStates(ctx context.Context, states []fetcher.StateVector, now time.Time) CycleResult {
	result := CycleResult{Status: "success", Timestamp: now, AircraftChecked: len(states)}

	arrivals := s.filter.Classify(states, now)
	result.LandingsDetected = len(arrivals)

	if s.metrics != nil {
		s.metrics.AircraftCheckedTotal.Add(float64(len(states)))
		s.metrics.LandingsDetectedTotal.Add(float64(len(arrivals)))
	}

	if len(arrivals) == 0 {
		s.logger.Info().Int("aircraft_checked", len(states)).Msg("no aircraft landing near JKIA")
		s.finishCycle(now)
		return result
	}

	for _, arrival := range arrivals {
		key := detection.BuildArrivalKey(arrival, now)

		// Storage always goes first so a notified arrival is never missing
		// from the ledger while the reverse is tolerated.
		if s.ledger != nil {
			if err := s.ledger.UpsertArrival(ctx, makeRecord(arrival, key, now)); err != nil {
				s.logger.Error().Err(err).Str("arrival_key", key).Msg("failed to upsert arrival")
				if s.metrics != nil {
					s.metrics.LedgerWriteErrorsTotal.Inc()
				}
			} else {
				result.RecordsStored++
			}
		}

		if s.notifier != nil {
			if err := s.notifier.Notify(ctx, alerting.Notification{Arrival: arrival}); err != nil {
				s.logger.Error().Err(err).Str("callsign", arrival.Callsign).Msg("failed to dispatch notification")
				if s.metrics != nil {
					s.metrics.NotificationErrorsTotal.Inc()
				}
			} else {
				result.NotificationsSent++
				if s.metrics != nil {
					s.metrics.NotificationsSentTotal.Inc()
				}
			}
		}
	}

	s.logger.Info().
		Int("aircraft_checked", result.AircraftChecked).
		Int("landings_detected", result.LandingsDetected).
		Int("records_stored", result.RecordsStored).
		Int("notifications_sent", result.NotificationsSent).
		Msg("cycle completed")

	s.finishCycle(now)
	return result
}

func (s *Service) finishCycle(now time.Time) {
	if s.metrics != nil {
		s.metrics.LastCycleUnix.Set(float64(now.Unix()))
	}
}

func makeRecord(a detection.Arrival, key string, now time.Time) storage.ArrivalRecord {
	record := storage.ArrivalRecord{
		ArrivalKey:    key,
		ArrivalDate:   now.UTC().Format("2006-01-02"),
		Timestamp:     now.UTC(),
		Callsign:      a.Callsign,
		OnGround:      a.OnGround,
		DetectionTime: now.UTC().Format("15:04") + " UTC",
	}
	if a.Altitude != nil {
		record.AltitudeMeters = *a.Altitude
	}
	if a.Velocity != nil {
		record.VelocityMPS = *a.Velocity
	}
	return record
}
