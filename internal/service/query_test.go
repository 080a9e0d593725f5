package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Copubah/jkia-aircraft-notifier/internal/storage"
)

func TestTodaysArrivalsEmptyLedger(t *testing.T) {
	clock := clockwork.NewFakeClockAt(fixedInstant())
	queries := NewQueryService(newFakeLedger(), clock, zerolog.Nop())

	report, err := queries.TodaysArrivals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-08-30", report.Date)
	assert.Equal(t, 0, report.TotalArrivals)
	assert.NotNil(t, report.Arrivals)
	assert.Empty(t, report.Arrivals)
}

func TestTodaysArrivalsProjectsRecords(t *testing.T) {
	ledger := newFakeLedger()
	ledger.records["2026-08-30#KQA102#14"] = storage.ArrivalRecord{
		ArrivalKey:     "2026-08-30#KQA102#14",
		ArrivalDate:    "2026-08-30",
		Timestamp:      fixedInstant(),
		Callsign:       "KQA102",
		AltitudeMeters: 0,
		OnGround:       true,
		VelocityMPS:    8,
		DetectionTime:  "14:05 UTC",
	}

	clock := clockwork.NewFakeClockAt(fixedInstant())
	queries := NewQueryService(ledger, clock, zerolog.Nop())

	report, err := queries.TodaysArrivals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalArrivals)
	require.Len(t, report.Arrivals, 1)

	view := report.Arrivals[0]
	assert.Equal(t, "KQA102", view.Callsign)
	assert.Equal(t, "14:05 UTC", view.Time)
	assert.True(t, view.OnGround)
	assert.Equal(t, 0.0, view.AltitudeMeters, "numeric fields are numbers, never null")
	assert.Equal(t, 8.0, view.VelocityMPS)
}

func TestTodaysArrivalsExcludesOtherDates(t *testing.T) {
	ledger := newFakeLedger()
	ledger.records["2026-08-29#KQA102#22"] = storage.ArrivalRecord{
		ArrivalKey:  "2026-08-29#KQA102#22",
		ArrivalDate: "2026-08-29",
		Callsign:    "KQA102",
	}

	clock := clockwork.NewFakeClockAt(fixedInstant())
	queries := NewQueryService(ledger, clock, zerolog.Nop())

	report, err := queries.TodaysArrivals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalArrivals)
}

func TestTodaysArrivalsLedgerFailure(t *testing.T) {
	ledger := newFakeLedger()
	ledger.listErr = errors.New("connection refused")

	queries := NewQueryService(ledger, clockwork.NewFakeClockAt(fixedInstant()), zerolog.Nop())

	_, err := queries.TodaysArrivals(context.Background())
	require.Error(t, err, "ledger failure must not masquerade as zero arrivals")
}

func TestArrivalsForDate(t *testing.T) {
	ledger := newFakeLedger()
	ledger.records["2026-08-29#ETH305#09"] = storage.ArrivalRecord{
		ArrivalKey:  "2026-08-29#ETH305#09",
		ArrivalDate: "2026-08-29",
		Callsign:    "ETH305",
		Timestamp:   time.Date(2026, 8, 29, 9, 12, 0, 0, time.UTC),
	}

	queries := NewQueryService(ledger, clockwork.NewFakeClockAt(fixedInstant()), zerolog.Nop())

	report, err := queries.ArrivalsForDate(context.Background(), "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-29", report.Date)
	assert.Equal(t, 1, report.TotalArrivals)
}

func TestQueryServiceWithoutLedger(t *testing.T) {
	queries := NewQueryService(nil, clockwork.NewFakeClockAt(fixedInstant()), zerolog.Nop())

	_, err := queries.TodaysArrivals(context.Background())
	require.ErrorIs(t, err, storage.ErrNotConfigured)
}
