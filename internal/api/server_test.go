package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Copubah/jkia-aircraft-notifier/internal/service"
	"github.com/Copubah/jkia-aircraft-notifier/internal/storage"
)

type memLedger struct {
	records []storage.ArrivalRecord
	listErr error
	pingErr error
}

func (m *memLedger) UpsertArrival(ctx context.Context, record storage.ArrivalRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memLedger) ListArrivalsByDate(ctx context.Context, date string) ([]storage.ArrivalRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]storage.ArrivalRecord, 0)
	for _, record := range m.records {
		if record.ArrivalDate == date {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *memLedger) CountArrivals(ctx context.Context) (int64, error) {
	return int64(len(m.records)), nil
}

func (m *memLedger) DeleteArrivalsBefore(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (m *memLedger) Ping(ctx context.Context) error {
	return m.pingErr
}

var _ storage.ArrivalLedger = (*memLedger)(nil)
var _ storage.Pinger = (*memLedger)(nil)

func newTestServer(ledger *memLedger) *httptest.Server {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC))
	queries := service.NewQueryService(ledger, clock, zerolog.Nop())
	server := NewServer(queries, ledger, zerolog.Nop())
	return httptest.NewServer(server.Handler())
}

func TestTodaysArrivalsEndpointEmpty(t *testing.T) {
	srv := newTestServer(&memLedger{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/arrivals/today")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report service.ArrivalsReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "2026-08-30", report.Date)
	assert.Equal(t, 0, report.TotalArrivals)
	assert.Empty(t, report.Arrivals)
}

func TestTodaysArrivalsEndpointWithRecords(t *testing.T) {
	ledger := &memLedger{records: []storage.ArrivalRecord{{
		ArrivalKey:    "2026-08-30#KQA102#14",
		ArrivalDate:   "2026-08-30",
		Callsign:      "KQA102",
		OnGround:      true,
		VelocityMPS:   8,
		DetectionTime: "14:05 UTC",
	}}}
	srv := newTestServer(ledger)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/arrivals/today")
	require.NoError(t, err)
	defer resp.Body.Close()

	var report service.ArrivalsReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Equal(t, 1, report.TotalArrivals)
	assert.Equal(t, "KQA102", report.Arrivals[0].Callsign)
	assert.Equal(t, "14:05 UTC", report.Arrivals[0].Time)
}

func TestTodaysArrivalsEndpointLedgerFailure(t *testing.T) {
	srv := newTestServer(&memLedger{listErr: errors.New("connection refused")})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/arrivals/today")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode, "query failure is distinguishable from empty")
}

func TestArrivalsByDateEndpoint(t *testing.T) {
	ledger := &memLedger{records: []storage.ArrivalRecord{{
		ArrivalKey:  "2026-08-29#ETH305#09",
		ArrivalDate: "2026-08-29",
		Callsign:    "ETH305",
	}}}
	srv := newTestServer(ledger)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/arrivals/2026-08-29")
	require.NoError(t, err)
	defer resp.Body.Close()

	var report service.ArrivalsReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 1, report.TotalArrivals)
}

func TestArrivalsByDateEndpointRejectsBadDate(t *testing.T) {
	srv := newTestServer(&memLedger{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/arrivals/not-a-date")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&memLedger{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthEndpointDatabaseDown(t *testing.T) {
	srv := newTestServer(&memLedger{pingErr: errors.New("no route to host")})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
