package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertArrivalSQL = `INSERT INTO arrivals (
        arrival_key,
        arrival_date,
        ts,
        callsign,
        altitude_meters,
        on_ground,
        velocity_mps,
        detection_time
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8
    )
    ON CONFLICT (arrival_key) DO UPDATE
    SET
        arrival_date    = EXCLUDED.arrival_date,
        ts              = EXCLUDED.ts,
        callsign        = EXCLUDED.callsign,
        altitude_meters = EXCLUDED.altitude_meters,
        on_ground       = EXCLUDED.on_ground,
        velocity_mps    = EXCLUDED.velocity_mps,
        detection_time  = EXCLUDED.detection_time;`

	listArrivalsByDateSQL = `SELECT
        arrival_key,
        arrival_date,
        ts,
        callsign,
        altitude_meters,
        on_ground,
        velocity_mps,
        detection_time,
        created_at
    FROM arrivals
    WHERE arrival_date = $1
    ORDER BY created_at, arrival_key;`

	countArrivalsSQL = `SELECT COUNT(*) FROM arrivals;`

	deleteArrivalsBeforeSQL = `DELETE FROM arrivals WHERE ts < $1;`
)

// ArrivalLedger defines operations for arrival persistence. Upserts are
// idempotent per arrival key; queries by date are served by the
// arrival_date index, never a full scan.
type ArrivalLedger interface {
	UpsertArrival(ctx context.Context, record ArrivalRecord) error
	ListArrivalsByDate(ctx context.Context, date string) ([]ArrivalRecord, error)
	CountArrivals(ctx context.Context) (int64, error)
	DeleteArrivalsBefore(ctx context.Context, olderThan time.Time) (int64, error)
}

// Pinger reports backing store reachability, used by health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store aggregates access to the arrivals ledger.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertArrival writes or replaces the record stored under its arrival key.
// Last write for a key wins.
func (s *Store) UpsertArrival(ctx context.Context, record ArrivalRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, upsertArrivalSQL,
		record.ArrivalKey,
		record.ArrivalDate,
		record.Timestamp,
		record.Callsign,
		record.AltitudeMeters,
		record.OnGround,
		record.VelocityMPS,
		record.DetectionTime,
	)
	if execErr != nil {
		return fmt.Errorf("upsert arrival: %w", execErr)
	}
	return nil
}

// ListArrivalsByDate lists the records for a UTC calendar date in insertion
// order. A date with no records yields an empty slice.
func (s *Store) ListArrivalsByDate(ctx context.Context, date string) ([]ArrivalRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listArrivalsByDateSQL, date)
	if queryErr != nil {
		return nil, fmt.Errorf("list arrivals by date: %w", queryErr)
	}
	defer rows.Close()

	records := make([]ArrivalRecord, 0)
	for rows.Next() {
		record, scanErr := scanArrival(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, record)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// CountArrivals counts stored arrival records.
func (s *Store) CountArrivals(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countArrivalsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count arrivals: %w", scanErr)
	}
	return count, nil
}

// DeleteArrivalsBefore deletes records detected before the cutoff and
// returns how many were removed. Retention policy lives with the caller.
func (s *Store) DeleteArrivalsBefore(ctx context.Context, olderThan time.Time) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	cmdTag, execErr := pool.Exec(ctx, deleteArrivalsBeforeSQL, olderThan)
	if execErr != nil {
		return 0, fmt.Errorf("delete arrivals before: %w", execErr)
	}
	return cmdTag.RowsAffected(), nil
}

func scanArrival(rows pgx.Rows) (ArrivalRecord, error) {
	var record ArrivalRecord
	if err := rows.Scan(
		&record.ArrivalKey,
		&record.ArrivalDate,
		&record.Timestamp,
		&record.Callsign,
		&record.AltitudeMeters,
		&record.OnGround,
		&record.VelocityMPS,
		&record.DetectionTime,
		&record.CreatedAt,
	); err != nil {
		return ArrivalRecord{}, err
	}
	return record, nil
}

var _ ArrivalLedger = (*Store)(nil)
var _ Pinger = (*Store)(nil)
