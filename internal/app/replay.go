package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Copubah/jkia-aircraft-notifier/internal/fetcher"
	"github.com/Copubah/jkia-aircraft-notifier/internal/service"
	"github.com/Copubah/jkia-aircraft-notifier/internal/storage"
)

// snapshot is one recorded sample: the instant it was taken plus the state
// vectors observed, one JSON object per line in the replay file.
type snapshot struct {
	Time   time.Time       `json:"time"`
	States []snapshotState `json:"states"`
}

type snapshotState struct {
	ICAO24       string   `json:"icao24"`
	Callsign     string   `json:"callsign"`
	BaroAltitude *float64 `json:"baro_altitude"`
	OnGround     bool     `json:"on_ground"`
	Velocity     *float64 `json:"velocity"`
}

// Replay feeds recorded state snapshots through the normal classify, store,
// and notify pipeline. The feed keeps no history, so this is how past
// samples get reprocessed, e.g. after a threshold change. Notifications are
// never sent during replay.
func (a *App) Replay(ctx context.Context, opts ReplayOptions) error {
	file, err := os.Open(opts.Path)
	if err != nil {
		return fmt.Errorf("open replay file: %w", err)
	}
	defer file.Close()

	var ledger storage.ArrivalLedger
	if opts.DryRun {
		a.Logger.Warn().Msg("replay dry-run: nothing will be written")
	} else {
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("database not configured; cannot replay")
		}
		if closeStore != nil {
			defer closeStore()
		}
		ledger = store
	}

	svc := service.New(nil, nil, a.newFilter(), ledger, nil, nil, clockwork.NewRealClock(), a.Logger)

	processed := 0
	failed := 0
	stored := 0
	detected := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var snap snapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			failed++
			a.Logger.Error().Err(err).Int("line", processed+failed).Msg("skipping malformed snapshot")
			continue
		}

		states := make([]fetcher.StateVector, 0, len(snap.States))
		for _, s := range snap.States {
			states = append(states, fetcher.StateVector{
				ICAO24:       s.ICAO24,
				Callsign:     s.Callsign,
				BaroAltitude: s.BaroAltitude,
				OnGround:     s.OnGround,
				Velocity:     s.Velocity,
			})
		}

		result := svc.ProcessStates(ctx, states, snap.Time.UTC())
		processed++
		detected += result.LandingsDetected
		stored += result.RecordsStored
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read replay file: %w", err)
	}

	a.Logger.Info().
		Int("snapshots", processed).
		Int("malformed", failed).
		Int("landings_detected", detected).
		Int("records_stored", stored).
		Msg("replay completed")

	if failed > 0 {
		return fmt.Errorf("%d snapshot(s) were malformed; see log", failed)
	}
	return nil
}
