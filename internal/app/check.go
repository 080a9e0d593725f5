package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/Copubah/jkia-aircraft-notifier/internal/metrics"
	"github.com/Copubah/jkia-aircraft-notifier/internal/service"
	"github.com/Copubah/jkia-aircraft-notifier/internal/storage"
)

// Check runs exactly one sampling cycle and prints its result as JSON. This
// is the single-invocation counterpart of the scheduled loop, used for smoke
// testing and cron-style deployments.
func (a *App) Check(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	var ledger storage.ArrivalLedger
	if store != nil {
		ledger = store
	} else {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	}

	svc := service.New(nil, a.newFetcher(), a.newFilter(), ledger, a.newNotifier(), metrics.NewRegistry(), clockwork.NewRealClock(), a.Logger)

	result, cycleErr := svc.RunCycle(ctx)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return err
	}

	if cycleErr != nil {
		return fmt.Errorf("cycle failed: %w", cycleErr)
	}
	return nil
}
