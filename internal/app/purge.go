package app

import (
	"context"
	"errors"
	"time"
)

// Purge deletes arrival records older than the cutoff. The core never
// deletes on its own; retention is an operator decision exercised here.
func (a *App) Purge(ctx context.Context, opts PurgeOptions) error {
	if opts.OlderThan <= 0 {
		return errors.New("--older-than must be greater than zero")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot purge")
	}
	if closeStore != nil {
		defer closeStore()
	}

	cutoff := time.Now().UTC().Add(-opts.OlderThan)
	deleted, err := store.DeleteArrivalsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	a.Logger.Info().Time("cutoff", cutoff).Int64("deleted", deleted).Msg("purged arrival records")
	return nil
}
