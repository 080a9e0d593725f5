package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Copubah/jkia-aircraft-notifier/internal/alerting"
	"github.com/Copubah/jkia-aircraft-notifier/internal/api"
	"github.com/Copubah/jkia-aircraft-notifier/internal/config"
	"github.com/Copubah/jkia-aircraft-notifier/internal/detection"
	"github.com/Copubah/jkia-aircraft-notifier/internal/fetcher"
	"github.com/Copubah/jkia-aircraft-notifier/internal/metrics"
	"github.com/Copubah/jkia-aircraft-notifier/internal/scheduler"
	"github.com/Copubah/jkia-aircraft-notifier/internal/service"
	"github.com/Copubah/jkia-aircraft-notifier/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.StateFetcher {
	return fetcher.NewOpenSky(fetcher.OpenSkyOptions{
		BaseURL:   a.Config.OpenSky.BaseURL,
		Box:       a.Config.OpenSky.Box,
		Timeout:   a.Config.OpenSky.RequestTimeout,
		UserAgent: a.Config.OpenSky.UserAgent,
		Username:  a.Config.OpenSky.Username,
		Password:  a.Config.OpenSky.Password,
	}, a.Logger)
}

func (a *App) newFilter() *detection.Filter {
	return detection.NewFilter(detection.Thresholds{
		MaxAltitudeMeters: a.Config.Detection.MaxAltitudeMeters,
		MaxVelocityMPS:    a.Config.Detection.MaxVelocityMPS,
	})
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running detection service and, when enabled, the
// HTTP query surface alongside it.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	reg := metrics.NewRegistry()
	clock := clockwork.NewRealClock()

	var ledger storage.ArrivalLedger
	var pinger storage.Pinger
	if store != nil {
		ledger = store
		pinger = store
	}

	svc := service.New(sched, a.newFetcher(), a.newFilter(), ledger, a.newNotifier(), reg, clock, a.Logger)
	queries := service.NewQueryService(ledger, clock, a.Logger)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		a.Logger.Info().Msg("starting arrival detection service")
		return svc.Run(ctx)
	})

	if a.Config.HTTP.Enabled {
		server := api.NewServer(queries, pinger, a.Logger)
		group.Go(func() error {
			return server.ListenAndServe(ctx, a.Config.HTTP.Addr)
		})
	}

	err = group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("service stopped")
	return nil
}

// ArrivalsOptions configure the arrivals query command.
type ArrivalsOptions struct {
	Date string
	JSON bool
}

// ExportOptions hold parameters for exporting a day's arrivals.
type ExportOptions struct {
	Date    string
	CSVPath string
	PNGPath string
}

// ReplayOptions configure the snapshot replay job.
type ReplayOptions struct {
	Path   string
	DryRun bool
}

// PurgeOptions configure ledger retention enforcement.
type PurgeOptions struct {
	OlderThan time.Duration
}
