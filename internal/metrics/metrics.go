package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the Prometheus collectors for the arrival pipeline.
type Registry struct {
	CyclesTotal             prometheus.Counter
	CycleErrorsTotal        prometheus.Counter
	AircraftCheckedTotal    prometheus.Counter
	LandingsDetectedTotal   prometheus.Counter
	LedgerWriteErrorsTotal  prometheus.Counter
	NotificationsSentTotal  prometheus.Counter
	NotificationErrorsTotal prometheus.Counter
	LastCycleUnix           prometheus.Gauge
}

// NewRegistry creates the pipeline metrics and registers them with the
// default Prometheus registry.
func NewRegistry() *Registry {
	m := newCollectors()
	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleErrorsTotal,
		m.AircraftCheckedTotal,
		m.LandingsDetectedTotal,
		m.LedgerWriteErrorsTotal,
		m.NotificationsSentTotal,
		m.NotificationErrorsTotal,
		m.LastCycleUnix,
	)
	return m
}

// NewRegistryForTesting creates unregistered collectors so parallel tests do
// not trip "already registered" panics.
func NewRegistryForTesting() *Registry {
	return newCollectors()
}

func newCollectors() *Registry {
	return &Registry{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jkia_notifier",
			Name:      "cycles_total",
			Help:      "Total sampling cycles attempted.",
		}),
		CycleErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jkia_notifier",
			Name:      "cycle_errors_total",
			Help:      "Cycles that failed before classification (feed unavailable).",
		}),
		AircraftCheckedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jkia_notifier",
			Name:      "aircraft_checked_total",
			Help:      "State vectors examined across all cycles.",
		}),
		LandingsDetectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jkia_notifier",
			Name:      "landings_detected_total",
			Help:      "Aircraft classified as landed or landing.",
		}),
		LedgerWriteErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jkia_notifier",
			Name:      "ledger_write_errors_total",
			Help:      "Arrival upserts that failed.",
		}),
		NotificationsSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jkia_notifier",
			Name:      "notifications_sent_total",
			Help:      "Landing notifications delivered.",
		}),
		NotificationErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jkia_notifier",
			Name:      "notification_errors_total",
			Help:      "Landing notifications that failed to deliver.",
		}),
		LastCycleUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jkia_notifier",
			Name:      "last_cycle_unix",
			Help:      "Unix timestamp of the last completed cycle.",
		}),
	}
}
