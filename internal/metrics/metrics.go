// Package metrics exposes Prometheus instrumentation for the watcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all registered collectors. One instance is shared by the
// watcher and the HTTP server.
type Metrics struct {
	Registry *prometheus.Registry

	CyclesTotal      prometheus.Counter
	CyclesRejected   prometheus.Counter
	CabinChecks      *prometheus.CounterVec
	CabinCheckErrors *prometheus.CounterVec
	ChangeEvents     *prometheus.CounterVec
	LastCheckedAt    prometheus.Gauge
	AvailableDays    *prometheus.GaugeVec
	WeekendsOpen     *prometheus.GaugeVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		CyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "hyttevakt_cycles_total",
			Help: "Completed poll cycles.",
		}),
		CyclesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "hyttevakt_cycles_rejected_total",
			Help: "Cycle start requests rejected because a cycle was already running.",
		}),
		CabinChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hyttevakt_cabin_checks_total",
			Help: "Per-cabin checks performed.",
		}, []string{"cabin_id"}),
		CabinCheckErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hyttevakt_cabin_check_errors_total",
			Help: "Per-cabin checks that failed and were skipped this cycle.",
		}, []string{"cabin_id", "stage"}),
		ChangeEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hyttevakt_change_events_total",
			Help: "Change events emitted, by notification tier.",
		}, []string{"tier"}),
		LastCheckedAt: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hyttevakt_last_checked_timestamp_seconds",
			Help: "Unix time of the last completed cycle.",
		}),
		AvailableDays: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hyttevakt_available_days",
			Help: "Available days in the latest snapshot, per cabin.",
		}, []string{"cabin_id"}),
		WeekendsOpen: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hyttevakt_weekends_open",
			Help: "Full Fri-Sun weekends open in the latest snapshot, per cabin.",
		}, []string{"cabin_id"}),
	}
}
