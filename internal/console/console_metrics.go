package console

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/linnemanlabs/cityline/internal/notifier"
)

// Metrics holds Prometheus metrics for the console subsystem.
type Metrics struct {
	RefreshesTotal    *prometheus.CounterVec
	RefreshDuration   prometheus.Histogram
	SnapshotSize      prometheus.Gauge
	CommandsTotal     *prometheus.CounterVec
	PushEventsTotal   *prometheus.CounterVec
	WSReconnectsTotal prometheus.Counter
}

// NewMetrics registers and returns console metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RefreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cityline_refreshes_total",
			Help: "Registry refreshes by outcome (ok, stale, error).",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cityline_refresh_duration_seconds",
			Help:    "Duration of registry refreshes in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}),
		SnapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cityline_snapshot_complaints",
			Help: "Complaints currently held in the registry cache.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cityline_commands_total",
			Help: "Lifecycle commands by result (applied, rejected, failed).",
		}, []string{"result"}),
		PushEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cityline_push_events_total",
			Help: "Push-channel events by type and whether they triggered a refresh.",
		}, []string{"type", "acted"}),
		WSReconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cityline_ws_reconnects_total",
			Help: "Reconnect attempts on the push channel.",
		}),
	}

	reg.MustRegister(
		m.RefreshesTotal,
		m.RefreshDuration,
		m.SnapshotSize,
		m.CommandsTotal,
		m.PushEventsTotal,
		m.WSReconnectsTotal,
	)

	return m
}

// Hooks adapts the metrics to console callbacks.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnRefresh: func(outcome string, dur time.Duration, size int) {
			m.RefreshesTotal.WithLabelValues(outcome).Inc()
			m.RefreshDuration.Observe(dur.Seconds())
			m.SnapshotSize.Set(float64(size))
		},
		OnCommand: func(result string) {
			m.CommandsTotal.WithLabelValues(result).Inc()
		},
	}
}

// NotifierHooks adapts the metrics to push-channel callbacks.
func (m *Metrics) NotifierHooks() notifier.Hooks {
	return notifier.Hooks{
		OnEvent: func(eventType string, acted bool) {
			acts := "false"
			if acted {
				acts = "true"
			}
			m.PushEventsTotal.WithLabelValues(eventType, acts).Inc()
		},
		OnReconnect: func() {
			m.WSReconnectsTotal.Inc()
		},
	}
}
