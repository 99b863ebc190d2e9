// Package metrics defines the Prometheus collectors for the quote
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the quote service.
type Metrics struct {
	QuoteFetchesTotal prometheus.Counter
	QuoteFetchErrors  prometheus.Counter
	QuoteFetchDur     prometheus.Histogram

	// Live stream
	StreamEventsTotal   *prometheus.CounterVec // labels: type
	ActiveSubscriptions prometheus.Gauge
	DroppedEvents       prometheus.Counter
	PolledSymbols       prometheus.Gauge

	// Alert evaluation
	SweepsTotal          prometheus.Counter
	SweepDur             prometheus.Histogram
	AlertsCheckedTotal   prometheus.Counter
	AlertsTriggeredTotal prometheus.Counter

	// Quote cache
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New registers and returns all metrics on the given registerer.
// Tests pass a fresh prometheus.NewRegistry() to avoid collisions.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QuoteFetchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quoteserver_quote_fetches_total",
			Help: "Total upstream quote fetches attempted",
		}),
		QuoteFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quoteserver_quote_fetch_errors_total",
			Help: "Total upstream quote fetches that failed or timed out",
		}),
		QuoteFetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quoteserver_quote_fetch_duration_seconds",
			Help:    "Upstream quote fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		StreamEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quoteserver_stream_events_total",
			Help: "Stream events emitted to subscribers, by event type",
		}, []string{"type"}),
		ActiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quoteserver_active_subscriptions",
			Help: "Currently open live-quote subscriptions",
		}),
		DroppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quoteserver_dropped_events_total",
			Help: "Events dropped because a subscriber channel was full",
		}),
		PolledSymbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quoteserver_polled_symbols",
			Help: "Distinct symbols in the shared poll cycle",
		}),
		SweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quoteserver_alert_sweeps_total",
			Help: "Alert evaluation sweeps run",
		}),
		SweepDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quoteserver_alert_sweep_duration_seconds",
			Help:    "Alert evaluation sweep duration",
			Buckets: prometheus.DefBuckets,
		}),
		AlertsCheckedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quoteserver_alerts_checked_total",
			Help: "Alerts examined across all sweeps",
		}),
		AlertsTriggeredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quoteserver_alerts_triggered_total",
			Help: "Alerts transitioned to triggered",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quoteserver_quote_cache_hits_total",
			Help: "Quote cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quoteserver_quote_cache_misses_total",
			Help: "Quote cache misses",
		}),
	}

	reg.MustRegister(
		m.QuoteFetchesTotal, m.QuoteFetchErrors, m.QuoteFetchDur,
		m.StreamEventsTotal, m.ActiveSubscriptions, m.DroppedEvents, m.PolledSymbols,
		m.SweepsTotal, m.SweepDur, m.AlertsCheckedTotal, m.AlertsTriggeredTotal,
		m.CacheHits, m.CacheMisses,
	)
	return m
}
