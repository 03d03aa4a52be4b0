// Package metrics defines the application's Prometheus collectors. They are
// registered on the metrics server's registry at startup.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// TicksTotal counts completed sampling ticks across all sessions.
	TicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smardesk_ticks_total",
		Help: "Total number of completed sampling ticks",
	})

	// TicksSkipped counts ticks dropped because the landmark estimate failed.
	TicksSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smardesk_ticks_skipped_total",
		Help: "Total number of sampling ticks skipped due to estimate failures",
	})

	// VerdictsTotal counts combined verdicts by domain and status.
	VerdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smardesk_verdicts_total",
		Help: "Total number of combined verdicts emitted",
	}, []string{"domain", "status"})

	// AdviceTotal counts emitted advice events by type and priority.
	AdviceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smardesk_advice_total",
		Help: "Total number of advice events emitted",
	}, []string{"type", "priority"})

	// SessionsActive tracks currently running tracking sessions.
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "smardesk_sessions_active",
		Help: "Number of active tracking sessions",
	})

	// ChatRequestsTotal counts chat proxy requests by outcome
	// (ok, limited, upstream_error, bad_request).
	ChatRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smardesk_chat_requests_total",
		Help: "Total number of chat proxy requests",
	}, []string{"outcome"})

	// ChatUpstreamDuration observes upstream chat API latency.
	ChatUpstreamDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "smardesk_chat_upstream_duration_seconds",
		Help:    "Latency of upstream chat API calls",
		Buckets: prometheus.DefBuckets,
	})
)

// All returns every collector for registration.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		TicksTotal,
		TicksSkipped,
		VerdictsTotal,
		AdviceTotal,
		SessionsActive,
		ChatRequestsTotal,
		ChatUpstreamDuration,
	}
}
