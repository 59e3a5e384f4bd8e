// Package metrics provides a centralized set of Prometheus collectors for
// the bus, provider, tool, and session subsystems.
//
// Grounded on internal/observability/metrics.go of the teacher, narrowed
// to the metric families this repository's components actually emit. The
// active-session gauge is the exception: it changes only through
// SetActiveSessions, which no component in this repository calls.
package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

// Metrics is the process-wide collector set. A nil *Metrics is safe to
// call methods on (all methods no-op), so components can be constructed
// without metrics in tests.
type Metrics struct {
	BusPublished   *prometheus.CounterVec
	BusTimeouts    *prometheus.CounterVec
	ProviderCalls  *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
	ProviderQuarantines *prometheus.CounterVec
	ToolCalls      *prometheus.CounterVec
	ToolLatency    *prometheus.HistogramVec
	SessionActive  prometheus.Gauge
}

// New registers and returns a fresh collector set against reg. If reg is
// nil, prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BusPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zoidclaw",
			Subsystem: "bus",
			Name:      "messages_published_total",
			Help:      "Outbound bus messages published, by channel and kind.",
		}, []string{"channel", "kind"}),
		BusTimeouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zoidclaw",
			Subsystem: "bus",
			Name:      "dispatch_timeouts_total",
			Help:      "Outbound dispatch callbacks that exceeded the timeout.",
		}, []string{"channel"}),
		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zoidclaw",
			Subsystem: "provider",
			Name:      "calls_total",
			Help:      "LLM provider calls, by provider and status.",
		}, []string{"provider", "status"}),
		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zoidclaw",
			Subsystem: "provider",
			Name:      "call_duration_seconds",
			Help:      "LLM provider call latency in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider"}),
		ProviderQuarantines: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zoidclaw",
			Subsystem: "provider",
			Name:      "quarantines_total",
			Help:      "Times a provider entered quarantine after a transient failure.",
		}, []string{"provider"}),
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zoidclaw",
			Subsystem: "tool",
			Name:      "calls_total",
			Help:      "Tool invocations, by tool name and status.",
		}, []string{"tool", "status"}),
		ToolLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zoidclaw",
			Subsystem: "tool",
			Name:      "call_duration_seconds",
			Help:      "Tool execution latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"tool"}),
		SessionActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "zoidclaw",
			Subsystem: "session",
			Name:      "active_sessions",
			Help:      "Number of sessions currently cached in memory.",
		}),
	}
}

// BusPublishedInc records a published outbound message.
func (m *Metrics) BusPublishedInc(channel, kind string) {
	if m == nil {
		return
	}
	m.BusPublished.WithLabelValues(channel, kind).Inc()
}

// BusTimeoutInc records a dispatch callback that exceeded its timeout.
func (m *Metrics) BusTimeoutInc(channel string) {
	if m == nil {
		return
	}
	m.BusTimeouts.WithLabelValues(channel).Inc()
}

// providerCall records the outcome and latency of a provider call.
func (m *Metrics) providerCall(provider, status string, seconds float64) {
	m.ProviderCalls.WithLabelValues(provider, status).Inc()
	m.ProviderLatency.WithLabelValues(provider).Observe(seconds)
}

// providerQuarantined records a provider entering quarantine.
func (m *Metrics) providerQuarantined(provider string) {
	m.ProviderQuarantines.WithLabelValues(provider).Inc()
}

// toolCall records the outcome and latency of a tool execution.
func (m *Metrics) toolCall(tool, status string, seconds float64) {
	m.ToolCalls.WithLabelValues(tool, status).Inc()
	m.ToolLatency.WithLabelValues(tool).Observe(seconds)
}

// Record is the metrics package's half of the RuntimeEvent telemetry
// contract (models.RuntimeEvent): provider call completions and
// quarantines and tool completions move the corresponding collector;
// every kind, including the started/dispatched events that have no
// counter of their own, is also logged at debug level so the full
// lifecycle is visible in logs even without a metrics scrape.
func (m *Metrics) Record(ev models.RuntimeEvent) {
	if m == nil {
		return
	}

	status := "success"
	if ev.Err != "" {
		status = "error"
	}

	switch ev.Kind {
	case models.EventProviderCallFinished:
		m.providerCall(ev.Provider, status, ev.Duration.Seconds())
	case models.EventProviderQuarantined:
		m.providerQuarantined(ev.Provider)
	case models.EventToolFinished:
		m.toolCall(ev.Tool, status, ev.Duration.Seconds())
	case models.EventBusTimeout:
		m.BusTimeoutInc(ev.Channel)
	}

	attrs := []any{"kind", string(ev.Kind)}
	if ev.Provider != "" {
		attrs = append(attrs, "provider", ev.Provider)
	}
	if ev.Tool != "" {
		attrs = append(attrs, "tool", ev.Tool)
	}
	if ev.Channel != "" {
		attrs = append(attrs, "channel", ev.Channel)
	}
	if ev.Duration > 0 {
		attrs = append(attrs, "duration", ev.Duration)
	}
	if ev.Err != "" {
		attrs = append(attrs, "error", ev.Err)
	}
	slog.Debug("runtime event", attrs...)
}

// SetActiveSessions updates the active session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.SessionActive.Set(float64(n))
}
