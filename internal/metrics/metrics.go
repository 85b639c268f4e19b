// Package metrics holds the Prometheus collectors for the sync client and
// the reference backend.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Replay outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// Sync records the state of the pending-operation queue. A nil *Sync is
// valid and records nothing.
type Sync struct {
	queueDepth    prometheus.Gauge
	enqueued      *prometheus.CounterVec
	replayed      *prometheus.CounterVec
	drainDuration prometheus.Histogram
}

// NewSync registers the sync collectors with reg.
func NewSync(reg prometheus.Registerer) *Sync {
	factory := promauto.With(reg)
	return &Sync{
		queueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fintrack_sync_queue_depth",
				Help: "Number of operations waiting to be replayed against the remote",
			},
		),
		enqueued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_sync_enqueued_total",
				Help: "Total number of operations queued for later replay",
			},
			[]string{"kind", "action"},
		),
		replayed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_sync_replayed_total",
				Help: "Total number of queued operations replayed, by outcome",
			},
			[]string{"kind", "action", "outcome"},
		),
		drainDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fintrack_sync_drain_duration_milliseconds",
				Help:    "Duration of one pass over the sync queue in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 14),
			},
		),
	}
}

// SetQueueDepth records the current queue length.
func (m *Sync) SetQueueDepth(n int64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// ObserveEnqueue counts a queued operation.
func (m *Sync) ObserveEnqueue(kind, action string) {
	if m == nil {
		return
	}
	m.enqueued.WithLabelValues(kind, action).Inc()
}

// ObserveReplay counts a replay attempt.
func (m *Sync) ObserveReplay(kind, action, outcome string) {
	if m == nil {
		return
	}
	m.replayed.WithLabelValues(kind, action, outcome).Inc()
}

// ObserveDrain records how long a drain took.
func (m *Sync) ObserveDrain(d time.Duration) {
	if m == nil {
		return
	}
	m.drainDuration.Observe(float64(d.Milliseconds()))
}

// HTTP records backend request metrics.
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTP registers the HTTP collectors with reg.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	factory := promauto.With(reg)
	return &HTTP{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_http_request_duration_milliseconds",
				Help:    "HTTP request latency in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"method", "route"},
		),
	}
}

// Observe records one served request.
func (m *HTTP) Observe(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(float64(d.Milliseconds()))
}
