package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records outcomes of remote cart synchronization calls.
type SyncMetrics struct {
	duration   *prometheus.HistogramVec
	success    *prometheus.CounterVec
	failure    *prometheus.CounterVec
	superseded *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_sync_duration_seconds",
		Help:    "Duration of remote cart calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_success_total",
		Help: "Remote cart calls that completed.",
	}, []string{"op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_failure_total",
		Help: "Remote cart calls that failed after the local commit.",
	}, []string{"op"})
	superseded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_superseded_total",
		Help: "Remote cart calls canceled by a newer mutation for the same product.",
	}, []string{"op"})
	reg.MustRegister(duration, success, failure, superseded)
	return &SyncMetrics{
		duration:   duration,
		success:    success,
		failure:    failure,
		superseded: superseded,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *SyncMetrics) ObserveDuration(op string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *SyncMetrics) IncSuccess(op string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *SyncMetrics) IncFailure(op string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncSuperseded increments the superseded counter for the named operation.
func (m *SyncMetrics) IncSuperseded(op string) {
	if m == nil || m.superseded == nil {
		return
	}
	m.superseded.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
