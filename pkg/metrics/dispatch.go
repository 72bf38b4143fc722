package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records side-effect delivery outcomes in the worker.
type DispatchMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	skipped  *prometheus.CounterVec
}

// NewDispatchMetrics registers the dispatcher metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_duration_seconds",
		Help:    "Duration of side-effect dispatch per channel in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_success",
		Help: "Successful side-effect deliveries.",
	}, []string{"channel", "event_type"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_failure",
		Help: "Failed side-effect deliveries.",
	}, []string{"channel", "event_type"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_skipped",
		Help: "Events skipped because they were already processed.",
	}, []string{"event_type"})
	reg.MustRegister(duration, success, failure, skipped)
	return &DispatchMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		skipped:  skipped,
	}
}

// ObserveDuration records the delivery duration for the channel.
func (m *DispatchMetrics) ObserveDuration(channel string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(channel)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter.
func (m *DispatchMetrics) IncSuccess(channel, eventType string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(channel), normalizeLabel(eventType)).Inc()
}

// IncFailure increments the failure counter.
func (m *DispatchMetrics) IncFailure(channel, eventType string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(channel), normalizeLabel(eventType)).Inc()
}

// IncSkipped increments the duplicate-event counter.
func (m *DispatchMetrics) IncSkipped(eventType string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(eventType)).Inc()
}
