// Package ratingmetrics records operation and domain metrics for the rating module.
package ratingmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RatingMetrics is the metrics surface the rating service and handlers depend on.
type RatingMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	// RecordHandlerAttempt and friends back handlerwrapper.ReturningMetrics.
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)

	RecordRatingDelta(ctx context.Context, category string, delta int)
	RecordMatchFinalized(ctx context.Context, category string, noop bool)
}

type prometheusMetrics struct {
	operationAttempts *prometheus.CounterVec
	operationSuccess  *prometheus.CounterVec
	operationFailures *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	handlerAttempts   *prometheus.CounterVec
	handlerSuccess    *prometheus.CounterVec
	handlerFailures   *prometheus.CounterVec
	handlerDuration   *prometheus.HistogramVec
	ratingDelta       *prometheus.HistogramVec
	finalized         *prometheus.CounterVec
}

// NewPrometheus registers the rating collectors on reg. A nil reg uses the
// default registerer.
func NewPrometheus(reg prometheus.Registerer) RatingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &prometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		operationSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "operation_success_total",
			Help:      "Service operations that completed without infrastructure error.",
		}, []string{"operation", "service"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "operation_failures_total",
			Help:      "Service operations that failed with an infrastructure error or panic.",
		}, []string{"operation", "service"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rating",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		handlerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "handler_attempts_total",
			Help:      "Event handler invocations.",
		}, []string{"handler"}),
		handlerSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "handler_success_total",
			Help:      "Event handler invocations that succeeded.",
		}, []string{"handler"}),
		handlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "handler_failures_total",
			Help:      "Event handler invocations that returned an error.",
		}, []string{"handler"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rating",
			Name:      "handler_duration_seconds",
			Help:      "Event handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
		ratingDelta: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rating",
			Name:      "delta_points",
			Help:      "Absolute rating delta applied per finalized match.",
			Buckets:   []float64{1, 5, 10, 15, 20, 30, 40, 60, 80, 120},
		}, []string{"category"}),
		finalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rating",
			Name:      "matches_finalized_total",
			Help:      "Finalize calls, split by whether ratings were applied.",
		}, []string{"category", "noop"}),
	}

	reg.MustRegister(
		m.operationAttempts, m.operationSuccess, m.operationFailures, m.operationDuration,
		m.handlerAttempts, m.handlerSuccess, m.handlerFailures, m.handlerDuration,
		m.ratingDelta, m.finalized,
	)
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operationAttempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operationSuccess.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operationFailures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordHandlerAttempt(_ context.Context, handlerName string) {
	m.handlerAttempts.WithLabelValues(handlerName).Inc()
}

func (m *prometheusMetrics) RecordHandlerSuccess(_ context.Context, handlerName string) {
	m.handlerSuccess.WithLabelValues(handlerName).Inc()
}

func (m *prometheusMetrics) RecordHandlerFailure(_ context.Context, handlerName string) {
	m.handlerFailures.WithLabelValues(handlerName).Inc()
}

func (m *prometheusMetrics) RecordHandlerDuration(_ context.Context, handlerName string, duration time.Duration) {
	m.handlerDuration.WithLabelValues(handlerName).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordRatingDelta(_ context.Context, category string, delta int) {
	if delta < 0 {
		delta = -delta
	}
	m.ratingDelta.WithLabelValues(category).Observe(float64(delta))
}

func (m *prometheusMetrics) RecordMatchFinalized(_ context.Context, category string, noop bool) {
	label := "false"
	if noop {
		label = "true"
	}
	m.finalized.WithLabelValues(category, label).Inc()
}
