// Package telemetry 以 Prometheus 指標記錄食譜管線的行為。
// 所有方法都可在 nil *Metrics 上呼叫，未啟用指標時不需額外判斷。
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the recipe assistant.
type Metrics struct {
	RequestTotal         *prometheus.CounterVec
	RequestDurationMs    *prometheus.HistogramVec
	AttemptsPerRequest   prometheus.Histogram
	ClassificationTotal  *prometheus.CounterVec
	ViolationTotal       *prometheus.CounterVec
	GeneratorErrorsTotal prometheus.Counter
	CacheLookupTotal     *prometheus.CounterVec
	PolicyReloadTotal    *prometheus.CounterVec
	QueueRejectionsTotal prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_request_total",
			Help: "Total number of requests handled by the recipe pipeline.",
		}, []string{"category", "status"}),

		RequestDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipe_request_duration_ms",
			Help:    "End-to-end pipeline duration in milliseconds.",
			Buckets: []float64{1, 10, 50, 250, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"status"}),

		AttemptsPerRequest: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipe_generation_attempts",
			Help:    "Generator attempts per accepted request.",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),

		ClassificationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_classification_total",
			Help: "Requests by category and the matcher that decided it.",
		}, []string{"category", "matcher"}),

		ViolationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_contract_violation_total",
			Help: "Contract violations found in candidate recipes.",
		}, []string{"code"}),

		GeneratorErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipe_generator_errors_total",
			Help: "Generator calls that failed before producing a candidate.",
		}),

		CacheLookupTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_cache_lookup_total",
			Help: "Validated-recipe cache lookups.",
		}, []string{"result"}),

		PolicyReloadTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_policy_reload_total",
			Help: "Refusal rule reloads.",
		}, []string{"result"}),

		QueueRejectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipe_queue_rejections_total",
			Help: "Requests rejected because the worker queue was full.",
		}),
	}
}

// ObserveRequest records a finished pipeline run.
func (m *Metrics) ObserveRequest(category, status string, attempts int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestTotal.WithLabelValues(category, status).Inc()
	m.RequestDurationMs.WithLabelValues(status).Observe(float64(d.Microseconds()) / 1000)
	if attempts > 0 {
		m.AttemptsPerRequest.Observe(float64(attempts))
	}
}

// IncClassification counts a classification decision.
func (m *Metrics) IncClassification(category, matcher string) {
	if m == nil {
		return
	}
	m.ClassificationTotal.WithLabelValues(category, matcher).Inc()
}

// IncViolation counts one contract violation.
func (m *Metrics) IncViolation(code string) {
	if m == nil {
		return
	}
	m.ViolationTotal.WithLabelValues(code).Inc()
}

// IncGeneratorError counts a failed generator call.
func (m *Metrics) IncGeneratorError() {
	if m == nil {
		return
	}
	m.GeneratorErrorsTotal.Inc()
}

// IncCacheLookup counts a cache hit or miss.
func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupTotal.WithLabelValues(result).Inc()
}

// IncPolicyReload counts a rules reload attempt.
func (m *Metrics) IncPolicyReload(ok bool) {
	if m == nil {
		return
	}
	m.PolicyReloadTotal.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

// IncQueueRejection counts a request turned away by a full queue.
func (m *Metrics) IncQueueRejection() {
	if m == nil {
		return
	}
	m.QueueRejectionsTotal.Inc()
}
