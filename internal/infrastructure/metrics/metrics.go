package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/domain"
)

const namespace = "gocommission"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Commission metrics
	CommissionOutcomes *prometheus.CounterVec
	CommissionDuration *prometheus.HistogramVec
	PayoutAmount       *prometheus.HistogramVec
	PayoutTotal        *prometheus.CounterVec

	// Batch worker metrics
	BatchRuns  *prometheus.CounterVec
	BatchItems *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter

	// Ledger metrics
	ConservationViolations prometheus.Gauge

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits prometheus.Counter
}

// New creates the metrics and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		CommissionOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commission_outcomes_total",
				Help:      "Commission processing attempts by outcome",
			},
			[]string{"outcome"},
		),
		CommissionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "commission_duration_seconds",
				Help:      "Duration of commission processing",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		PayoutAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "payout_amount",
				Help:      "Commission payout amounts by role",
				Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"role"},
		),
		PayoutTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payout_total",
				Help:      "Sum of commission paid by role",
			},
			[]string{"role"},
		),

		BatchRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_runs_total",
				Help:      "Batch worker runs by status",
			},
			[]string{"status"},
		),
		BatchItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_items_total",
				Help:      "Sale items handled by the batch worker by result",
			},
			[]string{"result"},
		),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox events published",
		}),
		OutboxErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_errors_total",
			Help:      "Outbox events that failed to publish",
		}),

		ConservationViolations: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_conservation_violations",
			Help:      "Processed sale items whose totals disagree with their ledger entries",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// RecordOutcome implements usecase.CommissionMetrics.
func (m *Metrics) RecordOutcome(outcome string, duration time.Duration) {
	m.CommissionOutcomes.WithLabelValues(outcome).Inc()
	m.CommissionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordPayout implements usecase.CommissionMetrics.
// Ancestor levels share one "parent_level" label to bound cardinality.
func (m *Metrics) RecordPayout(role domain.CommissionType, amount decimal.Decimal) {
	label := string(role)
	if role.Level() > 0 {
		label = "parent_level"
	}

	value := amount.InexactFloat64()
	m.PayoutAmount.WithLabelValues(label).Observe(value)
	m.PayoutTotal.WithLabelValues(label).Add(value)
}

// RecordBatch records a finished batch worker run.
func (m *Metrics) RecordBatch(processed, skipped, failed int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	m.BatchRuns.WithLabelValues(status).Inc()
	m.BatchItems.WithLabelValues("processed").Add(float64(processed))
	m.BatchItems.WithLabelValues("skipped").Add(float64(skipped))
	m.BatchItems.WithLabelValues("failed").Add(float64(failed))
}

// RecordPublish records the result of publishing one outbox event.
func (m *Metrics) RecordPublish(err error) {
	if err != nil {
		m.OutboxErrors.Inc()
		return
	}

	m.OutboxPublished.Inc()
}

// RecordConsistency implements usecase.ConsistencyObserver.
func (m *Metrics) RecordConsistency(violations int) {
	m.ConservationViolations.Set(float64(violations))
}
