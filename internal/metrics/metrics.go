package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tabung"

// Metrics holds the application collectors on a private registry.
// All methods are no-ops on a nil receiver.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	activities   *prometheus.CounterVec
	stockUpserts *prometheus.CounterVec
	billingRuns  *prometheus.CounterVec
	billedAmount prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
		activities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "activities_total",
				Help:      "Activity records by outcome.",
			},
			[]string{"result"},
		),
		stockUpserts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "stock_upserts_total",
				Help:      "Per-cylinder stock writes by action.",
			},
			[]string{"action"},
		),
		billingRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "runs_total",
				Help:      "Billing derivations by outcome.",
			},
			[]string{"result"},
		),
		billedAmount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "amount_total",
				Help:      "Sum of billed totals.",
			},
		),
	}

	m.Registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.activities,
		m.stockUpserts,
		m.billingRuns,
		m.billedAmount,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) ActivityRecorded(result string) {
	if m == nil {
		return
	}
	m.activities.WithLabelValues(result).Inc()
}

func (m *Metrics) StockUpsert(action string) {
	if m == nil {
		return
	}
	m.stockUpserts.WithLabelValues(action).Inc()
}

func (m *Metrics) BillingRun(result string, amount float64) {
	if m == nil {
		return
	}
	m.billingRuns.WithLabelValues(result).Inc()
	if amount > 0 {
		m.billedAmount.Add(amount)
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
