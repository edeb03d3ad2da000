// Package metrics provides Prometheus metrics collection for CourseGate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for CourseGate.
type Collector struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Access evaluation metrics
	AccessDecisions *prometheus.CounterVec

	// Purchase metrics
	PurchasesTotal   *prometheus.CounterVec
	PurchaseAmount   *prometheus.CounterVec
	PurchaseFailures *prometheus.CounterVec

	// Offer metrics
	OffersComputed prometheus.Counter
}

// New creates a new metrics collector with all metrics registered.
func New() *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coursegate",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "coursegate",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),
		AccessDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coursegate",
				Name:      "access_decisions_total",
				Help:      "Access decisions by outcome and path taken",
			},
			[]string{"allowed", "via"},
		),
		PurchasesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coursegate",
				Name:      "purchases_total",
				Help:      "Committed purchases by kind",
			},
			[]string{"kind"},
		),
		PurchaseAmount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coursegate",
				Name:      "purchase_amount_cents_total",
				Help:      "Total amount charged, in cents, by kind and currency",
			},
			[]string{"kind", "currency"},
		),
		PurchaseFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coursegate",
				Name:      "purchase_failures_total",
				Help:      "Rejected purchase attempts by reason",
			},
			[]string{"reason"},
		),
		OffersComputed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "coursegate",
				Name:      "offers_computed_total",
				Help:      "Upgrade offer computations",
			},
		),
	}
}
