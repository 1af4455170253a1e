// Package metrics exposes checkout counters and latency histograms for
// Prometheus scraping at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics implements checkout.Metrics.
type CheckoutMetrics struct {
	duration   *prometheus.HistogramVec
	rejections *prometheus.CounterVec
	voids      prometheus.Counter
	warnings   *prometheus.CounterVec
}

func NewCheckoutMetrics() *CheckoutMetrics {
	m := &CheckoutMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pos_checkout_duration_seconds",
				Help:    "Duration of checkout processing in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_checkout_rejections_total",
				Help: "Checkout rejections by reason code",
			},
			[]string{"reason"},
		),
		voids: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pos_sales_voided_total",
				Help: "Number of voided sales",
			},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_stock_warnings_total",
				Help: "Stock warnings emitted after completed sales",
			},
			[]string{"kind"},
		),
	}

	prometheus.MustRegister(m.duration, m.rejections, m.voids, m.warnings)
	return m
}

func (m *CheckoutMetrics) ObserveCheckout(status string, elapsed time.Duration) {
	m.duration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *CheckoutMetrics) IncRejection(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *CheckoutMetrics) IncVoid() {
	m.voids.Inc()
}

func (m *CheckoutMetrics) IncWarning(kind string) {
	m.warnings.WithLabelValues(kind).Inc()
}
