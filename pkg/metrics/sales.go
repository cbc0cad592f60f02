package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics records checkout throughput and notifier outcomes.
type SaleMetrics struct {
	committed      *prometheus.CounterVec
	checkoutErrors *prometheus.CounterVec
	duration       prometheus.Histogram
	notifyOutcome  *prometheus.CounterVec
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
// A nil registerer yields a no-op recorder, which keeps tests quiet.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_committed_total",
		Help: "Sales committed to the store, by account type.",
	}, []string{"account_type"})
	checkoutErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_errors_total",
		Help: "Failed checkout attempts, by error code.",
	}, []string{"code"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of the checkout commit sequence in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	notifyOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sale_notifications_total",
		Help: "Best-effort sale notification outcomes.",
	}, []string{"outcome"})
	reg.MustRegister(committed, checkoutErrors, duration, notifyOutcome)
	return &SaleMetrics{
		committed:      committed,
		checkoutErrors: checkoutErrors,
		duration:       duration,
		notifyOutcome:  notifyOutcome,
	}
}

// IncCommitted counts a durable sale for the given account type.
func (m *SaleMetrics) IncCommitted(accountType string) {
	if m == nil || m.committed == nil {
		return
	}
	m.committed.WithLabelValues(normalizeLabel(accountType)).Inc()
}

// IncCheckoutError counts a rejected or failed checkout.
func (m *SaleMetrics) IncCheckoutError(code string) {
	if m == nil || m.checkoutErrors == nil {
		return
	}
	m.checkoutErrors.WithLabelValues(normalizeLabel(code)).Inc()
}

// ObserveCheckoutDuration records the time the commit sequence took.
func (m *SaleMetrics) ObserveCheckoutDuration(d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}

// IncNotifySuccess counts a delivered sale notification.
func (m *SaleMetrics) IncNotifySuccess() {
	if m == nil || m.notifyOutcome == nil {
		return
	}
	m.notifyOutcome.WithLabelValues("success").Inc()
}

// IncNotifyFailure counts a swallowed sale notification failure.
func (m *SaleMetrics) IncNotifyFailure() {
	if m == nil || m.notifyOutcome == nil {
		return
	}
	m.notifyOutcome.WithLabelValues("failure").Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
