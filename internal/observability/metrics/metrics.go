// Package metrics exposes prometheus instruments for the HTTP surface and
// the billing pipeline.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics instruments inbound HTTP requests.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aquabill_http_requests_total",
			Help: "Total HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aquabill_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// GinMiddleware records request counts and latencies.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.requests.WithLabelValues(route, method, status).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// BillingMetrics counts billing pipeline outcomes.
type BillingMetrics struct {
	readingsRecorded *prometheus.CounterVec
	readingsRejected *prometheus.CounterVec
	invoicesIssued   prometheus.Counter
	paymentsRecorded *prometheus.CounterVec
	paymentsRejected *prometheus.CounterVec
	invoicesSettled  prometheus.Counter
}

func NewBillingMetrics() *BillingMetrics {
	return &BillingMetrics{
		readingsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aquabill_readings_recorded_total",
			Help: "Meter readings accepted.",
		}, []string{"company"}),
		readingsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aquabill_readings_rejected_total",
			Help: "Meter readings rejected, by reason.",
		}, []string{"reason"}),
		invoicesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aquabill_invoices_issued_total",
			Help: "Invoices generated from readings.",
		}),
		paymentsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aquabill_payments_recorded_total",
			Help: "Payments applied, by method.",
		}, []string{"method"}),
		paymentsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aquabill_payments_rejected_total",
			Help: "Payments rejected, by reason.",
		}, []string{"reason"}),
		invoicesSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aquabill_invoices_settled_total",
			Help: "Invoices fully paid.",
		}),
	}
}

func (m *BillingMetrics) RecordReadingAccepted(companyID string) {
	if m == nil {
		return
	}
	m.readingsRecorded.WithLabelValues(companyID).Inc()
}

func (m *BillingMetrics) RecordReadingRejected(reason string) {
	if m == nil {
		return
	}
	m.readingsRejected.WithLabelValues(strings.TrimSpace(reason)).Inc()
}

func (m *BillingMetrics) RecordInvoiceIssued() {
	if m == nil {
		return
	}
	m.invoicesIssued.Inc()
}

func (m *BillingMetrics) RecordPaymentAccepted(method string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(strings.TrimSpace(method)).Inc()
}

func (m *BillingMetrics) RecordPaymentRejected(reason string) {
	if m == nil {
		return
	}
	m.paymentsRejected.WithLabelValues(strings.TrimSpace(reason)).Inc()
}

func (m *BillingMetrics) RecordInvoiceSettled() {
	if m == nil {
		return
	}
	m.invoicesSettled.Inc()
}
