package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus primitives scraped from /metrics.
type Metrics struct {
	apiRequests   *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
	invoiceAmount *prometheus.HistogramVec
}

// NewMetrics registers the HTTP and invoice collectors on reg. A nil reg
// uses the default registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicely_api_requests_total",
		Help: "Counts API requests by method, route and status.",
	}, []string{"method", "route", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoicely_api_duration_seconds",
		Help:    "API request latency per method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	invoiceAmount := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoicely_invoice_total_amount",
		Help:    "Distribution of invoice totals by currency.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	}, []string{"currency"})

	m := &Metrics{}
	var err error
	if m.apiRequests, err = register(reg, apiRequests); err != nil {
		return nil, err
	}
	if m.apiDuration, err = register(reg, apiDuration); err != nil {
		return nil, err
	}
	if m.invoiceAmount, err = register(reg, invoiceAmount); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the already registered collector when one exists so
// several fx apps can share the default registry in one process.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveAPIRequest records an API request and latency.
func (m *Metrics) ObserveAPIRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	methodLabel := sanitizeLabel(method)
	routeLabel := sanitizeLabel(route)
	m.apiRequests.WithLabelValues(methodLabel, routeLabel, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(methodLabel, routeLabel).Observe(duration.Seconds())
}

// ObserveInvoiceAmount records the distribution of invoice totals.
func (m *Metrics) ObserveInvoiceAmount(currency string, amount float64) {
	if m == nil {
		return
	}
	m.invoiceAmount.WithLabelValues(sanitizeLabel(currency)).Observe(amount)
}

func sanitizeLabel(val string) string {
	if val == "" {
		return "unknown"
	}
	return val
}
