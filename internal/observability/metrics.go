package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics mengumpulkan metrik Prometheus untuk back-office. It also
// implements shared.Recorder so domain services can count their events.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	salesCommitted     prometheus.Counter
	salesVoided        prometheus.Counter
	salesRevenue       prometheus.Counter
	validationFailures *prometheus.CounterVec
	lowStockItems      prometheus.Gauge
}

// NewMetrics menginisialisasi registry, metrik HTTP, dan metrik domain.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	committed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_sales_committed_total",
		Help: "Sales committed from a draft.",
	})
	voided := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_sales_voided_total",
		Help: "Completed sales moved to voided.",
	})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_sales_revenue_total",
		Help: "Sum of committed sale totals.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_validation_failures_total",
		Help: "Rejected inputs by entity.",
	}, []string{"entity"})
	lowStock := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backoffice_low_stock_items",
		Help: "Inventory items at or below their reorder level on the last check.",
	})
	registry.MustRegister(requests, duration, committed, voided, revenue, failures, lowStock)
	return &Metrics{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:      requests,
		requestDuration:    duration,
		salesCommitted:     committed,
		salesVoided:        voided,
		salesRevenue:       revenue,
		validationFailures: failures,
		lowStockItems:      lowStock,
	}
}

// Handler mengembalikan handler HTTP untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat jumlah dan durasi permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ValidationFailed counts one rejected input for entity.
func (m *Metrics) ValidationFailed(entity string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(entity).Inc()
}

// SaleCommitted counts a committed sale and adds its total to revenue.
func (m *Metrics) SaleCommitted(total decimal.Decimal) {
	if m == nil {
		return
	}
	m.salesCommitted.Inc()
	if total.IsPositive() {
		m.salesRevenue.Add(total.InexactFloat64())
	}
}

// SaleVoided counts a voided sale.
func (m *Metrics) SaleVoided() {
	if m == nil {
		return
	}
	m.salesVoided.Inc()
}

// LowStockItems records the size of the latest low-stock list.
func (m *Metrics) LowStockItems(n int) {
	if m == nil {
		return
	}
	m.lowStockItems.Set(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
