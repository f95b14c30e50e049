package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level metadata for the API.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewHTTPMetrics registers the request metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records one completed request.
func (h *HTTPMetrics) Observe(method, path, status string, elapsed time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(method, path).Observe(elapsed.Seconds())
	h.requests.WithLabelValues(method, path, status).Inc()
}

// StockMetrics counts ledger activity.
type StockMetrics struct {
	adjustments *prometheus.CounterVec
	rejections  *prometheus.CounterVec
}

// NewStockMetrics registers the stock ledger metrics on the provided registerer.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Committed stock adjustments by target type and direction.",
	}, []string{"target", "direction"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustment_rejections_total",
		Help: "Adjustments rejected for insufficient stock.",
	}, []string{"target"})
	reg.MustRegister(adjustments, rejections)
	return &StockMetrics{
		adjustments: adjustments,
		rejections:  rejections,
	}
}

// IncAdjustment records a committed ledger entry.
func (s *StockMetrics) IncAdjustment(target string, increase bool) {
	if s == nil || s.adjustments == nil {
		return
	}
	direction := "decrease"
	if increase {
		direction = "increase"
	}
	s.adjustments.WithLabelValues(normalizeLabel(target), direction).Inc()
}

// IncRejection records an adjustment refused for lack of stock.
func (s *StockMetrics) IncRejection(target string) {
	if s == nil || s.rejections == nil {
		return
	}
	s.rejections.WithLabelValues(normalizeLabel(target)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
