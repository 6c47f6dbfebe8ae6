package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess  = "success"
	StatusFailed   = "failed"
	StatusFallback = "fallback"
)

// Metrics holds all Prometheus metrics for the service. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ExtractionsTotal    *prometheus.CounterVec
	ContentTotal        *prometheus.CounterVec
	ImagesTotal         *prometheus.CounterVec
	PublishTotal        *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propgen_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "propgen_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		ExtractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propgen_extractions_total",
			Help: "Listing extractions by outcome.",
		}, []string{"status"}),
		ContentTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propgen_content_generation_total",
			Help: "Caption generations by platform and outcome.",
		}, []string{"platform", "status"}),
		ImagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propgen_images_total",
			Help: "Composed images by composer, format and outcome.",
		}, []string{"composer", "format", "status"}),
		PublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propgen_publish_total",
			Help: "Publish attempts by platform and outcome.",
		}, []string{"platform", "status"}),
	}
}

func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

func (m *Metrics) IncExtraction(status string) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncContent(platform, status string) {
	if m == nil {
		return
	}
	m.ContentTotal.WithLabelValues(platform, status).Inc()
}

func (m *Metrics) IncImage(composer, format, status string) {
	if m == nil {
		return
	}
	m.ImagesTotal.WithLabelValues(composer, format, status).Inc()
}

func (m *Metrics) IncPublish(platform, status string) {
	if m == nil {
		return
	}
	m.PublishTotal.WithLabelValues(platform, status).Inc()
}

// Outcome maps an error to the status label
func Outcome(err error) string {
	if err != nil {
		return StatusFailed
	}
	return StatusSuccess
}
