package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.IncExtraction(StatusSuccess)
	m.IncExtraction(StatusSuccess)
	m.IncPublish("facebook", Outcome(errors.New("boom")))
	m.IncContent("tiktok", StatusFallback)
	m.IncImage("canvas", "square", StatusSuccess)
	m.ObserveHTTP("GET", "/healthz", "200", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishTotal.WithLabelValues("facebook", StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContentTotal.WithLabelValues("tiktok", StatusFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImagesTotal.WithLabelValues("canvas", "square", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncExtraction(StatusSuccess)
		m.IncPublish("x", StatusSuccess)
		m.IncContent("x", StatusSuccess)
		m.IncImage("x", "y", StatusSuccess)
		m.ObserveHTTP("GET", "/", "200", 1)
	})
}
