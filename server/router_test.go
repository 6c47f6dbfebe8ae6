package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"propgen/infrastructure/metrics"
	"propgen/infrastructure/realtime"
	httpHandler "propgen/interfaces/http"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	return InitiateRouter(Handlers{
		Extraction: httpHandler.NewExtractionHandler(nil),
		Content:    httpHandler.NewContentHandler(nil),
		Image:      httpHandler.NewImageHandler(nil, nil),
		Publish:    httpHandler.NewPublishHandler(nil),
		OAuth:      httpHandler.NewOAuthHandler(nil),
		Profile:    httpHandler.NewProfileHandler(nil, nil),
		Health:     httpHandler.NewHealthHandler(nil, "canvas"),
		Hub:        realtime.NewPublishHub(),
	}, RouterConfig{
		SecretKey:      "secret",
		AllowedOrigins: []string{"http://localhost:5173"},
		Metrics:        metrics.NewMetrics(reg),
		Gatherer:       reg,
	})
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter()
	want := map[string]bool{
		"POST /api/extract":                       true,
		"POST /api/social-content":                true,
		"POST /api/publish/:platform":             true,
		"GET /api/events":                         true,
		"GET /api/profile":                        true,
		"PUT /api/profile":                        true,
		"GET /api/properties":                     true,
		"GET /api/properties/:id":                 true,
		"POST /api/properties/:id/content":        true,
		"PUT /api/properties/:id/captions":        true,
		"POST /api/properties/:id/images":         true,
		"GET /api/properties/:id/publish-history": true,
		"GET /oauth/:provider":                    true,
		"GET /healthz":                            true,
		"GET /metrics":                            true,
		"GET /images/*key":                        true,
	}
	got := map[string]bool{}
	for _, rt := range r.Routes() {
		got[rt.Method+" "+rt.Path] = true
	}
	for route := range want {
		assert.True(t, got[route], route)
	}
}

func TestRouter_APIRequiresBearer(t *testing.T) {
	r := newTestRouter()
	for _, path := range []string{"/api/profile", "/api/properties", "/api/events"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "propgen_http_requests_total")
}
