package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, registry *prometheus.Registry) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRequestLogger().Handler())

	promMw, err := NewPrometheusMiddleware("test", registry)
	require.NoError(t, err)
	r.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(r, registry)

	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "test error"})
	})
	return r
}

func serve(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestPrometheusMiddleware_BasicMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	r := newRouter(t, registry)

	assert.Equal(t, http.StatusOK, serve(r, "/ok").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, "/error").Code)

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	var durationFound, errorsFound bool
	for _, mf := range metricFamilies {
		switch mf.GetName() {
		case "test_http_request_duration_seconds":
			durationFound = true
			assert.Equal(t, "Длительность HTTP-запросов.", mf.GetHelp())
			assert.Len(t, mf.Metric, 2)
		case "test_http_request_errors_total":
			errorsFound = true
			require.Len(t, mf.Metric, 1)
			assert.Equal(t, float64(1), mf.Metric[0].GetCounter().GetValue())
		}
	}

	assert.True(t, durationFound, "Duration metric not found")
	assert.True(t, errorsFound, "Errors metric not found")
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware("dup", registry)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware("dup", registry)
	assert.Error(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	r := newRouter(t, registry)
	serve(r, "/ok")

	w := serve(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_inflight")
}

func TestRequestLogger_TraceID(t *testing.T) {
	r := newRouter(t, prometheus.NewRegistry())

	first := serve(r, "/ok").Header().Get("X-Trace-Id")
	second := serve(r, "/ok").Header().Get("X-Trace-Id")
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
