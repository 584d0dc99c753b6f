package monitor

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBusinessMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBusinessMetrics(reg)

	m.ObserveConnect(nil)
	m.ObserveConnect(errors.New("rejected"))
	m.ObserveBalance(nil)
	m.ObserveTransfer(1_000_000_000, 0.5, nil)
	m.ObserveTransfer(5, 0.1, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectTotal.WithLabelValues(ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BalanceFetchTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransferTotal.WithLabelValues(ResultFailure)))
	assert.Equal(t, 1e9, testutil.ToFloat64(m.TransferLamportsTotal))
}

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *BusinessMetrics
	assert.NotPanics(t, func() {
		m.ObserveConnect(nil)
		m.ObserveBalance(nil)
		m.ObserveTransfer(1, 1, nil)
	})
}

func TestPrometheusMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := gin.New()
	r.Use(m.PrometheusMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/ping", "/ping", "/missing"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal))
}
