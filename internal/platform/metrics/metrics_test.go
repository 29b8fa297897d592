package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	r := New()

	r.ObserveRequest(http.MethodPost, "/mpin/evaluate", http.StatusOK, 0.002)
	r.ObserveRequest(http.MethodPost, "/mpin/evaluate", http.StatusTooManyRequests, 0.001)

	assert.InDelta(t, 1, testutil.ToFloat64(r.RequestsTotal.WithLabelValues("POST", "/mpin/evaluate", "2xx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.RequestsTotal.WithLabelValues("POST", "/mpin/evaluate", "4xx")), 0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.ObserveRequest(http.MethodGet, "/mpin/reasons", http.StatusOK, 0.001)

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pinguard_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNilRegistryObserveIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveRequest(http.MethodGet, "/healthz", http.StatusOK, 0)
	})
}
