package info

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsByRoute(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := NewRouter(newTestService(t, nil, WithMetrics(m)))

	serve(h, http.MethodGet, "/")
	serve(h, http.MethodGet, "/")
	serve(h, http.MethodGet, "/health")
	serve(h, http.MethodGet, "/missing")
	serve(h, http.MethodPost, "/health")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/health", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "POST", "405")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.duration))
}

func TestMetrics_CountsPanicAs500(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	svc := newTestService(t, nil, WithMetrics(m), WithHostname(func() (string, error) {
		panic("boom")
	}))

	rec := serve(NewRouter(svc), http.MethodGet, "/")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/", "GET", "500")))
}

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	serve(NewRouter(newTestService(t, nil, WithMetrics(m))), http.MethodGet, "/health")

	srv := httptest.NewServer(MetricsHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `devinfo_http_requests_total{code="200",method="GET",route="/health"} 1`)
}
