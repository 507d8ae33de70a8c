package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountRequestsAndFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/orders" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	metrics := NewMetrics(prometheus.NewRegistry())
	client := New(srv.URL, WithMetrics(metrics))
	ctx := context.Background()

	require.NoError(t, client.Get(ctx, "/gallons", nil, nil))
	require.Error(t, client.Get(ctx, "/admin/orders", nil, nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/gallons")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues("GET", "/admin/orders", "http")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.failures.WithLabelValues("GET", "/gallons", "http")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	require.NoError(t, client.Get(context.Background(), "/gallons", nil, nil))
}
