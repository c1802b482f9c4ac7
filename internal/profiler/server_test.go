package profiler

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/runway/internal/core/optimistic"
)

func startServer(t *testing.T, gatherer prometheus.Gatherer) *Server {
	t.Helper()

	server := New(0, gatherer)
	assert.Empty(t, server.Addr(), "no address before Start")
	require.NoError(t, server.Start(context.Background()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, server.Shutdown(ctx))
	})
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err, "GET %s", url)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_endpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg).Observe("deals", optimistic.OutcomeRolledBack)

	baseURL := "http://" + startServer(t, reg).Addr()

	tests := []struct {
		endpoint string
		contains string
	}{
		{endpoint: "/debug/pprof/", contains: "goroutine"},
		{endpoint: "/debug/pprof/cmdline"},
		{endpoint: "/debug/pprof/symbol"},
		{endpoint: "/metrics", contains: `collection="deals"`},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			status, body := get(t, baseURL+tt.endpoint)
			assert.Equal(t, http.StatusOK, status)
			if tt.contains != "" {
				assert.Contains(t, body, tt.contains)
			}
		})
	}
}

func TestServer_without_gatherer(t *testing.T) {
	baseURL := "http://" + startServer(t, nil).Addr()

	status, _ := get(t, baseURL+"/metrics")
	assert.Equal(t, http.StatusNotFound, status)
}
