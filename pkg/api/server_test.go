package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestNewServer(t *testing.T) {
	service, _ := setupTestService(t)

	server := NewServer(service, ServerConfig{Port: 8080, APIKey: "secret-key"})
	require.NotNil(t, server)
	assert.Same(t, service, server.service)
	assert.Equal(t, "secret-key", server.config.APIKey)
	assert.NotNil(t, server.logger, "a discard logger is used when none is configured")
	assert.Nil(t, server.metrics)
}

func TestStartServer(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		service, _ := setupTestService(t)
		err := StartServer(context.Background(), service, ServerConfig{})
		assert.Error(t, err)
	})

	t.Run("serves until cancelled", func(t *testing.T) {
		service, metrics := setupTestService(t)
		port := freePort(t)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- StartServer(ctx, service, ServerConfig{
				Bind:    "127.0.0.1",
				Port:    port,
				APIKey:  testAPIKey,
				Metrics: metrics,
			})
		}()

		url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/health", port)
		require.Eventually(t, func() bool {
			req, _ := http.NewRequest("GET", url, nil)
			req.Header.Set("X-API-Key", testAPIKey)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return false
			}
			resp.Body.Close()
			return resp.StatusCode == http.StatusOK
		}, 5*time.Second, 50*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(15 * time.Second):
			t.Fatal("server did not shut down")
		}
	})
}

func TestServer_UpdateArchiveMetrics(t *testing.T) {
	service, metrics := setupTestService(t)
	_, err := service.Import("people", "1;Ada;1;A\n2;Grace;2;B")
	require.NoError(t, err)

	server := NewServer(service, ServerConfig{Metrics: metrics})
	server.updateArchiveMetrics()

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.archivedRecords.WithLabelValues("people")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.archivedRecords.WithLabelValues("prices")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordHealthCheck(true)
		m.RecordAuthRequest(false)
		m.RecordArchiveOperation("get", true, time.Millisecond)
		m.UpdateArchivedRecords("people", 1)
	})
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}

func TestMetrics_InstrumentAuthMiddleware(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	service, _ := setupTestService(t)
	router := NewRouter(NewServer(service, ServerConfig{APIKey: testAPIKey, Metrics: metrics}))

	doRequest(t, router, "GET", "/api/v1/health", "")

	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	req.Header.Set("X-API-Key", "wrong")
	w := &discardWriter{header: http.Header{}}
	router.ServeHTTP(w, req)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.authRequestsTotal.WithLabelValues(statusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.authRequestsTotal.WithLabelValues(statusError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.healthChecksTotal.WithLabelValues(statusSuccess)))
}

type discardWriter struct {
	header http.Header
}

func (d *discardWriter) Header() http.Header         { return d.header }
func (d *discardWriter) Write(b []byte) (int, error) { return len(b), nil }
func (d *discardWriter) WriteHeader(int)             {}
