package providers

import (
	"testing"
	"time"
	"weightsync/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withIsolatedRegistry(t *testing.T) {
	t.Helper()
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	})
}

func metricValue(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncStorageRetries("get")
	m.IncSyncRecords(SyncResultSynced)
	m.ObserveDrainDuration(time.Second)
	m.SetPendingRecords(3)
	m.SetStorageBytes(1024)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	withIsolatedRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_SyncCounters(t *testing.T) {
	withIsolatedRegistry(t)

	m := NewMetricsProvider(&structures.Config{Metrics: structures.MetricsConfig{Enabled: true}}).(*MetricsProvider)

	m.IncSyncRecords(SyncResultSynced)
	m.IncSyncRecords(SyncResultSynced)
	m.IncSyncRecords(SyncResultFailed)
	m.IncStorageRetries("set")
	m.SetPendingRecords(7)
	m.SetStorageBytes(2048)

	assert.Equal(t, 2.0, metricValue(t, m.syncRecords.WithLabelValues(SyncResultSynced)))
	assert.Equal(t, 1.0, metricValue(t, m.syncRecords.WithLabelValues(SyncResultFailed)))
	assert.Equal(t, 1.0, metricValue(t, m.storageRetries.WithLabelValues("set")))
	assert.Equal(t, 7.0, metricValue(t, m.pendingRecords))
	assert.Equal(t, 2048.0, metricValue(t, m.storageBytes))
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	withIsolatedRegistry(t)

	m := NewMetricsProvider(&structures.Config{Metrics: structures.MetricsConfig{Enabled: true}})

	// These should not panic
	m.IncRequestsTotal("/records", 200)
	m.IncRequestsTotal("/records", 404)
	m.ObserveRequestDuration("/records", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObserveDrainDuration(100 * time.Millisecond)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "weightsync_requests_total")
	assert.Contains(t, names, "weightsync_drain_duration_seconds")
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{409, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
