package providers

import (
	"time"
	"weightsync/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	SyncResultSynced = "synced"
	SyncResultFailed = "failed"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncStorageRetries(op string)
	IncSyncRecords(result string)
	ObserveDrainDuration(duration time.Duration)
	SetPendingRecords(count int)
	SetStorageBytes(size int)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storageRetries  *prometheus.CounterVec
	syncRecords     *prometheus.CounterVec
	drainDuration   prometheus.Histogram
	pendingRecords  prometheus.Gauge
	storageBytes    prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncStorageRetries(op string) {
	m.storageRetries.WithLabelValues(op).Inc()
}

func (m *MetricsProvider) IncSyncRecords(result string) {
	m.syncRecords.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObserveDrainDuration(duration time.Duration) {
	m.drainDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetPendingRecords(count int) {
	m.pendingRecords.Set(float64(count))
}

func (m *MetricsProvider) SetStorageBytes(size int) {
	m.storageBytes.Set(float64(size))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "weightsync_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weightsync_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "weightsync_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "weightsync_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		storageRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "weightsync_storage_retries_total",
			Help: "Total number of retried key-value operations",
		}, []string{"op"}),

		syncRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "weightsync_sync_records_total",
			Help: "Total number of record sync attempts by result",
		}, []string{"result"}),

		drainDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "weightsync_drain_duration_seconds",
			Help:    "Duration of pending queue drains in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		pendingRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "weightsync_pending_records",
			Help: "Number of records waiting to be synced",
		}),

		storageBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "weightsync_storage_bytes",
			Help: "Size of all values owned by the offline store",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncStorageRetries(_ string)                       {}
func (n *noopMetrics) IncSyncRecords(_ string)                          {}
func (n *noopMetrics) ObserveDrainDuration(_ time.Duration)             {}
func (n *noopMetrics) SetPendingRecords(_ int)                          {}
func (n *noopMetrics) SetStorageBytes(_ int)                            {}
