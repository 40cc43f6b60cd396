package testutil

import (
	"context"
	"errors"
	"sync"
	"time"
	"weightsync/internal/kv"
	"weightsync/internal/models"
	"weightsync/internal/providers"
	"weightsync/internal/remote"

	"go.uber.org/atomic"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu             sync.Mutex
	StorageRetries map[string]int
	SyncRecords    map[string]int
	Drains         int
	Pending        int
	StorageBytes   int
	CacheHits      int
	CacheMisses    int
	Requests       map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		StorageRetries: make(map[string]int),
		SyncRecords:    make(map[string]int),
		Requests:       make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint]++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) IncStorageRetries(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StorageRetries[op]++
}
func (m *MockMetrics) IncSyncRecords(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncRecords[result]++
}
func (m *MockMetrics) ObserveDrainDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Drains++
}
func (m *MockMetrics) SetPendingRecords(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pending = count
}
func (m *MockMetrics) SetStorageBytes(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StorageBytes = size
}

func (m *MockMetrics) SyncCount(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SyncRecords[result]
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
}

var ErrInjected = errors.New("injected storage fault")

// FlakyStore wraps a MemoryStore and fails the next FailGets reads and
// FailSets writes before letting calls through.
type FlakyStore struct {
	*kv.MemoryStore
	FailGets    atomic.Int32
	FailSets    atomic.Int32
	FailRemoves atomic.Int32
	GetCalls    atomic.Int32
	SetCalls    atomic.Int32
}

func NewFlakyStore() *FlakyStore {
	return &FlakyStore{MemoryStore: kv.NewMemoryStore()}
}

func take(counter *atomic.Int32) bool {
	for {
		n := counter.Load()
		if n <= 0 {
			return false
		}
		if counter.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

func (f *FlakyStore) Get(ctx context.Context, key string) (string, error) {
	f.GetCalls.Inc()
	if take(&f.FailGets) {
		return "", ErrInjected
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *FlakyStore) Set(ctx context.Context, key, value string) error {
	f.SetCalls.Inc()
	if take(&f.FailSets) {
		return ErrInjected
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *FlakyStore) MultiRemove(ctx context.Context, keys ...string) error {
	if take(&f.FailRemoves) {
		return ErrInjected
	}
	return f.MemoryStore.MultiRemove(ctx, keys...)
}

// MockRemote implements remote.ClientInterface. Records whose timestamp is in
// Fail are rejected. When Block is set every call waits on it, and Started
// receives once per call if non-nil.
type MockRemote struct {
	mu      sync.Mutex
	Fail    map[string]bool
	Created []models.MeasurementRecord
	Block   chan struct{}
	Started chan string
	calls   atomic.Int32
}

func NewMockRemote() *MockRemote {
	return &MockRemote{Fail: make(map[string]bool)}
}

func (m *MockRemote) CreateRecord(ctx context.Context, record models.MeasurementRecord) (*remote.CreatedRecord, error) {
	m.calls.Inc()
	if m.Started != nil {
		m.Started <- record.Timestamp
	}
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail[record.Timestamp] {
		return nil, &remote.RemoteError{StatusCode: 422, Body: "rejected"}
	}
	m.Created = append(m.Created, record)
	return &remote.CreatedRecord{
		ID:        "srv-" + record.LocalID,
		UserID:    record.UserID,
		Weight:    record.Weight,
		Notes:     record.Notes,
		Timestamp: record.Timestamp,
	}, nil
}

func (m *MockRemote) Calls() int {
	return int(m.calls.Load())
}

func (m *MockRemote) SetFail(timestamp string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fail[timestamp] = fail
}

func (m *MockRemote) CreatedTimestamps() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Created))
	for _, r := range m.Created {
		out = append(out, r.Timestamp)
	}
	return out
}
