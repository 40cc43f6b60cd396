package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"weightsync/internal/capture"
	"weightsync/internal/connectivity"
	"weightsync/internal/models"
	"weightsync/internal/storage"
	"weightsync/internal/structures"
	"weightsync/internal/syncer"
	"weightsync/internal/testutil"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	t1 = "2024-03-01T07:00:00.000Z"
	t2 = "2024-03-01T08:00:00.000Z"
)

type fixture struct {
	backing *testutil.FlakyStore
	store   storage.RecordStoreInterface
	remote  *testutil.MockRemote
	conn    *connectivity.Manual
	driver  syncer.DriverInterface
	cache   *testutil.MockCache
	records *RecordsController
	health  *HealthController
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()
	conf := &structures.Config{
		Retry: structures.RetryConfig{Retries: 3, Delay: time.Millisecond},
		Sync:  structures.SyncConfig{ItemTimeout: time.Second},
	}
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()

	f := &fixture{
		backing: testutil.NewFlakyStore(),
		remote:  testutil.NewMockRemote(),
		conn:    connectivity.NewManual(online),
		cache:   testutil.NewMockCache(),
	}
	f.store = storage.NewRecordStore(f.backing, conf, logger, metrics)
	f.driver = syncer.NewDriver(f.store, f.remote, f.conn, nil, conf, logger, metrics)
	service := capture.NewService(f.store, f.driver, f.conn, logger)
	f.records = NewRecordsController(logger, f.store, service, f.driver, f.cache)
	f.health = NewHealthController(f.store, f.conn, f.driver, logger)
	return f
}

func (f *fixture) save(t *testing.T, timestamps ...string) {
	t.Helper()
	for _, ts := range timestamps {
		_, err := f.store.SaveRecord(context.Background(), models.MeasurementRecord{UserID: "u1", Weight: 70, Timestamp: ts})
		require.NoError(t, err)
	}
}

func serve(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeRecords(t *testing.T, rr *httptest.ResponseRecorder) []models.MeasurementRecord {
	t.Helper()
	var out []models.MeasurementRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestGetRecords_CachedUntilMutation(t *testing.T) {
	f := newFixture(t, false)
	f.save(t, t1)

	rr := serve(f.records.GetRecords, http.MethodGet, "/records", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Len(t, decodeRecords(t, rr), 1)

	// written behind the controller's back: still served from cache
	f.save(t, t2)
	rr = serve(f.records.GetRecords, http.MethodGet, "/records", "")
	assert.Len(t, decodeRecords(t, rr), 1)

	rr = serve(f.records.CreateRecord, http.MethodPost, "/records", `{"userId":"u2","weight":81.5}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = serve(f.records.GetRecords, http.MethodGet, "/records", "")
	assert.Len(t, decodeRecords(t, rr), 3)
}

func TestGetPending(t *testing.T) {
	f := newFixture(t, false)
	f.save(t, t1, t2)
	require.NoError(t, f.store.MarkRecordSynced(context.Background(), t1))

	rr := serve(f.records.GetPending, http.MethodGet, "/records/pending", "")
	require.Equal(t, http.StatusOK, rr.Code)
	pending := decodeRecords(t, rr)
	require.Len(t, pending, 1)
	assert.Equal(t, t2, pending[0].Timestamp)

	_, cached := f.cache.Get(cacheKeyPending)
	assert.True(t, cached)
}

func TestGetRecords_StorageFault(t *testing.T) {
	f := newFixture(t, false)
	f.backing.FailGets.Store(10)

	rr := serve(f.records.GetRecords, http.MethodGet, "/records", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	_, cached := f.cache.Get(cacheKeyRecords)
	assert.False(t, cached)
}

func TestCreateRecord_OfflineStaysPending(t *testing.T) {
	f := newFixture(t, false)

	rr := serve(f.records.CreateRecord, http.MethodPost, "/records", `{"userId":"u1","weight":72.4,"notes":"morning"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var rec models.MeasurementRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, models.SyncPending, rec.SyncStatus)
	assert.NotEmpty(t, rec.LocalID)
	assert.NotEmpty(t, rec.Timestamp)
	assert.Zero(t, f.remote.Calls())
}

func TestCreateRecord_OnlineSyncsImmediately(t *testing.T) {
	f := newFixture(t, true)

	rr := serve(f.records.CreateRecord, http.MethodPost, "/records", `{"userId":"u1","weight":72.4}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var rec models.MeasurementRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, models.SyncSynced, rec.SyncStatus)
	assert.Equal(t, 1, f.remote.Calls())
}

func TestCreateRecord_BadRequests(t *testing.T) {
	f := newFixture(t, false)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"userId":`},
		{"missing user", `{"weight":70}`},
		{"zero weight", `{"userId":"u1","weight":0}`},
		{"negative weight", `{"userId":"u1","weight":-3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(f.records.CreateRecord, http.MethodPost, "/records", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}

	all, err := f.store.GetAllRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateRecord_StorageFault(t *testing.T) {
	f := newFixture(t, false)
	f.backing.FailSets.Store(10)

	rr := serve(f.records.CreateRecord, http.MethodPost, "/records", `{"userId":"u1","weight":70}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "offline save failed")
}

func TestSync_ReturnsResult(t *testing.T) {
	f := newFixture(t, true)
	f.save(t, t1, t2)
	f.remote.SetFail(t2, true)

	rr := serve(f.records.Sync, http.MethodPost, "/sync", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var result models.DrainResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Failed)
}

func TestSync_ConflictWhileDraining(t *testing.T) {
	f := newFixture(t, true)
	f.save(t, t1)
	f.remote.Block = make(chan struct{})
	f.remote.Started = make(chan string, 2)

	done := make(chan struct{})
	go func() {
		_, _ = f.driver.DrainPendingQueue(context.Background())
		close(done)
	}()
	<-f.remote.Started

	rr := serve(f.records.Sync, http.MethodPost, "/sync", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	close(f.remote.Block)
	<-done
}

func TestSync_StorageFault(t *testing.T) {
	f := newFixture(t, true)
	f.backing.FailGets.Store(10)

	rr := serve(f.records.Sync, http.MethodPost, "/sync", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetStorage(t *testing.T) {
	f := newFixture(t, false)
	f.save(t, t1, t2)

	rr := serve(f.records.GetStorage, http.MethodGet, "/storage", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var stats storage.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Records)
	assert.Equal(t, 2, stats.Pending)
	assert.Positive(t, stats.SizeBytes)
	assert.Nil(t, stats.LastSync)
}

func TestClearStorage(t *testing.T) {
	f := newFixture(t, false)
	f.save(t, t1)
	f.cache.Set(cacheKeyRecords, []byte("[]"))

	rr := serve(f.records.ClearStorage, http.MethodDelete, "/storage", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	all, err := f.store.GetAllRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	_, cached := f.cache.Get(cacheKeyRecords)
	assert.False(t, cached)
}

func TestClearStorage_Fault(t *testing.T) {
	f := newFixture(t, false)
	f.backing.FailRemoves.Store(10)

	rr := serve(f.records.ClearStorage, http.MethodDelete, "/storage", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestCleanup(t *testing.T) {
	f := newFixture(t, false)
	require.NoError(t, f.backing.Set(context.Background(), storage.KeyWeightLogs,
		`[{"userId":"u1","weight":70,"timestamp":"`+t1+`","syncStatus":"pending"},{"userId":"","weight":0,"timestamp":"x","syncStatus":"pending"}]`))

	rr := serve(f.records.Cleanup, http.MethodPost, "/storage/cleanup", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp cleanupResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Removed)

	rr = serve(f.records.Cleanup, http.MethodPost, "/storage/cleanup", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Zero(t, resp.Removed)
}
