package storage

import (
	"context"
	"errors"
	"sync"
	"time"
	"weightsync/internal/kv"
	"weightsync/internal/models"
	"weightsync/internal/providers"
	"weightsync/internal/retry"
	"weightsync/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type RecordStoreInterface interface {
	SaveRecord(ctx context.Context, record models.MeasurementRecord) (models.MeasurementRecord, error)
	GetAllRecords(ctx context.Context) ([]models.MeasurementRecord, error)
	GetPendingRecords(ctx context.Context) ([]models.MeasurementRecord, error)
	MarkRecordSynced(ctx context.Context, timestamp string) error
	ValidateAndCleanup(ctx context.Context) (int, error)
	ClearAll(ctx context.Context) error

	UpdateLastSyncTime(ctx context.Context, t time.Time) error
	GetLastSyncTime(ctx context.Context) (string, bool, error)
	SaveDeviceInfo(ctx context.Context, info models.DeviceInfo) error
	GetDeviceInfo(ctx context.Context) (*models.DeviceInfo, error)
	SaveUserData(ctx context.Context, data json.RawMessage) error
	GetUserData(ctx context.Context) (json.RawMessage, error)

	ComputeStorageSize(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*Stats, error)
}

// RecordStore keeps the measurement collection as a single JSON array under
// weight_logs. Every mutation is a read-modify-write of that array, so they
// are serialized by mu. Each key-value call goes through the retry policy.
type RecordStore struct {
	mu      sync.Mutex
	kv      kv.Store
	policy  retry.Policy
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
}

func NewRecordStore(store kv.Store, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) RecordStoreInterface {
	return newRecordStore(store, conf, logger, metrics)
}

func newRecordStore(store kv.Store, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *RecordStore {
	return &RecordStore{
		kv: store,
		policy: retry.Policy{
			Retries: conf.Retry.Retries,
			Delay:   conf.Retry.Delay,
		},
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (rs *RecordStore) policyFor(op, key string) retry.Policy {
	p := rs.policy
	p.OnRetry = func(attempt int, err error) {
		rs.metrics.IncStorageRetries(op)
		rs.logger.Warnf(providers.TypeStorage, "%s %s failed (attempt %d/%d): %v", op, key, attempt, p.Retries+1, err)
	}
	return p
}

// get returns ok=false for an absent key. Absence is not retried.
func (rs *RecordStore) get(ctx context.Context, key string) (string, bool, error) {
	type result struct {
		value string
		found bool
	}
	res, err := retry.Do(ctx, rs.policyFor("get", key), func(ctx context.Context) (result, error) {
		v, err := rs.kv.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			return result{}, nil
		}
		if err != nil {
			return result{}, err
		}
		return result{value: v, found: true}, nil
	})
	if err != nil {
		return "", false, &StorageError{Op: "get", Key: key, Err: err}
	}
	return res.value, res.found, nil
}

func (rs *RecordStore) set(ctx context.Context, key, value string) error {
	err := retry.Run(ctx, rs.policyFor("set", key), func(ctx context.Context) error {
		return rs.kv.Set(ctx, key, value)
	})
	if err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (rs *RecordStore) loadCollection(ctx context.Context) (*models.Collection, error) {
	raw, found, err := rs.get(ctx, KeyWeightLogs)
	if err != nil {
		return nil, err
	}
	if !found {
		return models.NewCollection(), nil
	}
	c, err := models.DecodeCollection([]byte(raw))
	if err != nil {
		return nil, &StorageError{Op: "decode", Key: KeyWeightLogs, Err: err}
	}
	return c, nil
}

func (rs *RecordStore) storeCollection(ctx context.Context, c *models.Collection) error {
	data, err := json.Marshal(c)
	if err != nil {
		return &StorageError{Op: "encode", Key: KeyWeightLogs, Err: err}
	}
	return rs.set(ctx, KeyWeightLogs, string(data))
}

// SaveRecord appends record as pending and returns it as stored. A missing
// local id or timestamp is filled in.
func (rs *RecordStore) SaveRecord(ctx context.Context, record models.MeasurementRecord) (models.MeasurementRecord, error) {
	if record.LocalID == "" {
		record.LocalID = uuid.NewString()
	}
	if record.Timestamp == "" {
		record.Timestamp = models.FormatTimestamp(rs.now())
	}
	record.SyncStatus = models.SyncPending

	rs.mu.Lock()
	defer rs.mu.Unlock()

	c, err := rs.loadCollection(ctx)
	if err != nil {
		return models.MeasurementRecord{}, err
	}
	c.Append(record)
	if err := rs.storeCollection(ctx, c); err != nil {
		return models.MeasurementRecord{}, err
	}

	rs.logger.Debugf(providers.TypeStorage, "saved record %s (user=%s, timestamp=%s)", record.LocalID, record.UserID, record.Timestamp)
	return record, nil
}

func (rs *RecordStore) GetAllRecords(ctx context.Context) ([]models.MeasurementRecord, error) {
	c, err := rs.loadCollection(ctx)
	if err != nil {
		return nil, err
	}
	return c.Records(), nil
}

func (rs *RecordStore) GetPendingRecords(ctx context.Context) ([]models.MeasurementRecord, error) {
	c, err := rs.loadCollection(ctx)
	if err != nil {
		return nil, err
	}
	return c.Pending(), nil
}

// MarkRecordSynced flips every record with this timestamp to synced. It always
// rewrites the collection, even when nothing matched.
func (rs *RecordStore) MarkRecordSynced(ctx context.Context, timestamp string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	c, err := rs.loadCollection(ctx)
	if err != nil {
		return err
	}
	matched := c.MarkSynced(timestamp)
	if matched == 0 {
		rs.logger.Debugf(providers.TypeStorage, "mark synced: no record with timestamp %s", timestamp)
	} else if matched > 1 {
		rs.logger.Warnf(providers.TypeStorage, "mark synced: %d records share timestamp %s", matched, timestamp)
	}
	return rs.storeCollection(ctx, c)
}

// ValidateAndCleanup removes structurally invalid entries and returns how
// many were dropped. Nothing is written when the collection is clean.
func (rs *RecordStore) ValidateAndCleanup(ctx context.Context) (int, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	c, err := rs.loadCollection(ctx)
	if err != nil {
		return 0, err
	}
	drops := c.DropInvalid()
	if len(drops) == 0 {
		return 0, nil
	}

	for _, d := range drops {
		rs.logger.Warnf(providers.TypeStorage, "dropping invalid record at index %d (timestamp=%q): %s", d.Index, d.Timestamp, d.Reason)
	}
	if err := rs.storeCollection(ctx, c); err != nil {
		return 0, err
	}
	return len(drops), nil
}

func (rs *RecordStore) ClearAll(ctx context.Context) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	err := retry.Run(ctx, rs.policyFor("remove", "*"), func(ctx context.Context) error {
		return rs.kv.MultiRemove(ctx, OwnedKeys...)
	})
	if err != nil {
		return &StorageError{Op: "remove", Err: err}
	}
	rs.logger.Infof(providers.TypeStorage, "cleared all offline data")
	return nil
}

// UpdateLastSyncTime stores t as a bare ISO-8601 string.
func (rs *RecordStore) UpdateLastSyncTime(ctx context.Context, t time.Time) error {
	return rs.set(ctx, KeyLastSync, models.FormatTimestamp(t))
}

func (rs *RecordStore) GetLastSyncTime(ctx context.Context) (string, bool, error) {
	return rs.get(ctx, KeyLastSync)
}

func (rs *RecordStore) SaveDeviceInfo(ctx context.Context, info models.DeviceInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return &StorageError{Op: "encode", Key: KeyDeviceInfo, Err: err}
	}
	return rs.set(ctx, KeyDeviceInfo, string(data))
}

// GetDeviceInfo returns nil when no device has connected yet.
func (rs *RecordStore) GetDeviceInfo(ctx context.Context) (*models.DeviceInfo, error) {
	raw, found, err := rs.get(ctx, KeyDeviceInfo)
	if err != nil || !found {
		return nil, err
	}
	var info models.DeviceInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, &StorageError{Op: "decode", Key: KeyDeviceInfo, Err: err}
	}
	return &info, nil
}

func (rs *RecordStore) SaveUserData(ctx context.Context, data json.RawMessage) error {
	if !json.Valid(data) {
		return &StorageError{Op: "encode", Key: KeyUserData, Err: errors.New("user data is not valid JSON")}
	}
	return rs.set(ctx, KeyUserData, string(data))
}

// GetUserData returns nil when nothing is cached.
func (rs *RecordStore) GetUserData(ctx context.Context) (json.RawMessage, error) {
	raw, found, err := rs.get(ctx, KeyUserData)
	if err != nil || !found {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
