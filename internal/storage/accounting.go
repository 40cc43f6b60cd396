package storage

import (
	"context"
	"weightsync/internal/models"
)

// Stats is a diagnostic snapshot of the offline store.
type Stats struct {
	Records   int                `json:"records"`
	Pending   int                `json:"pending"`
	Synced    int                `json:"synced"`
	Invalid   int                `json:"invalid"`
	SizeBytes int                `json:"size_bytes"`
	LastSync  *string            `json:"last_sync"`
	Device    *models.DeviceInfo `json:"device"`
}

// ComputeStorageSize sums the byte length of every value under an owned key.
// Absent keys count as zero.
func (rs *RecordStore) ComputeStorageSize(ctx context.Context) (int, error) {
	total := 0
	for _, key := range OwnedKeys {
		v, _, err := rs.get(ctx, key)
		if err != nil {
			return 0, err
		}
		total += len(v)
	}
	return total, nil
}

func (rs *RecordStore) Stats(ctx context.Context) (*Stats, error) {
	c, err := rs.loadCollection(ctx)
	if err != nil {
		return nil, err
	}

	s := &Stats{Invalid: len(c.Invalid())}
	for _, r := range c.Records() {
		s.Records++
		if r.IsPending() {
			s.Pending++
		} else {
			s.Synced++
		}
	}

	if s.SizeBytes, err = rs.ComputeStorageSize(ctx); err != nil {
		return nil, err
	}

	last, found, err := rs.GetLastSyncTime(ctx)
	if err != nil {
		return nil, err
	}
	if found {
		s.LastSync = &last
	}

	if s.Device, err = rs.GetDeviceInfo(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
