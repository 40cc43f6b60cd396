package models

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// SyncStatus is the lifecycle state of a record. The only transition is
// SyncPending -> SyncSynced, taken after the remote confirmed the create.
type SyncStatus uint8

const (
	SyncPending SyncStatus = iota + 1
	SyncSynced
)

func (s SyncStatus) String() string {
	switch s {
	case SyncPending:
		return "pending"
	case SyncSynced:
		return "synced"
	default:
		return "unknown"
	}
}

func ParseSyncStatus(v string) (SyncStatus, bool) {
	switch v {
	case "pending":
		return SyncPending, true
	case "synced":
		return SyncSynced, true
	}
	return 0, false
}

func (s SyncStatus) MarshalJSON() ([]byte, error) {
	if s != SyncPending && s != SyncSynced {
		return nil, fmt.Errorf("invalid sync status %d", uint8(s))
	}
	return json.Marshal(s.String())
}

func (s *SyncStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, ok := ParseSyncStatus(v)
	if !ok {
		return fmt.Errorf("invalid sync status %q", v)
	}
	*s = parsed
	return nil
}
