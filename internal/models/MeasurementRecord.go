package models

import "time"

// TimestampLayout matches the ISO-8601 form produced by JavaScript's
// Date.toISOString, which is what existing stores contain.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// MeasurementRecord is a single weight measurement. Timestamp doubles as the
// record key inside the local store.
type MeasurementRecord struct {
	LocalID    string     `json:"localId,omitempty"`
	UserID     string     `json:"userId"`
	Weight     float64    `json:"weight"`
	Notes      string     `json:"notes"`
	Timestamp  string     `json:"timestamp"`
	SyncStatus SyncStatus `json:"syncStatus"`
}

func (r MeasurementRecord) IsPending() bool {
	return r.SyncStatus == SyncPending
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
