package models

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Drop describes a stored entry that failed structural validation.
type Drop struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp,omitempty"`
	Reason    string `json:"reason"`
}

// rawRecord mirrors MeasurementRecord with every field left undecoded, so a
// single malformed field does not poison the whole collection.
type rawRecord struct {
	LocalID    json.RawMessage `json:"localId"`
	UserID     json.RawMessage `json:"userId"`
	Weight     json.RawMessage `json:"weight"`
	Notes      json.RawMessage `json:"notes"`
	Timestamp  json.RawMessage `json:"timestamp"`
	SyncStatus json.RawMessage `json:"syncStatus"`
}

type entry struct {
	raw    json.RawMessage
	record *MeasurementRecord
	drop   *Drop
}

// Collection is the ordered list stored under the weight_logs key. Invalid
// entries are kept verbatim until DropInvalid removes them, so ordinary
// read-modify-write cycles never lose data silently.
type Collection struct {
	entries []entry
}

func NewCollection() *Collection {
	return &Collection{}
}

func DecodeCollection(data []byte) (*Collection, error) {
	c := NewCollection()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return c, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode record collection: %w", err)
	}

	c.entries = make([]entry, 0, len(items))
	for i, item := range items {
		rec, reason := decodeRecord(item)
		if reason != "" {
			ts, _ := rawString(extractTimestamp(item))
			c.entries = append(c.entries, entry{
				raw:  item,
				drop: &Drop{Index: i, Timestamp: ts, Reason: reason},
			})
			continue
		}
		c.entries = append(c.entries, entry{record: rec})
	}
	return c, nil
}

func extractTimestamp(item json.RawMessage) json.RawMessage {
	var raw rawRecord
	if err := json.Unmarshal(item, &raw); err != nil {
		return nil
	}
	return raw.Timestamp
}

// decodeRecord applies the structural checks: non-empty userId, numeric
// weight, non-empty timestamp and a known syncStatus.
func decodeRecord(item json.RawMessage) (*MeasurementRecord, string) {
	var raw rawRecord
	if err := json.Unmarshal(item, &raw); err != nil {
		return nil, "malformed entry"
	}

	userID, ok := rawString(raw.UserID)
	if !ok || userID == "" {
		return nil, "missing userId"
	}

	weight, ok := rawNumber(raw.Weight)
	if !ok {
		return nil, "non-numeric weight"
	}

	timestamp, ok := rawString(raw.Timestamp)
	if !ok || timestamp == "" {
		return nil, "missing timestamp"
	}

	statusValue, _ := rawString(raw.SyncStatus)
	status, ok := ParseSyncStatus(statusValue)
	if !ok {
		return nil, "invalid syncStatus"
	}

	notes, _ := rawString(raw.Notes)
	localID, _ := rawString(raw.LocalID)

	return &MeasurementRecord{
		LocalID:    localID,
		UserID:     userID,
		Weight:     weight,
		Notes:      notes,
		Timestamp:  timestamp,
		SyncStatus: status,
	}, ""
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func rawNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

func (c *Collection) Len() int {
	return len(c.entries)
}

// Records returns the structurally valid records in insertion order.
func (c *Collection) Records() []MeasurementRecord {
	out := make([]MeasurementRecord, 0, len(c.entries))
	for _, e := range c.entries {
		if e.record != nil {
			out = append(out, *e.record)
		}
	}
	return out
}

func (c *Collection) Pending() []MeasurementRecord {
	out := make([]MeasurementRecord, 0)
	for _, e := range c.entries {
		if e.record != nil && e.record.IsPending() {
			out = append(out, *e.record)
		}
	}
	return out
}

func (c *Collection) Invalid() []Drop {
	var drops []Drop
	for _, e := range c.entries {
		if e.drop != nil {
			drops = append(drops, *e.drop)
		}
	}
	return drops
}

// Append adds a record in the pending state regardless of its incoming status.
func (c *Collection) Append(r MeasurementRecord) {
	r.SyncStatus = SyncPending
	c.entries = append(c.entries, entry{record: &r})
}

// MarkSynced moves every record with the given timestamp to SyncSynced and
// returns how many records matched.
func (c *Collection) MarkSynced(timestamp string) int {
	matched := 0
	for _, e := range c.entries {
		if e.record != nil && e.record.Timestamp == timestamp {
			e.record.SyncStatus = SyncSynced
			matched++
		}
	}
	return matched
}

func (c *Collection) DropInvalid() []Drop {
	drops := c.Invalid()
	if len(drops) == 0 {
		return nil
	}
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.record != nil {
			kept = append(kept, e)
		}
	}
	c.entries = kept
	return drops
}

func (c *Collection) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(c.entries))
	for _, e := range c.entries {
		if e.record == nil {
			out = append(out, e.raw)
			continue
		}
		data, err := json.Marshal(e.record)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return json.Marshal(out)
}
