package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCollection_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "  ", "null"} {
		c, err := DecodeCollection([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
		assert.Empty(t, c.Records())
	}
}

func TestDecodeCollection_NotAnArray(t *testing.T) {
	_, err := DecodeCollection([]byte(`{"userId":"u1"}`))
	assert.Error(t, err)
}

func TestDecodeCollection_ValidRecords(t *testing.T) {
	raw := `[
		{"userId":"u1","weight":70.5,"notes":"","timestamp":"2024-03-20T08:00:00.000Z","syncStatus":"pending"},
		{"userId":"u2","weight":81,"notes":"after run","timestamp":"2024-03-21T08:00:00.000Z","syncStatus":"synced","localId":"abc"}
	]`
	c, err := DecodeCollection([]byte(raw))
	require.NoError(t, err)

	recs := c.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "u1", recs[0].UserID)
	assert.Equal(t, 70.5, recs[0].Weight)
	assert.Equal(t, SyncPending, recs[0].SyncStatus)
	assert.Equal(t, "after run", recs[1].Notes)
	assert.Equal(t, SyncSynced, recs[1].SyncStatus)
	assert.Equal(t, "abc", recs[1].LocalID)
	assert.Empty(t, c.Invalid())
}

func TestDecodeCollection_FlagsEachStructuralFault(t *testing.T) {
	raw := `[
		{"weight":70,"timestamp":"t1","syncStatus":"pending"},
		{"userId":"","weight":70,"timestamp":"t2","syncStatus":"pending"},
		{"userId":"u","weight":"70","timestamp":"t3","syncStatus":"pending"},
		{"userId":"u","weight":null,"timestamp":"t4","syncStatus":"pending"},
		{"userId":"u","weight":70,"syncStatus":"pending"},
		{"userId":"u","weight":70,"timestamp":"t6","syncStatus":"failed"},
		"garbage",
		{"userId":"u","weight":70,"timestamp":"t8","syncStatus":"synced"}
	]`
	c, err := DecodeCollection([]byte(raw))
	require.NoError(t, err)

	drops := c.Invalid()
	require.Len(t, drops, 7)
	assert.Equal(t, "missing userId", drops[0].Reason)
	assert.Equal(t, "missing userId", drops[1].Reason)
	assert.Equal(t, "non-numeric weight", drops[2].Reason)
	assert.Equal(t, "non-numeric weight", drops[3].Reason)
	assert.Equal(t, "missing timestamp", drops[4].Reason)
	assert.Equal(t, "invalid syncStatus", drops[5].Reason)
	assert.Equal(t, "t6", drops[5].Timestamp)
	assert.Equal(t, "malformed entry", drops[6].Reason)
	assert.Equal(t, 6, drops[6].Index)

	recs := c.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "t8", recs[0].Timestamp)
}

func TestDecodeCollection_KeepsNonPositiveWeight(t *testing.T) {
	c, err := DecodeCollection([]byte(`[{"userId":"u","weight":-1,"timestamp":"t","syncStatus":"pending"}]`))
	require.NoError(t, err)
	assert.Len(t, c.Records(), 1)
	assert.Empty(t, c.Invalid())
}

func TestCollection_AppendForcesPending(t *testing.T) {
	c := NewCollection()
	c.Append(MeasurementRecord{UserID: "u", Weight: 70, Timestamp: "t1", SyncStatus: SyncSynced})

	recs := c.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, SyncPending, recs[0].SyncStatus)
}

func TestCollection_MarkSyncedMatchesExactTimestamp(t *testing.T) {
	c := NewCollection()
	c.Append(MeasurementRecord{UserID: "u", Weight: 70, Timestamp: "2024-03-20T08:00:00.000Z"})
	c.Append(MeasurementRecord{UserID: "u", Weight: 71, Timestamp: "2024-03-20T08:00:00.001Z"})

	assert.Equal(t, 1, c.MarkSynced("2024-03-20T08:00:00.000Z"))
	assert.Equal(t, 0, c.MarkSynced("2024-03-20T08:00:00"))

	pending := c.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "2024-03-20T08:00:00.001Z", pending[0].Timestamp)
}

func TestCollection_MarkSyncedCollidingTimestamps(t *testing.T) {
	c := NewCollection()
	c.Append(MeasurementRecord{UserID: "a", Weight: 70, Timestamp: "t"})
	c.Append(MeasurementRecord{UserID: "b", Weight: 80, Timestamp: "t"})

	assert.Equal(t, 2, c.MarkSynced("t"))
	assert.Empty(t, c.Pending())
}

func TestCollection_MarshalPreservesInvalidEntries(t *testing.T) {
	raw := `[{"userId":"u","weight":70,"timestamp":"t1","syncStatus":"pending"},{"bogus":true}]`
	c, err := DecodeCollection([]byte(raw))
	require.NoError(t, err)

	c.Append(MeasurementRecord{UserID: "u", Weight: 72, Timestamp: "t2"})
	data, err := json.Marshal(c)
	require.NoError(t, err)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &items))
	require.Len(t, items, 3)
	assert.Equal(t, true, items[1]["bogus"])
	assert.Equal(t, "pending", items[2]["syncStatus"])
}

func TestCollection_DropInvalid(t *testing.T) {
	raw := `[{"bogus":1},{"userId":"u","weight":70,"timestamp":"t1","syncStatus":"synced"},{"userId":"u"}]`
	c, err := DecodeCollection([]byte(raw))
	require.NoError(t, err)

	drops := c.DropInvalid()
	assert.Len(t, drops, 2)
	assert.Equal(t, 1, c.Len())
	assert.Nil(t, c.DropInvalid())
}

func TestCollection_MarshalEmpty(t *testing.T) {
	data, err := json.Marshal(NewCollection())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
