package capture

import (
	"context"
	"testing"
	"weightsync/internal/models"
	"weightsync/internal/structures"
	"weightsync/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingService struct {
	inputs []Input
	err    error
}

func (r *recordingService) Capture(_ context.Context, in Input) (models.MeasurementRecord, error) {
	r.inputs = append(r.inputs, in)
	if r.err != nil {
		return models.MeasurementRecord{}, r.err
	}
	return models.MeasurementRecord{UserID: in.UserID, Weight: in.Weight}, nil
}

func TestSubscriber_HandlePayload(t *testing.T) {
	svc := &recordingService{}
	s := NewSubscriber(&structures.Config{}, svc, testutil.NewMockCache(), &testutil.MockLogger{})

	err := s.HandlePayload(context.Background(), "scale/bathroom/weight",
		[]byte(`{"userId":"u1","weight":81.3,"notes":"","batteryLevel":55}`))
	require.NoError(t, err)

	require.Len(t, svc.inputs, 1)
	in := svc.inputs[0]
	assert.Equal(t, "u1", in.UserID)
	assert.Equal(t, 81.3, in.Weight)
	assert.Equal(t, "bathroom", in.DeviceID)
	require.NotNil(t, in.BatteryLevel)
	assert.Equal(t, 55.0, *in.BatteryLevel)
}

func TestSubscriber_HandlePayload_Malformed(t *testing.T) {
	svc := &recordingService{}
	s := NewSubscriber(&structures.Config{}, svc, testutil.NewMockCache(), &testutil.MockLogger{})

	err := s.HandlePayload(context.Background(), "scale/x/weight", []byte(`{"weight":`))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, svc.inputs)
}

func TestSubscriber_HandlePayload_PropagatesCaptureError(t *testing.T) {
	svc := &recordingService{err: ErrInvalidInput}
	s := NewSubscriber(&structures.Config{}, svc, testutil.NewMockCache(), &testutil.MockLogger{})

	err := s.HandlePayload(context.Background(), "scale/x/weight", []byte(`{"userId":"","weight":1}`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubscriber_StartDisabled(t *testing.T) {
	s := NewSubscriber(&structures.Config{}, &recordingService{}, testutil.NewMockCache(), &testutil.MockLogger{})
	assert.NoError(t, s.Start())
	s.Stop()
}

func TestDeviceFromTopic(t *testing.T) {
	assert.Equal(t, "kitchen", deviceFromTopic("scale/kitchen/weight"))
	assert.Equal(t, "", deviceFromTopic("scale"))
	assert.Equal(t, "", deviceFromTopic("scale//weight"))
}

func TestSubscriber_HandlePayload_InvalidatesCache(t *testing.T) {
	cache := testutil.NewMockCache()
	cache.Set("records", []byte("[]"))
	s := NewSubscriber(&structures.Config{}, &recordingService{}, cache, &testutil.MockLogger{})

	require.NoError(t, s.HandlePayload(context.Background(), "scale/bathroom/weight", []byte(`{"userId":"u1","weight":80}`)))

	_, cached := cache.Get("records")
	assert.False(t, cached)
}

func TestSubscriber_HandlePayload_FailureKeepsCache(t *testing.T) {
	cache := testutil.NewMockCache()
	cache.Set("records", []byte("[]"))
	s := NewSubscriber(&structures.Config{}, &recordingService{err: ErrInvalidInput}, cache, &testutil.MockLogger{})

	assert.Error(t, s.HandlePayload(context.Background(), "scale/bathroom/weight", []byte(`{"userId":"","weight":80}`)))

	_, cached := cache.Get("records")
	assert.True(t, cached)
}
