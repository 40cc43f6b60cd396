// Package capture turns measurements from a scale or manual entry into stored
// records and pushes them right away when the network is up.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"weightsync/internal/connectivity"
	"weightsync/internal/models"
	"weightsync/internal/providers"
	"weightsync/internal/storage"
	"weightsync/internal/syncer"

	"github.com/gookit/validate"
)

var ErrInvalidInput = errors.New("invalid measurement")

type Input struct {
	UserID       string   `json:"userId" validate:"required"`
	Weight       float64  `json:"weight" validate:"required|gt:0"`
	Notes        string   `json:"notes" validate:"maxLen:500"`
	DeviceID     string   `json:"deviceId"`
	BatteryLevel *float64 `json:"batteryLevel"`
}

type ServiceInterface interface {
	Capture(ctx context.Context, in Input) (models.MeasurementRecord, error)
}

type Service struct {
	store  storage.RecordStoreInterface
	driver syncer.DriverInterface
	conn   connectivity.Source
	logger providers.Logger
	now    func() time.Time

	stampMu   sync.Mutex
	lastStamp time.Time
}

func NewService(store storage.RecordStoreInterface, driver syncer.DriverInterface, conn connectivity.Source, logger providers.Logger) ServiceInterface {
	return &Service{
		store:  store,
		driver: driver,
		conn:   conn,
		logger: logger,
		now:    time.Now,
	}
}

func validateInput(in *Input) error {
	v := validate.Struct(in)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalidInput, v.Errors.One())
	}
	return nil
}

// stamp returns the capture time at millisecond resolution, moved 1ms past
// the previous stamp when they would be equal or the clock went back, so
// records captured in one burst keep distinct timestamps.
func (s *Service) stamp() time.Time {
	s.stampMu.Lock()
	defer s.stampMu.Unlock()

	t := s.now().UTC().Truncate(time.Millisecond)
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Millisecond)
	}
	s.lastStamp = t
	return t
}

// Capture stores the measurement as pending. A storage fault means the
// measurement was not saved and is returned. A failed immediate sync is not an
// error; the record waits for the next drain.
func (s *Service) Capture(ctx context.Context, in Input) (models.MeasurementRecord, error) {
	if err := validateInput(&in); err != nil {
		return models.MeasurementRecord{}, err
	}

	saved, err := s.store.SaveRecord(ctx, models.MeasurementRecord{
		UserID:    in.UserID,
		Weight:    in.Weight,
		Notes:     in.Notes,
		Timestamp: models.FormatTimestamp(s.stamp()),
	})
	if err != nil {
		s.logger.Errorf(providers.TypeCapture, "offline save failed for user %s: %v", in.UserID, err)
		return models.MeasurementRecord{}, err
	}
	s.logger.Infof(providers.TypeCapture, "captured %.2fkg for user %s at %s", saved.Weight, saved.UserID, saved.Timestamp)

	if in.DeviceID != "" {
		device, at := in.DeviceID, saved.Timestamp
		err := s.store.SaveDeviceInfo(ctx, models.DeviceInfo{
			LastConnectedDevice: &device,
			LastConnectionTime:  &at,
			BatteryLevel:        in.BatteryLevel,
		})
		if err != nil {
			s.logger.Warnf(providers.TypeCapture, "failed to update device info for %s: %v", device, err)
		}
	}

	if !s.conn.IsConnected() {
		return saved, nil
	}
	if err := s.driver.SyncRecord(ctx, saved); err != nil {
		s.logger.Infof(providers.TypeCapture, "record %s stays pending: %v", saved.Timestamp, err)
		return saved, nil
	}
	saved.SyncStatus = models.SyncSynced
	return saved, nil
}
