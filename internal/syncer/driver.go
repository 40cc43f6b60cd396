// Package syncer pushes pending measurement records to the remote API and
// reacts to connectivity changes.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"
	"weightsync/internal/connectivity"
	"weightsync/internal/models"
	"weightsync/internal/providers"
	"weightsync/internal/remote"
	"weightsync/internal/storage"
	"weightsync/internal/structures"

	"go.uber.org/atomic"
)

var ErrDrainInProgress = errors.New("sync: drain already in progress")

type Notifier interface {
	NotifyDrain(result models.DrainResult)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(result models.DrainResult)

func (f NotifierFunc) NotifyDrain(result models.DrainResult) { f(result) }

// Notifiers fans a drain result out in order.
type Notifiers []Notifier

func (n Notifiers) NotifyDrain(result models.DrainResult) {
	for _, notifier := range n {
		notifier.NotifyDrain(result)
	}
}

type DriverInterface interface {
	// DrainPendingQueue pushes every record that was pending when it started.
	// Per-record failures are counted, not returned.
	DrainPendingQueue(ctx context.Context) (models.DrainResult, error)
	// SyncRecord pushes a single freshly captured record.
	SyncRecord(ctx context.Context, record models.MeasurementRecord) error
	// Run drains on start when online and on every offline to online edge,
	// until ctx is done.
	Run(ctx context.Context) error
	IsDraining() bool
}

type Driver struct {
	store       storage.RecordStoreInterface
	client      remote.ClientInterface
	conn        connectivity.Source
	notifier    Notifier
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	itemTimeout time.Duration
	draining    atomic.Bool
	now         func() time.Time

	// pushMu is held by SyncRecord for the whole push; a drain waits for it
	// before taking its snapshot.
	pushMu sync.Mutex
}

func NewDriver(
	store storage.RecordStoreInterface,
	client remote.ClientInterface,
	conn connectivity.Source,
	notifier Notifier,
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) DriverInterface {
	return newDriver(store, client, conn, notifier, conf, logger, metrics)
}

func newDriver(
	store storage.RecordStoreInterface,
	client remote.ClientInterface,
	conn connectivity.Source,
	notifier Notifier,
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *Driver {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Driver{
		store:       store,
		client:      client,
		conn:        conn,
		notifier:    notifier,
		logger:      logger,
		metrics:     metrics,
		itemTimeout: conf.Sync.ItemTimeout,
		now:         time.Now,
	}
}

func (d *Driver) IsDraining() bool {
	return d.draining.Load()
}

func (d *Driver) DrainPendingQueue(ctx context.Context) (models.DrainResult, error) {
	if !d.draining.CompareAndSwap(false, true) {
		return models.DrainResult{}, ErrDrainInProgress
	}
	defer d.draining.Store(false)

	result := models.DrainResult{StartedAt: d.now()}

	// let an in-flight SyncRecord finish so the snapshot does not include it
	d.pushMu.Lock()
	d.pushMu.Unlock() //nolint:staticcheck

	pending, err := d.store.GetPendingRecords(ctx)
	if err != nil {
		return result, err
	}
	if len(pending) == 0 {
		d.logger.Debugf(providers.TypeSync, "drain: nothing pending")
		result.FinishedAt = d.now()
		return result, nil
	}

	d.logger.Infof(providers.TypeSync, "drain: %d pending records", len(pending))
	for _, rec := range pending {
		// stop between records on shutdown; what is left stays pending
		if err := ctx.Err(); err != nil {
			result.FinishedAt = d.now()
			d.finish(result)
			return result, err
		}
		if d.push(ctx, rec) == nil {
			result.Synced++
		} else {
			result.Failed++
		}
	}

	result.FinishedAt = d.now()
	d.finish(result)
	return result, nil
}

func (d *Driver) finish(result models.DrainResult) {
	d.metrics.ObserveDrainDuration(result.FinishedAt.Sub(result.StartedAt))
	d.logger.Infof(providers.TypeSync, "drain finished: %d synced, %d failed", result.Synced, result.Failed)
	d.notifier.NotifyDrain(result)
}

// SyncRecord does not hold the drain flag, so a connectivity edge during a
// single push still starts a drain.
func (d *Driver) SyncRecord(ctx context.Context, record models.MeasurementRecord) error {
	d.pushMu.Lock()
	defer d.pushMu.Unlock()

	if d.IsDraining() {
		d.logger.Debugf(providers.TypeSync, "record %s left for the next drain", record.Timestamp)
		return ErrDrainInProgress
	}
	return d.push(ctx, record)
}

// push uploads one record and marks it synced. The remote call is bounded by
// the per-item timeout.
func (d *Driver) push(ctx context.Context, rec models.MeasurementRecord) error {
	itemCtx, cancel := context.WithTimeout(ctx, d.itemTimeout)
	created, err := d.client.CreateRecord(itemCtx, rec)
	cancel()
	if err != nil {
		d.metrics.IncSyncRecords(providers.SyncResultFailed)
		d.logger.Warnf(providers.TypeSync, "record %s (user=%s) not synced: %v", rec.Timestamp, rec.UserID, err)
		return err
	}

	if err := d.store.MarkRecordSynced(ctx, rec.Timestamp); err != nil {
		d.metrics.IncSyncRecords(providers.SyncResultFailed)
		d.logger.Errorf(providers.TypeSync, "record %s accepted as %s but not marked synced: %v", rec.Timestamp, created.ID, err)
		return err
	}

	if err := d.store.UpdateLastSyncTime(ctx, d.now()); err != nil {
		d.logger.Warnf(providers.TypeSync, "failed to update last sync time: %v", err)
	}

	d.metrics.IncSyncRecords(providers.SyncResultSynced)
	d.logger.Debugf(providers.TypeSync, "record %s synced as %s", rec.Timestamp, created.ID)
	return nil
}

func (d *Driver) Run(ctx context.Context) error {
	events := d.conn.Subscribe()

	if d.conn.IsConnected() {
		d.trigger(ctx, "startup")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case online := <-events:
			if online {
				d.trigger(ctx, "connectivity regained")
			}
		}
	}
}

func (d *Driver) trigger(ctx context.Context, reason string) {
	d.logger.Infof(providers.TypeSync, "drain triggered: %s", reason)
	_, err := d.DrainPendingQueue(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrDrainInProgress):
		d.logger.Debugf(providers.TypeSync, "drain skipped: already running")
	case errors.Is(err, context.Canceled):
	default:
		d.logger.Errorf(providers.TypeSync, "drain failed: %v", err)
	}
}

type noopNotifier struct{}

func (noopNotifier) NotifyDrain(_ models.DrainResult) {}
