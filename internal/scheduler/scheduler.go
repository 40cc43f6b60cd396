package scheduler

import (
	"context"
	"sync"
	"time"
	"weightsync/internal/connectivity"
	"weightsync/internal/kv"
	"weightsync/internal/providers"
	"weightsync/internal/scheduler/interfaces"
	"weightsync/internal/storage"
	"weightsync/internal/structures"

	"github.com/roylee0704/gron"
)

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	store   storage.RecordStoreInterface
	kv      kv.Store
	prober  connectivity.Prober
	metrics providers.MetricsProviderInterface
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Sync.ProbeInterval), s.probe)

	if s.config.Metrics.Enabled && s.config.Metrics.RefreshInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Metrics.RefreshInterval), s.refreshGauges)
	}

	s.cron.Start()
}

func (s *Scheduler) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Sync.ProbeTimeout+time.Second)
	defer cancel()
	s.prober.Probe(ctx)
}

func (s *Scheduler) refreshGauges() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ctx := context.Background()
	stats, err := s.store.Stats(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while collecting storage stats: %s", err)
		return
	}
	s.metrics.SetPendingRecords(stats.Pending)
	s.metrics.SetStorageBytes(stats.SizeBytes)
	s.logger.Debugf(providers.TypeApp, "Storage gauges refreshed: pending=%d bytes=%d", stats.Pending, stats.SizeBytes)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore drops invalid records left by earlier runs and takes a first
// connectivity reading so the sync driver starts from a real state.
func (s *Scheduler) Restore() error {
	s.opsMu.Lock()
	dropped, err := s.store.ValidateAndCleanup(context.Background())
	s.opsMu.Unlock()
	if err != nil {
		return err
	}
	if dropped > 0 {
		s.logger.Warnf(providers.TypeApp, "Removed %d invalid records from offline storage", dropped)
	}

	s.probe()
	s.refreshGauges()
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Closing offline storage...")
	if err := s.kv.Close(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while closing storage: %s", err)
		return err
	}
	return nil
}

func NewScheduler(
	config *structures.Config,
	logger providers.Logger,
	store storage.RecordStoreInterface,
	kvStore kv.Store,
	prober connectivity.Prober,
	metrics providers.MetricsProviderInterface,
) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		store:   store,
		kv:      kvStore,
		prober:  prober,
		metrics: metrics,
	}
}
