package internal

import (
	"weightsync/internal/connectivity"
	"weightsync/internal/kv"
	"weightsync/internal/providers"
	"weightsync/internal/storage"
	"weightsync/internal/structures"
	"weightsync/internal/syncer"
)

// Toolkit is the subset of the daemon the one-shot CLI commands work with.
type Toolkit struct {
	Config *structures.Config
	Logger providers.Logger
	Store  storage.RecordStoreInterface
	Driver syncer.DriverInterface
	Prober connectivity.Prober
	kv     kv.Store
}

func NewToolkit(
	conf *structures.Config,
	logger providers.Logger,
	store storage.RecordStoreInterface,
	driver syncer.DriverInterface,
	prober connectivity.Prober,
	kvStore kv.Store,
) *Toolkit {
	return &Toolkit{
		Config: conf,
		Logger: logger,
		Store:  store,
		Driver: driver,
		Prober: prober,
		kv:     kvStore,
	}
}

func (t *Toolkit) Close() error {
	defer t.Logger.Close()
	return t.kv.Close()
}
