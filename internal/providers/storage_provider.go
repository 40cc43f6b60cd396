package providers

import (
	"fmt"
	"weightsync/internal/kv"
	"weightsync/internal/structures"
)

// NewKVProvider opens the key-value backend selected by storage.driver.
func NewKVProvider(conf *structures.Config, logger Logger) (kv.Store, error) {
	switch conf.Storage.Driver {
	case "memory":
		logger.Warnf(TypeStorage, "Using in-memory storage, records will not survive a restart")
		return kv.NewMemoryStore(), nil

	case "sqlite":
		store, err := kv.OpenSQLiteStore(conf.Storage.Path)
		if err != nil {
			return nil, err
		}
		logger.Infof(TypeStorage, "Opened sqlite storage %s", conf.Storage.Path)
		return store, nil

	case "file", "":
		compressor, err := kv.NewCompressor(conf.Storage.Compression)
		if err != nil {
			return nil, err
		}
		store, err := kv.OpenFileStore(conf.Storage.Path, compressor)
		if err != nil {
			compressor.Close()
			return nil, err
		}
		logger.Infof(TypeStorage, "Opened file storage %s (compression=%s)", conf.Storage.Path, conf.Storage.Compression)
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
}
