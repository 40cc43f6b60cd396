//go:build wireinject
// +build wireinject

package di

import (
	"weightsync/internal"
	"weightsync/internal/capture"
	"weightsync/internal/connectivity"
	"weightsync/internal/controllers"
	"weightsync/internal/notify"
	"weightsync/internal/providers"
	"weightsync/internal/remote"
	"weightsync/internal/scheduler"
	"weightsync/internal/storage"
	"weightsync/internal/structures"
	"weightsync/internal/syncer"

	wire "github.com/google/wire"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,
	providers.NewKVProvider,
	storage.NewRecordStore,
	remote.NewClient,
	connectivity.NewMonitor,
	provideSource,
	syncer.NewDriver,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		coreSet,
		providers.NewInstrumentedCacheProvider,
		notify.NewNotifyProvider,
		provideNotifier,
		capture.NewService,
		capture.NewSubscriber,
		scheduler.NewScheduler,
		controllers.NewRecordsController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

func InitToolkit(cfg *structures.CliFlags) (*internal.Toolkit, error) {

	wire.Build(
		coreSet,
		provideNoNotifier,
		internal.NewToolkit,
	)

	return nil, nil
}
