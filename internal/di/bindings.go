package di

import (
	"weightsync/internal/connectivity"
	"weightsync/internal/models"
	"weightsync/internal/notify"
	"weightsync/internal/providers"
	"weightsync/internal/syncer"
)

func provideSource(prober connectivity.Prober) connectivity.Source {
	return prober
}

// provideNotifier publishes drain results to websocket clients and drops
// cached record listings once a drain changed something.
func provideNotifier(hub notify.HubInterface, cache providers.CacheProviderInterface) syncer.Notifier {
	return syncer.Notifiers{
		hub,
		syncer.NotifierFunc(func(result models.DrainResult) {
			if result.Synced > 0 {
				cache.Clear()
			}
		}),
	}
}

// the CLI never serves websocket clients
func provideNoNotifier() syncer.Notifier {
	return nil
}
