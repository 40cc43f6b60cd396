package internal

import (
	"net/http"
	"weightsync/internal/controllers"
	"weightsync/internal/providers"
)

func InitRoutes(recordsController *controllers.RecordsController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/records", http.HandlerFunc(recordsController.GetRecords))
	routers.Post("/records", http.HandlerFunc(recordsController.CreateRecord))
	routers.Get("/records/pending", http.HandlerFunc(recordsController.GetPending))
	routers.Post("/sync", http.HandlerFunc(recordsController.Sync))
	routers.Get("/storage", http.HandlerFunc(recordsController.GetStorage))
	routers.Delete("/storage", http.HandlerFunc(recordsController.ClearStorage))
	routers.Post("/storage/cleanup", http.HandlerFunc(recordsController.Cleanup))
	return routers
}
