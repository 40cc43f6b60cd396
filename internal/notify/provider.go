package notify

import (
	"net/http"
	"weightsync/internal/models"
	"weightsync/internal/providers"
	"weightsync/internal/structures"
)

// NewNotifyProvider returns a websocket hub, or a no-op when notifications are
// disabled.
func NewNotifyProvider(conf *structures.Config, logger providers.Logger) HubInterface {
	if !conf.Notify.Enabled {
		return &noopHub{}
	}
	return NewHub(logger)
}

type noopHub struct{}

func (n *noopHub) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Not Found", http.StatusNotFound)
}
func (n *noopHub) NotifyDrain(_ models.DrainResult) {}
func (n *noopHub) Clients() int                     { return 0 }
func (n *noopHub) Close()                           {}
