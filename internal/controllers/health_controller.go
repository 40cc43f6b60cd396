package controllers

import (
	"fmt"
	"net/http"
	"time"
	"weightsync/internal/connectivity"
	"weightsync/internal/providers"
	"weightsync/internal/storage"
	"weightsync/internal/syncer"
)

type HealthController struct {
	store     storage.RecordStoreInterface
	conn      connectivity.Source
	driver    syncer.DriverInterface
	logger    providers.Logger
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Online        bool    `json:"online"`
	Draining      bool    `json:"draining"`
	Pending       int     `json:"pending"`
}

// Health reports "degraded" with status 503 when the local store cannot be read.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Online:        hc.conn.IsConnected(),
		Draining:      hc.driver.IsDraining(),
	}

	status := http.StatusOK
	pending, err := hc.store.GetPendingRecords(r.Context())
	if err != nil {
		hc.logger.Warnf(providers.TypeHTTP, "health: %v", err)
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	} else {
		resp.Pending = len(pending)
	}

	writeJSON(w, status, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(store storage.RecordStoreInterface, conn connectivity.Source, driver syncer.DriverInterface, logger providers.Logger) *HealthController {
	return &HealthController{
		store:     store,
		conn:      conn,
		driver:    driver,
		logger:    logger,
		startTime: time.Now(),
	}
}
