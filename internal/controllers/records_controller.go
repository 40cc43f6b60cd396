package controllers

import (
	"errors"
	"net/http"
	"weightsync/internal/capture"
	"weightsync/internal/providers"
	"weightsync/internal/storage"
	"weightsync/internal/syncer"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 16 // 64 KB

const (
	cacheKeyRecords = "records"
	cacheKeyPending = "records:pending"
)

type RecordsController struct {
	logger  providers.Logger
	store   storage.RecordStoreInterface
	capture capture.ServiceInterface
	driver  syncer.DriverInterface
	cache   providers.CacheProviderInterface
}

func NewRecordsController(
	logger providers.Logger,
	store storage.RecordStoreInterface,
	captureService capture.ServiceInterface,
	driver syncer.DriverInterface,
	cache providers.CacheProviderInterface,
) *RecordsController {
	return &RecordsController{
		logger:  logger,
		store:   store,
		capture: captureService,
		driver:  driver,
		cache:   cache,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (rc *RecordsController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := rc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		rc.logger.Errorf(providers.TypeHTTP, "%s: %v", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (rc *RecordsController) GetRecords(w http.ResponseWriter, r *http.Request) {
	rc.serveFromCacheOrCompute(w, cacheKeyRecords, func() (any, error) {
		return rc.store.GetAllRecords(r.Context())
	})
}

func (rc *RecordsController) GetPending(w http.ResponseWriter, r *http.Request) {
	rc.serveFromCacheOrCompute(w, cacheKeyPending, func() (any, error) {
		return rc.store.GetPendingRecords(r.Context())
	})
}

func (rc *RecordsController) CreateRecord(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var in capture.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	saved, err := rc.capture.Capture(r.Context(), in)
	switch {
	case errors.Is(err, capture.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "offline save failed", http.StatusInternalServerError)
		return
	}

	rc.cache.Clear()
	writeJSON(w, http.StatusCreated, saved)
}

func (rc *RecordsController) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := rc.driver.DrainPendingQueue(r.Context())
	if errors.Is(err, syncer.ErrDrainInProgress) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	rc.cache.Clear()
	if err != nil {
		rc.logger.Errorf(providers.TypeHTTP, "manual drain: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rc *RecordsController) GetStorage(w http.ResponseWriter, r *http.Request) {
	stats, err := rc.store.Stats(r.Context())
	if err != nil {
		rc.logger.Errorf(providers.TypeHTTP, "storage stats: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rc *RecordsController) ClearStorage(w http.ResponseWriter, r *http.Request) {
	if err := rc.store.ClearAll(r.Context()); err != nil {
		rc.logger.Errorf(providers.TypeHTTP, "clear storage: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	rc.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

type cleanupResponse struct {
	Removed int `json:"removed"`
}

func (rc *RecordsController) Cleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := rc.store.ValidateAndCleanup(r.Context())
	if err != nil {
		rc.logger.Errorf(providers.TypeHTTP, "cleanup: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if removed > 0 {
		rc.cache.Clear()
	}
	writeJSON(w, http.StatusOK, cleanupResponse{Removed: removed})
}
