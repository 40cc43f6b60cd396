package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"weightsync/internal/capture"
	"weightsync/internal/controllers"
	"weightsync/internal/notify"
	"weightsync/internal/providers"
	"weightsync/internal/scheduler/interfaces"
	"weightsync/internal/structures"
	"weightsync/internal/syncer"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	WebServer  *http.Server
	conf       *structures.Config
	logger     providers.Logger
	scheduler  interfaces.SchedulerInterface
	driver     syncer.DriverInterface
	subscriber *capture.Subscriber
	hub        notify.HubInterface
}

func NewApp(
	healthController *controllers.HealthController,
	hub notify.HubInterface,
	scheduler interfaces.SchedulerInterface,
	driver syncer.DriverInterface,
	subscriber *capture.Subscriber,
	conf *structures.Config,
	logger providers.Logger,
	router providers.RouterProviderInterface,
	metrics providers.MetricsProviderInterface,
) (*App, error) {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Pattern(), route.Handler)
	}

	// Wrap API routes with metrics middleware
	instrumentedAPI := providers.MetricsMiddleware(metrics, apiMux)

	// Outer mux: infrastructure + instrumented API. /ws hijacks the
	// connection and stays outside the middleware.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	if conf.Notify.Enabled {
		mux.Handle("/ws", hub)
	}
	mux.Handle("/", instrumentedAPI)

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:       conf,
		logger:     logger,
		scheduler:  scheduler,
		driver:     driver,
		subscriber: subscriber,
		hub:        hub,
	}, nil
}

// Run serves until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)
	if err := a.scheduler.Restore(); err != nil {
		a.logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}
	a.scheduler.Init()

	syncCtx, cancelSync := context.WithCancel(context.Background())
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		_ = a.driver.Run(syncCtx)
	}()

	if err := a.subscriber.Start(); err != nil {
		a.logger.Errorf(providers.TypeCapture, "MQTT disabled for this run: %s", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", a.WebServer.Addr)
		if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	a.subscriber.Stop()
	a.scheduler.Stop()

	// an in-flight drain stops between records
	cancelSync()
	<-syncDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.hub.Close()
	if err := a.WebServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	if err := a.scheduler.Persist(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}
