package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-editor/internal/database"
	"media-editor/internal/editor"
	"media-editor/internal/filesystem"
	"media-editor/internal/handlers"
	"media-editor/internal/jobs"
	"media-editor/internal/logging"
	"media-editor/internal/memory"
	"media-editor/internal/metrics"
	"media-editor/internal/middleware"
	"media-editor/internal/publish"
	"media-editor/internal/startup"
	"media-editor/internal/transcoder"
)

const (
	metricsCollectInterval = time.Minute
	shutdownTimeout        = 30 * time.Second
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"work":     config.WorkDir,
		"library":  config.LibraryDir,
		"database": config.DatabaseDir,
	}))

	// Database
	dbStart := time.Now()
	ctx := context.Background()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	interrupted, err := db.MarkInterrupted(ctx)
	if err != nil {
		logging.Warn("Failed to mark interrupted edits: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart), interrupted)

	// Engine and orchestration
	factory := transcoder.NewFactory(transcoder.Options{
		FFmpegPath:  config.FFmpegPath,
		FFprobePath: config.FFprobePath,
	})
	startup.LogEngineInit(config.FFmpegPath)

	orchestrator := editor.New(factory,
		editor.WithPollInterval(config.ProgressInterval),
		editor.WithCloseTimeout(config.CloseTimeout),
	)
	publisher := publish.New(config.LibraryDir, config.FFmpegPath, config.PublishEnabled)

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	svc := jobs.NewService(orchestrator, db, publisher, config.MaxConcurrentEdits, jobs.WithAdmission(monitor))

	collector := metrics.NewCollector(svc, metricsCollectInterval)
	collector.Start()

	stopDBMetrics := make(chan struct{})
	go updateDBMetrics(db, stopDBMetrics)

	// HTTP
	h := handlers.New(svc, handlers.Options{
		TokenHash:       config.APITokenHash,
		EngineAvailable: factory.Available,
		WorkDir:         config.WorkDir,
	})
	router := h.Router()
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	srv := newServer(config, router)

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan

		startup.LogShutdownInitiated(sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		startup.LogShutdownStep("Shutting down HTTP server")
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warn("Server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("HTTP server stopped")
		}

		startup.LogShutdownStep("Cancelling edits")
		if err := svc.Shutdown(ctx); err != nil {
			logging.Warn("Edits did not stop in time: %v", err)
		} else {
			startup.LogShutdownStepComplete("Edits stopped")
		}

		startup.LogShutdownStep("Closing orchestrator")
		if err := orchestrator.Close(); err != nil {
			logging.Warn("Orchestrator close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Orchestrator closed")
		}

		collector.Stop()
		close(stopDBMetrics)
		monitor.Stop()

		if metricsSrv != nil {
			startup.LogShutdownStep("Shutting down metrics server")
			if err := metricsSrv.Shutdown(ctx); err != nil {
				logging.Warn("Metrics server shutdown error: %v", err)
			} else {
				startup.LogShutdownStepComplete("Metrics server stopped")
			}
		}
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}

	// ListenAndServe returns as soon as Shutdown starts. The database is
	// closed after the remaining steps.
	<-shutdownDone
	if err := db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	}
	startup.LogShutdownComplete()
}

// newServer wraps the API router with request logging.
func newServer(config *startup.Config, router http.Handler) *http.Server {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	return &http.Server{
		Addr:              ":" + config.Port,
		Handler:           middleware.Logger(loggingConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// newMetricsServer serves Prometheus metrics and a health probe on a
// separate port.
func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h.MetricsHandler())
	mux.HandleFunc("/health", h.LivenessCheck)

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
}

func updateDBMetrics(db *database.Database, stop <-chan struct{}) {
	ticker := time.NewTicker(metricsCollectInterval)
	defer ticker.Stop()

	db.UpdateDBMetrics()
	for {
		select {
		case <-ticker.C:
			db.UpdateDBMetrics()
		case <-stop:
			return
		}
	}
}
