package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-calendar/config"
	"github.com/jwalitptl/clinic-calendar/internal/app"
	"github.com/jwalitptl/clinic-calendar/internal/handler/health"
	promhandler "github.com/jwalitptl/clinic-calendar/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-calendar/internal/repository"
	"github.com/jwalitptl/clinic-calendar/internal/worker"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/metrics"
)

func setupHealthCheck(port int, pinger repository.SlotPinger, reg *prometheus.Registry, m *metrics.Metrics, logger *logger.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(pinger).RegisterRoutes(engine.Group(""))
	engine.GET("/metrics", promhandler.New(reg, m).Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger
	logger := app.NewLogger(cfg.Logging)

	if !cfg.Backup.Enabled {
		logger.Info("backups disabled, exiting")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slot, err := app.OpenSlot(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal(err, "Failed to open storage", "driver", cfg.Storage.Driver)
	}
	defer slot.Close()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg, cfg.Monitoring.Namespace)

	var pinger repository.SlotPinger
	if p, ok := slot.(repository.SlotPinger); ok {
		pinger = p
	}

	// Setup health check endpoints
	srv := setupHealthCheck(cfg.Backup.HealthPort, pinger, reg, m, logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down...")
		cancel()
	}()

	w := worker.NewBackupWorker(slot, cfg.Storage.Key, cfg.Backup.Schedule, logger, m)
	if err := w.Start(ctx); err != nil {
		logger.Error(err, "Backup worker failed")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
}
