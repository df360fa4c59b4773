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

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-calendar/config"
	"github.com/jwalitptl/clinic-calendar/internal/app"
	"github.com/jwalitptl/clinic-calendar/internal/handler"
	"github.com/jwalitptl/clinic-calendar/internal/handler/appointment"
	"github.com/jwalitptl/clinic-calendar/internal/handler/auth"
	"github.com/jwalitptl/clinic-calendar/internal/handler/calendar"
	"github.com/jwalitptl/clinic-calendar/internal/handler/health"
	"github.com/jwalitptl/clinic-calendar/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-calendar/internal/middleware"
	"github.com/jwalitptl/clinic-calendar/internal/router"
	authService "github.com/jwalitptl/clinic-calendar/internal/service/auth"
	"github.com/jwalitptl/clinic-calendar/pkg/security"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := app.NewLogger(cfg.Logging)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer a.Close()

	// Initialize services
	authSvc := authService.NewService(cfg.Auth.Username, cfg.Auth.PasswordHash, security.NewBcryptHasher(0), logger)
	session := handler.NewSession(a.Controller)

	// Initialize handlers
	healthHandler := health.NewHandler(a.Pinger())
	authHandler := auth.NewHandler(authSvc)
	appointmentHandler := appointment.NewHandler(session, a.Directory())
	calendarHandler := calendar.NewHandler(session, a.Builder, a.Exporter)
	metricsHandler := prometheus.New(a.Registry, a.Metrics)

	var limit rate.Limit
	if cfg.RateLimit.Enabled {
		limit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.Security.AllowedOrigins
	cors.AllowMethods = cfg.Security.AllowedMethods
	cors.AllowHeaders = cfg.Security.AllowedHeaders
	cors.MaxAge = cfg.Security.MaxAge

	// Setup router
	r := router.NewRouter(
		healthHandler,
		authHandler,
		appointmentHandler,
		calendarHandler,
		metricsHandler,
		router.RouterConfig{
			Mode:           cfg.Server.Mode,
			RequestTimeout: cfg.Server.RequestTimeout,
			RateLimit:      limit,
			RateBurst:      cfg.RateLimit.Burst,
			MaxBodySize:    middleware.DefaultMaxBodySize,
			TrustedProxies: cfg.Server.TrustedProxies,
			CORSConfig:     cors,
			Security:       middleware.DefaultSecurityConfig(),
		},
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Driver).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
