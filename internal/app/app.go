// Package app wires configuration into the slot, store and controller
// shared by the API server, the backup worker and the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-calendar/config"
	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/internal/repository"
	"github.com/jwalitptl/clinic-calendar/internal/repository/diskv"
	"github.com/jwalitptl/clinic-calendar/internal/repository/memory"
	"github.com/jwalitptl/clinic-calendar/internal/repository/postgres"
	"github.com/jwalitptl/clinic-calendar/internal/repository/redis"
	"github.com/jwalitptl/clinic-calendar/internal/service/appointment"
	"github.com/jwalitptl/clinic-calendar/internal/service/calendar"
	"github.com/jwalitptl/clinic-calendar/internal/service/export"
	"github.com/jwalitptl/clinic-calendar/internal/service/persistence"
	"github.com/jwalitptl/clinic-calendar/internal/service/scheduling"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/metrics"
	"github.com/jwalitptl/clinic-calendar/pkg/validator"
)

type App struct {
	Config     *config.Config
	Log        *logger.Logger
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Slot       repository.SlotStore
	Adapter    *persistence.Adapter
	Store      *appointment.Store
	Builder    *calendar.Builder
	Controller *scheduling.Controller
	Exporter   *export.Exporter
}

// NewLogger builds the application logger from config and installs it as
// the global zerolog logger used by the HTTP middleware.
func NewLogger(cfg config.LoggingConfig) *logger.Logger {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stderr,
		Pretty:     cfg.Pretty,
	})
	log.Logger = l.ZL
	return l
}

// OpenSlot connects the storage driver named in cfg.
func OpenSlot(ctx context.Context, cfg config.StorageConfig) (repository.SlotStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewSlot(), nil
	case config.DriverDiskv:
		return diskv.NewSlot(cfg.Path)
	case config.DriverRedis:
		return redis.NewSlot(ctx, cfg.Redis.ToSlotConfig())
	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.Database.ToDBConfig())
		if err != nil {
			return nil, err
		}
		slot, err := postgres.NewSlotRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return slot, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// New opens the configured slot and loads the appointment collection.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg, cfg.Monitoring.Namespace)

	slot, err := OpenSlot(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	builder := calendar.NewBuilder(calendar.WithWeekStart(cfg.WeekStart()))
	adapter := persistence.NewAdapter(slot, cfg.Storage.Key, log, m)
	store := appointment.NewStore(adapter, log, m)

	return &App{
		Config:     cfg,
		Log:        log,
		Registry:   reg,
		Metrics:    m,
		Slot:       slot,
		Adapter:    adapter,
		Store:      store,
		Builder:    builder,
		Controller: scheduling.NewController(ctx, store, validator.New(), builder, log),
		Exporter:   export.NewExporter(cfg.Calendar.EventDuration, builder.Now),
	}, nil
}

// Pinger returns the slot's readiness probe, or nil for local slots.
func (a *App) Pinger() repository.SlotPinger {
	if p, ok := a.Slot.(repository.SlotPinger); ok {
		return p
	}
	return nil
}

// Directory is the patient and doctor list offered by the form.
func (a *App) Directory() model.Directory {
	return model.Directory{
		Patients: a.Config.Directory.Patients,
		Doctors:  a.Config.Directory.Doctors,
	}
}

func (a *App) Close() error {
	return a.Slot.Close()
}
