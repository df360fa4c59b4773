package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jwalitptl/clinic-calendar/internal/repository"
	"github.com/jwalitptl/clinic-calendar/internal/service/persistence"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/metrics"
)

// ErrNothingToBackUp is returned when the source slot was never written.
var ErrNothingToBackUp = errors.New("nothing to back up")

// BackupKey names the slot holding the copy of key.
func BackupKey(key string) string {
	return key + ".backup"
}

// Backup copies key to its backup slot. A payload that does not decode is
// not copied so a good backup is never replaced by a corrupt one.
func Backup(ctx context.Context, slot repository.SlotStore, key string) error {
	return copySlot(ctx, slot, key, BackupKey(key))
}

// Restore copies the backup slot over key.
func Restore(ctx context.Context, slot repository.SlotStore, key string) error {
	return copySlot(ctx, slot, BackupKey(key), key)
}

func copySlot(ctx context.Context, slot repository.SlotStore, from, to string) error {
	data, err := slot.Read(ctx, from)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return fmt.Errorf("%w: slot %s is empty", ErrNothingToBackUp, from)
		}
		return fmt.Errorf("failed to read slot %s: %w", from, err)
	}
	if _, err := persistence.Decode(data); err != nil {
		return fmt.Errorf("refusing to copy slot %s: %w", from, err)
	}
	if err := slot.Write(ctx, to, data); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", to, err)
	}
	return nil
}

type BackupWorker struct {
	slot     repository.SlotStore
	key      string
	schedule string
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewBackupWorker(slot repository.SlotStore, key, schedule string, log *logger.Logger, m *metrics.Metrics) *BackupWorker {
	return &BackupWorker{
		slot:     slot,
		key:      key,
		schedule: schedule,
		logger:   log.WithFields(map[string]interface{}{"worker": "backup", "key": key}),
		metrics:  m,
	}
}

// Start runs backups on the cron schedule until ctx is done.
func (w *BackupWorker) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", w.schedule, err)
	}

	w.logger.Info("backup worker started", "schedule", w.schedule)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.Info("backup worker stopped")
	return nil
}

// RunOnce performs a single backup and records the outcome.
func (w *BackupWorker) RunOnce(ctx context.Context) {
	err := Backup(ctx, w.slot, w.key)
	switch {
	case err == nil:
		w.metrics.BackupRuns.WithLabelValues("ok").Inc()
		w.logger.Debug("backup written")
	case errors.Is(err, ErrNothingToBackUp):
		w.metrics.BackupRuns.WithLabelValues("skipped").Inc()
		w.logger.Debug("backup skipped, no appointments persisted yet")
	default:
		w.metrics.BackupRuns.WithLabelValues("error").Inc()
		w.logger.Error(err, "backup failed")
	}
}
