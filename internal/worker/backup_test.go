package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-calendar/internal/repository/memory"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/metrics"
)

const payload = `{"5":[{"patient":"Jo","doctor":"Dr. Lee","time":"09:00"}]}`

func TestBackupAndRestore(t *testing.T) {
	ctx := context.Background()
	slot := memory.NewSlot()

	require.NoError(t, slot.Write(ctx, "appointments", []byte(payload)))
	require.NoError(t, Backup(ctx, slot, "appointments"))

	got, err := slot.Read(ctx, "appointments.backup")
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))

	require.NoError(t, slot.Write(ctx, "appointments", []byte(`{}`)))
	require.NoError(t, Restore(ctx, slot, "appointments"))
	got, err = slot.Read(ctx, "appointments")
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestBackupSkipsCorruptPayload(t *testing.T) {
	ctx := context.Background()
	slot := memory.NewSlot()

	require.NoError(t, slot.Write(ctx, "appointments.backup", []byte(payload)))
	require.NoError(t, slot.Write(ctx, "appointments", []byte(`garbage`)))

	assert.Error(t, Backup(ctx, slot, "appointments"))
	got, err := slot.Read(ctx, "appointments.backup")
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestBackupEmptySlot(t *testing.T) {
	err := Backup(context.Background(), memory.NewSlot(), "appointments")
	assert.ErrorIs(t, err, ErrNothingToBackUp)
}

func TestRunOnceRecordsOutcome(t *testing.T) {
	ctx := context.Background()
	slot := memory.NewSlot()
	m := metrics.New("test")
	w := NewBackupWorker(slot, "appointments", "@hourly", logger.NewNop(), m)

	w.RunOnce(ctx)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackupRuns.WithLabelValues("skipped")))

	require.NoError(t, slot.Write(ctx, "appointments", []byte(payload)))
	w.RunOnce(ctx)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackupRuns.WithLabelValues("ok")))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	w := NewBackupWorker(memory.NewSlot(), "appointments", "not a schedule", logger.NewNop(), metrics.New("test"))
	assert.Error(t, w.Start(context.Background()))
}

func TestStartStopsWithContext(t *testing.T) {
	w := NewBackupWorker(memory.NewSlot(), "appointments", "@every 1h", logger.NewNop(), metrics.New("test"))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
