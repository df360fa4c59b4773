package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-calendar/internal/repository"
)

func newTestSlot(t *testing.T) *Slot {
	t.Helper()
	url := os.Getenv("CLINIC_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CLINIC_TEST_REDIS_URL not set")
	}
	s, err := NewSlot(context.Background(), Config{
		URL:       url,
		KeyPrefix: "clinic-test:" + uuid.NewString() + ":",
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSlotReadWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestSlot(t)

	_, err := s.Read(ctx, "appointments")
	assert.ErrorIs(t, err, repository.ErrSlotNotFound)

	require.NoError(t, s.Write(ctx, "appointments", []byte(`{"1":[]}`)))
	require.NoError(t, s.Write(ctx, "appointments", []byte(`{}`)))

	got, err := s.Read(ctx, "appointments")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))
	assert.NoError(t, s.Ping(ctx))
}

func TestNewSlotRejectsBadURL(t *testing.T) {
	_, err := NewSlot(context.Background(), Config{URL: "not-a-url"})
	assert.Error(t, err)
}
