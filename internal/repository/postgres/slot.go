package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-calendar/internal/repository"
	"github.com/jwalitptl/clinic-calendar/pkg/circuitbreaker"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv_slots (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

type slotRepository struct {
	db *sqlx.DB
	cb *circuitbreaker.CircuitBreaker
}

// NewSlotRepository creates the kv_slots table when missing.
func NewSlotRepository(ctx context.Context, db *sqlx.DB) (repository.SlotStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create kv_slots table: %w", err)
	}
	return &slotRepository{
		db: db,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "postgres-slot",
			MaxFailures: 5,
			Interval:    10 * time.Second,
			Timeout:     5 * time.Second,
		}),
	}, nil
}

func (r *slotRepository) Read(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_slots WHERE key = $1`

	var (
		value []byte
		found = true
	)
	err := r.cb.Execute(func() error {
		err := r.db.GetContext(ctx, &value, query, key)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	if !found {
		return nil, repository.ErrSlotNotFound
	}
	return value, nil
}

func (r *slotRepository) Write(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_slots (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	err := r.cb.Execute(func() error {
		_, err := r.db.ExecContext(ctx, query, key, value, time.Now())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

func (r *slotRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *slotRepository) Close() error {
	return r.db.Close()
}
