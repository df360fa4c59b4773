// Package redis stores slots as plain Redis string values.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/clinic-calendar/internal/repository"
	"github.com/jwalitptl/clinic-calendar/pkg/circuitbreaker"
)

type Config struct {
	URL          string
	KeyPrefix    string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

type Slot struct {
	client *redis.Client
	cb     *circuitbreaker.CircuitBreaker
	prefix string
}

func NewSlot(ctx context.Context, config Config) (*Slot, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Configure connection pooling
	opts.MaxRetries = config.MaxRetries
	opts.MinRetryBackoff = config.RetryBackoff
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Slot{
		client: client,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "redis-slot",
			MaxFailures: 5,
			Interval:    10 * time.Second,
			Timeout:     5 * time.Second,
		}),
		prefix: config.KeyPrefix,
	}, nil
}

func (s *Slot) key(k string) string {
	return s.prefix + k
}

func (s *Slot) Read(ctx context.Context, key string) ([]byte, error) {
	var (
		val   []byte
		found = true
	)
	err := s.cb.Execute(func() error {
		b, err := s.client.Get(ctx, s.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		val = b
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	if !found {
		return nil, repository.ErrSlotNotFound
	}
	return val, nil
}

func (s *Slot) Write(ctx context.Context, key string, value []byte) error {
	err := s.cb.Execute(func() error {
		return s.client.Set(ctx, s.key(key), value, 0).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Slot) Close() error {
	return s.client.Close()
}
