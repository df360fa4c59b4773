package repository

import (
	"context"
	"errors"
)

// ErrSlotNotFound is returned by Read when nothing was ever written under key.
var ErrSlotNotFound = errors.New("slot not found")

// All repository interfaces in one file
type (
	// SlotStore is a durable key-value store holding whole documents under a
	// name. Write replaces any prior value.
	SlotStore interface {
		Read(ctx context.Context, key string) ([]byte, error)
		Write(ctx context.Context, key string, value []byte) error
		Close() error
	}

	// SlotPinger is implemented by remote slots that can report readiness.
	SlotPinger interface {
		Ping(ctx context.Context) error
	}
)
