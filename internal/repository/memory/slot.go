// Package memory keeps slots for the lifetime of the process only.
package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-calendar/internal/repository"
)

type Slot struct {
	c *cache.Cache
}

func NewSlot() *Slot {
	return &Slot{c: cache.New(cache.NoExpiration, 0)}
}

func (s *Slot) Read(_ context.Context, key string) ([]byte, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	b := v.([]byte)
	return append([]byte(nil), b...), nil
}

func (s *Slot) Write(_ context.Context, key string, value []byte) error {
	s.c.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}

func (s *Slot) Close() error {
	s.c.Flush()
	return nil
}
