// Package persistence keeps the appointment collection in a single slot.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/internal/repository"
	apperrors "github.com/jwalitptl/clinic-calendar/pkg/errors"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/metrics"
)

// DefaultKey is the slot name used when none is configured.
const DefaultKey = "appointments"

type Adapter struct {
	slot    repository.SlotStore
	key     string
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewAdapter(slot repository.SlotStore, key string, log *logger.Logger, m *metrics.Metrics) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{slot: slot, key: key, log: log, metrics: m}
}

func (a *Adapter) Key() string {
	return a.key
}

// Load never fails: a missing slot or an undecodable payload yields an empty
// collection.
func (a *Adapter) Load(ctx context.Context) model.AppointmentsByDay {
	start := time.Now()
	defer func() {
		a.metrics.PersistenceLatency.WithLabelValues("load").Observe(time.Since(start).Seconds())
	}()

	data, err := a.slot.Read(ctx, a.key)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			a.log.Debug("no persisted appointments, starting empty", "key", a.key)
			a.metrics.PersistenceLoads.WithLabelValues("missing").Inc()
		} else {
			a.log.Warn(err, "failed to read persisted appointments, starting empty", "key", a.key)
			a.metrics.PersistenceLoads.WithLabelValues("read_error").Inc()
		}
		return model.AppointmentsByDay{}
	}

	snap, err := Decode(data)
	if err != nil {
		a.log.Warn(err, "discarding persisted appointments", "key", a.key)
		a.metrics.PersistenceLoads.WithLabelValues("decode_error").Inc()
		return model.AppointmentsByDay{}
	}

	a.metrics.PersistenceLoads.WithLabelValues("ok").Inc()
	return snap
}

// Save replaces the slot with the full snapshot.
func (a *Adapter) Save(ctx context.Context, snap model.AppointmentsByDay) error {
	start := time.Now()
	defer func() {
		a.metrics.PersistenceLatency.WithLabelValues("save").Observe(time.Since(start).Seconds())
	}()

	data, err := Encode(snap)
	if err != nil {
		a.metrics.PersistenceSaves.WithLabelValues("error").Inc()
		return apperrors.NewWriteFailure(err)
	}
	if err := a.slot.Write(ctx, a.key, data); err != nil {
		a.metrics.PersistenceSaves.WithLabelValues("error").Inc()
		return apperrors.NewWriteFailure(err)
	}
	a.metrics.PersistenceSaves.WithLabelValues("ok").Inc()
	return nil
}

// Encode produces the persisted form: an object keyed by decimal day
// numbers. Empty days are omitted.
func Encode(snap model.AppointmentsByDay) ([]byte, error) {
	out := make(map[string][]model.Appointment, len(snap))
	for day, list := range snap {
		if len(list) == 0 {
			continue
		}
		out[strconv.Itoa(day)] = list
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode appointments: %w", err)
	}
	return b, nil
}

// Decode parses the persisted form. Empty day arrays are dropped; keys that
// are not days of month in plain decimal ("5", not "05" or "+5") are
// rejected, so no two keys can name the same day.
func Decode(data []byte) (model.AppointmentsByDay, error) {
	var raw map[string][]model.Appointment
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewDecode(err)
	}

	snap := make(model.AppointmentsByDay, len(raw))
	for key, list := range raw {
		day, err := strconv.Atoi(key)
		if err != nil || !model.ValidDay(day) || strconv.Itoa(day) != key {
			return nil, apperrors.NewDecode(fmt.Errorf("invalid day key %q", key))
		}
		if len(list) == 0 {
			continue
		}
		snap[day] = list
	}
	return snap, nil
}
