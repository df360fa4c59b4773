// Package appointment owns the day-indexed appointment collection. Every
// operation takes a snapshot and returns a new one; inputs are never
// modified.
package appointment

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-calendar/internal/model"
	apperrors "github.com/jwalitptl/clinic-calendar/pkg/errors"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/metrics"
)

// Persister is the durable side of the store.
type Persister interface {
	Load(ctx context.Context) model.AppointmentsByDay
	Save(ctx context.Context, snap model.AppointmentsByDay) error
}

type Store struct {
	persister Persister
	log       *logger.Logger
	metrics   *metrics.Metrics
}

func NewStore(persister Persister, log *logger.Logger, m *metrics.Metrics) *Store {
	return &Store{
		persister: persister,
		log:       log,
		metrics:   m,
	}
}

// Load returns the persisted collection, or an empty one.
func (s *Store) Load(ctx context.Context) model.AppointmentsByDay {
	snap := s.persister.Load(ctx)
	if snap == nil {
		snap = model.AppointmentsByDay{}
	}
	s.metrics.Appointments.Set(float64(snap.Count()))
	return snap
}

// Add appends appt to day, creating the day if needed.
func (s *Store) Add(ctx context.Context, snap model.AppointmentsByDay, day int, appt model.Appointment) (model.AppointmentsByDay, error) {
	if !model.ValidDay(day) {
		s.metrics.StoreMutations.WithLabelValues("add", "rejected").Inc()
		return snap, apperrors.NewValidation(fmt.Sprintf("day must be between %d and %d", model.MinDay, model.MaxDay), nil)
	}

	current := snap[day]
	list := make([]model.Appointment, len(current), len(current)+1)
	copy(list, current)
	list = append(list, appt)

	next := snap.Clone()
	next[day] = list
	return s.commit(ctx, "add", next), nil
}

// Update replaces the entry at index of day.
func (s *Store) Update(ctx context.Context, snap model.AppointmentsByDay, day, index int, appt model.Appointment) (model.AppointmentsByDay, error) {
	current := snap[day]
	if index < 0 || index >= len(current) {
		s.metrics.StoreMutations.WithLabelValues("update", "rejected").Inc()
		return snap, apperrors.NewIndexOutOfRange(day, index)
	}

	list := make([]model.Appointment, len(current))
	copy(list, current)
	list[index] = appt

	next := snap.Clone()
	next[day] = list
	return s.commit(ctx, "update", next), nil
}

// Remove deletes the entry at index of day. The day key is dropped with its
// last entry.
func (s *Store) Remove(ctx context.Context, snap model.AppointmentsByDay, day, index int) (model.AppointmentsByDay, error) {
	current := snap[day]
	if index < 0 || index >= len(current) {
		s.metrics.StoreMutations.WithLabelValues("remove", "rejected").Inc()
		return snap, apperrors.NewIndexOutOfRange(day, index)
	}

	next := snap.Clone()
	if len(current) == 1 {
		delete(next, day)
	} else {
		list := make([]model.Appointment, 0, len(current)-1)
		list = append(list, current[:index]...)
		list = append(list, current[index+1:]...)
		next[day] = list
	}
	return s.commit(ctx, "remove", next), nil
}

// commit persists next before handing it back. A failed save keeps next as
// the session state.
func (s *Store) commit(ctx context.Context, op string, next model.AppointmentsByDay) model.AppointmentsByDay {
	status := "ok"
	if err := s.persister.Save(ctx, next); err != nil {
		status = "unsaved"
		s.log.Error(err, "appointments kept in memory only", "operation", op)
	}
	s.metrics.StoreMutations.WithLabelValues(op, status).Inc()
	s.metrics.Appointments.Set(float64(next.Count()))
	return next
}

// Get returns a copy of day's list; absent days yield an empty list.
func Get(snap model.AppointmentsByDay, day int) []model.Appointment {
	current := snap[day]
	list := make([]model.Appointment, len(current))
	copy(list, current)
	return list
}
