// Package scheduling turns user intents into appointment store mutations and
// tracks the single appointment form.
package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/internal/service/appointment"
	"github.com/jwalitptl/clinic-calendar/internal/service/calendar"
	"github.com/jwalitptl/clinic-calendar/internal/service/filter"
	apperrors "github.com/jwalitptl/clinic-calendar/pkg/errors"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/validator"
)

// Store is the subset of appointment.Store the controller drives.
type Store interface {
	Load(ctx context.Context) model.AppointmentsByDay
	Add(ctx context.Context, snap model.AppointmentsByDay, day int, appt model.Appointment) (model.AppointmentsByDay, error)
	Update(ctx context.Context, snap model.AppointmentsByDay, day, index int, appt model.Appointment) (model.AppointmentsByDay, error)
	Remove(ctx context.Context, snap model.AppointmentsByDay, day, index int) (model.AppointmentsByDay, error)
}

type FormMode string

const (
	FormClosed   FormMode = "closed"
	FormCreating FormMode = "creating"
	FormEditing  FormMode = "editing"
)

// State is everything the controller remembers between intents.
type State struct {
	Snapshot    model.AppointmentsByDay
	SelectedDay *int
	EditTarget  *model.EditTarget
	Filter      model.FilterCriteria
	// Draft holds the values the form was opened with.
	Draft model.Appointment
}

// Form is the JSON view of the form part of State.
type Form struct {
	Mode       FormMode           `json:"mode"`
	Day        *int               `json:"day,omitempty"`
	EditTarget *model.EditTarget  `json:"edit_target,omitempty"`
	Draft      *model.Appointment `json:"draft,omitempty"`
}

type Controller struct {
	store     Store
	validator validator.Validator
	builder   *calendar.Builder
	log       *logger.Logger
	state     State
}

// NewController loads the persisted collection and starts with the form
// closed and no filter.
func NewController(ctx context.Context, store Store, v validator.Validator, builder *calendar.Builder, log *logger.Logger) *Controller {
	c := &Controller{
		store:     store,
		validator: v,
		builder:   builder,
		log:       log,
	}
	c.state.Snapshot = store.Load(ctx)
	c.state.Filter = model.FilterCriteria{Kind: model.FilterAll}
	log.Info("appointments loaded", "days", len(c.state.Snapshot), "appointments", c.state.Snapshot.Count())
	return c
}

func (c *Controller) Mode() FormMode {
	switch {
	case c.state.EditTarget != nil:
		return FormEditing
	case c.state.SelectedDay != nil:
		return FormCreating
	default:
		return FormClosed
	}
}

// OpenCreateForm opens an empty form for day. Only one form may be open at a
// time; it must be submitted or closed first.
func (c *Controller) OpenCreateForm(day int) error {
	if err := c.requireClosed(); err != nil {
		return err
	}
	if !model.ValidDay(day) {
		return apperrors.NewValidation(fmt.Sprintf("day must be between %d and %d", model.MinDay, model.MaxDay), nil)
	}
	c.state.SelectedDay = &day
	c.state.EditTarget = nil
	c.state.Draft = model.Appointment{}
	return nil
}

// OpenEditForm opens the form on an existing entry, pre-filled with appt.
// The target must exist in the current snapshot and no form may be open.
func (c *Controller) OpenEditForm(day, index int, appt model.Appointment) error {
	if err := c.requireClosed(); err != nil {
		return err
	}
	if index < 0 || index >= len(c.state.Snapshot[day]) {
		return apperrors.NewIndexOutOfRange(day, index)
	}
	c.state.SelectedDay = &day
	c.state.EditTarget = &model.EditTarget{Day: day, Index: index}
	c.state.Draft = appt
	return nil
}

func (c *Controller) requireClosed() error {
	if mode := c.Mode(); mode != FormClosed {
		return apperrors.NewInvalidState(fmt.Sprintf("an appointment form is already open (%s)", mode))
	}
	return nil
}

// Submit stores the form values and closes the form. Blank fields or a time
// that is not HH:MM leave both the snapshot and the form untouched.
func (c *Controller) Submit(ctx context.Context, patient, doctor, at string) error {
	mode := c.Mode()
	if mode == FormClosed {
		return apperrors.NewInvalidState("no appointment form is open")
	}

	appt := model.Appointment{
		Patient: strings.TrimSpace(patient),
		Doctor:  strings.TrimSpace(doctor),
		Time:    strings.TrimSpace(at),
	}
	if err := c.validator.Validate(appt); err != nil {
		return apperrors.NewValidation("invalid appointment", err)
	}

	var (
		next model.AppointmentsByDay
		err  error
	)
	if mode == FormEditing {
		target := *c.state.EditTarget
		next, err = c.store.Update(ctx, c.state.Snapshot, target.Day, target.Index, appt)
	} else {
		next, err = c.store.Add(ctx, c.state.Snapshot, *c.state.SelectedDay, appt)
	}
	if err != nil {
		return fmt.Errorf("failed to submit appointment: %w", err)
	}

	c.state.Snapshot = next
	c.CloseForm()
	return nil
}

// CloseForm cancels the form without touching the store.
func (c *Controller) CloseForm() {
	c.state.SelectedDay = nil
	c.state.EditTarget = nil
	c.state.Draft = model.Appointment{}
}

// DeleteEntry removes an entry regardless of the form. An edit target on the
// same day no longer addresses a known entry, so that form is closed.
func (c *Controller) DeleteEntry(ctx context.Context, day, index int) error {
	next, err := c.store.Remove(ctx, c.state.Snapshot, day, index)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	c.state.Snapshot = next
	if c.state.EditTarget != nil && c.state.EditTarget.Day == day {
		c.log.Debug("edit target discarded after delete", "day", day, "index", index)
		c.CloseForm()
	}
	return nil
}

// SetFilter replaces the display filter.
func (c *Controller) SetFilter(criteria model.FilterCriteria) error {
	if err := criteria.Validate(); err != nil {
		return apperrors.NewValidation(err.Error(), err)
	}
	c.state.Filter = criteria
	return nil
}

// Day returns day's entries that pass the current filter, with their
// positions in the unfiltered list.
func (c *Controller) Day(day int) []model.IndexedAppointment {
	return filter.FilterIndexed(appointment.Get(c.state.Snapshot, day), c.state.Filter)
}

// Month joins the grid of anchor's month with the filtered day lists.
func (c *Controller) Month(anchor time.Time) []model.DayView {
	cells := c.builder.Build(anchor)
	views := make([]model.DayView, 0, len(cells))
	for _, cell := range cells {
		if cell.IsEmpty() {
			views = append(views, model.DayView{Cell: cell, Empty: true})
			continue
		}
		views = append(views, model.DayView{
			Cell:         cell,
			Today:        c.builder.IsToday(cell.Day),
			Appointments: c.Day(cell.Day),
		})
	}
	return views
}

// MonthView is Month with the column headers and filter a renderer needs.
func (c *Controller) MonthView(anchor time.Time) model.MonthView {
	view := model.MonthView{
		Month:  anchor.Format(calendar.MonthLayout),
		Offset: c.builder.WeekdayOffset(anchor),
		Filter: c.state.Filter,
		Days:   c.Month(anchor),
	}
	for _, d := range c.builder.Weekdays() {
		view.Weekdays = append(view.Weekdays, d.String())
	}
	return view
}

// Snapshot returns the current collection. Callers must not modify it.
func (c *Controller) Snapshot() model.AppointmentsByDay {
	return c.state.Snapshot.Clone()
}

func (c *Controller) Filter() model.FilterCriteria {
	return c.state.Filter
}

// State returns a copy of the session state.
func (c *Controller) State() State {
	s := State{
		Snapshot: c.state.Snapshot.Clone(),
		Filter:   c.state.Filter,
		Draft:    c.state.Draft,
	}
	if c.state.SelectedDay != nil {
		day := *c.state.SelectedDay
		s.SelectedDay = &day
	}
	if c.state.EditTarget != nil {
		target := *c.state.EditTarget
		s.EditTarget = &target
	}
	return s
}

// Form describes the open form, if any.
func (c *Controller) Form() Form {
	st := c.State()
	f := Form{Mode: c.Mode(), Day: st.SelectedDay, EditTarget: st.EditTarget}
	if f.Mode != FormClosed {
		f.Draft = &st.Draft
	}
	return f
}
