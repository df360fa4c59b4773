package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/internal/repository/memory"
	"github.com/jwalitptl/clinic-calendar/internal/service/appointment"
	"github.com/jwalitptl/clinic-calendar/internal/service/calendar"
	"github.com/jwalitptl/clinic-calendar/internal/service/persistence"
	apperrors "github.com/jwalitptl/clinic-calendar/pkg/errors"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/metrics"
	"github.com/jwalitptl/clinic-calendar/pkg/validator"
)

var today = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

func newController(t *testing.T, seed model.AppointmentsByDay) (*Controller, *persistence.Adapter) {
	t.Helper()
	ctx := context.Background()
	m := metrics.New("test")
	adapter := persistence.NewAdapter(memory.NewSlot(), "", logger.NewNop(), m)
	if seed != nil {
		require.NoError(t, adapter.Save(ctx, seed))
	}
	store := appointment.NewStore(adapter, logger.NewNop(), m)
	builder := calendar.NewBuilder(calendar.WithClock(func() time.Time { return today }))
	return NewController(ctx, store, validator.New(), builder, logger.NewNop()), adapter
}

func TestNewControllerLoadsPersistedState(t *testing.T) {
	seed := model.AppointmentsByDay{4: {{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}}}
	c, _ := newController(t, seed)

	assert.Equal(t, seed, c.Snapshot())
	assert.Equal(t, FormClosed, c.Mode())
	assert.Equal(t, model.FilterAll, c.Filter().Kind)
}

func TestCreateFlow(t *testing.T) {
	ctx := context.Background()
	c, adapter := newController(t, nil)

	require.NoError(t, c.OpenCreateForm(5))
	assert.Equal(t, FormCreating, c.Mode())

	require.NoError(t, c.Submit(ctx, "Jo", "Dr. Lee", "09:00"))
	assert.Equal(t, FormClosed, c.Mode())
	assert.Nil(t, c.State().SelectedDay)

	want := model.AppointmentsByDay{5: {{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}}}
	assert.Equal(t, want, c.Snapshot())
	assert.Equal(t, want, adapter.Load(ctx))
}

func TestEditFlow(t *testing.T) {
	ctx := context.Background()
	jo := model.Appointment{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}
	ann := model.Appointment{Patient: "Ann", Doctor: "Dr. Kim", Time: "10:00"}
	c, _ := newController(t, model.AppointmentsByDay{5: {jo, ann}})

	require.NoError(t, c.OpenEditForm(5, 1, ann))
	assert.Equal(t, FormEditing, c.Mode())
	assert.Equal(t, ann, c.State().Draft)
	assert.Equal(t, &model.EditTarget{Day: 5, Index: 1}, c.State().EditTarget)

	require.NoError(t, c.Submit(ctx, "Ann", "Dr. Kim", "10:30"))
	assert.Equal(t, FormClosed, c.Mode())
	assert.Equal(t, []model.Appointment{jo, {Patient: "Ann", Doctor: "Dr. Kim", Time: "10:30"}}, c.Snapshot()[5])
}

func TestOpenEditFormRejectsMissingTarget(t *testing.T) {
	c, _ := newController(t, model.AppointmentsByDay{5: {{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}}})

	err := c.OpenEditForm(5, 1, model.Appointment{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrIndexOutOfRange))
	err = c.OpenEditForm(6, 0, model.Appointment{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrIndexOutOfRange))
	assert.Equal(t, FormClosed, c.Mode())
}

func TestSubmitInvalidFieldsLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	seed := model.AppointmentsByDay{5: {{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}}}

	for _, fields := range [][3]string{
		{"", "Dr. Lee", "09:00"},
		{"Ann", "   ", "09:00"},
		{"Ann", "Dr. Lee", ""},
		{"Ann", "Dr. Lee", "9am"},
		{"Ann", "Dr. Lee", "24:00"},
	} {
		c, _ := newController(t, seed)
		require.NoError(t, c.OpenCreateForm(5))
		before := c.State()

		err := c.Submit(ctx, fields[0], fields[1], fields[2])
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrValidation))
		assert.Equal(t, before, c.State())
		assert.Equal(t, FormCreating, c.Mode())

		c.CloseForm()
		require.NoError(t, c.OpenEditForm(5, 0, seed[5][0]))
		before = c.State()
		require.Error(t, c.Submit(ctx, fields[0], fields[1], fields[2]))
		assert.Equal(t, before, c.State())
		assert.Equal(t, FormEditing, c.Mode())
	}
}

func TestSubmitWhileClosed(t *testing.T) {
	c, _ := newController(t, nil)
	err := c.Submit(context.Background(), "Jo", "Dr. Lee", "09:00")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidState))
	assert.Empty(t, c.Snapshot())
}

func TestOpenFormRequiresClosedForm(t *testing.T) {
	ctx := context.Background()
	jo := model.Appointment{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}
	c, _ := newController(t, model.AppointmentsByDay{5: {jo}})

	require.NoError(t, c.OpenEditForm(5, 0, jo))
	err := c.OpenCreateForm(7)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidState))
	err = c.OpenEditForm(5, 0, jo)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidState))
	assert.Equal(t, FormEditing, c.Mode())
	assert.Equal(t, &model.EditTarget{Day: 5, Index: 0}, c.State().EditTarget)

	// The open edit still lands on its own entry.
	require.NoError(t, c.Submit(ctx, "Jo", "Dr. Kim", "09:30"))
	assert.Equal(t, model.AppointmentsByDay{5: {{Patient: "Jo", Doctor: "Dr. Kim", Time: "09:30"}}}, c.Snapshot())

	require.NoError(t, c.OpenCreateForm(7))
	err = c.OpenEditForm(5, 0, jo)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidState))
	err = c.Dispatch(ctx, Intent{Kind: IntentOpenCreate, Day: 9})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidState))
	assert.Equal(t, 7, *c.State().SelectedDay)

	c.CloseForm()
	require.NoError(t, c.OpenCreateForm(9))
}

func TestCloseFormDoesNotMutate(t *testing.T) {
	c, _ := newController(t, nil)
	require.NoError(t, c.OpenCreateForm(9))
	c.CloseForm()
	assert.Equal(t, FormClosed, c.Mode())
	assert.Empty(t, c.Snapshot())
}

func TestOpenCreateFormRejectsBadDay(t *testing.T) {
	c, _ := newController(t, nil)
	assert.True(t, apperrors.HasCode(c.OpenCreateForm(0), apperrors.ErrValidation))
	assert.True(t, apperrors.HasCode(c.OpenCreateForm(32), apperrors.ErrValidation))
	assert.Equal(t, FormClosed, c.Mode())
}

func TestDeleteEntry(t *testing.T) {
	ctx := context.Background()
	jo := model.Appointment{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}
	ann := model.Appointment{Patient: "Ann", Doctor: "Dr. Lee", Time: "10:00"}
	c, _ := newController(t, model.AppointmentsByDay{5: {jo, ann}, 7: {jo}})

	// Creating on another day survives a delete.
	require.NoError(t, c.OpenCreateForm(7))
	require.NoError(t, c.DeleteEntry(ctx, 5, 0))
	assert.Equal(t, FormCreating, c.Mode())
	assert.Equal(t, []model.Appointment{ann}, c.Snapshot()[5])

	// An edit target on the mutated day is discarded.
	c.CloseForm()
	require.NoError(t, c.OpenEditForm(5, 0, ann))
	require.NoError(t, c.DeleteEntry(ctx, 5, 0))
	assert.Equal(t, FormClosed, c.Mode())
	assert.NotContains(t, c.Snapshot(), 5)

	err := c.DeleteEntry(ctx, 5, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrIndexOutOfRange))
}

func TestDayAndMonthViewsApplyFilter(t *testing.T) {
	jo := model.Appointment{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}
	ann := model.Appointment{Patient: "Ann", Doctor: "Dr. Kim", Time: "10:00"}
	c, _ := newController(t, model.AppointmentsByDay{18: {jo, ann}})

	assert.Len(t, c.Day(18), 2)

	require.NoError(t, c.SetFilter(model.FilterCriteria{Kind: model.FilterDoctor, Value: "KIM"}))
	assert.Equal(t, []model.IndexedAppointment{{Index: 1, Appointment: ann}}, c.Day(18))

	anchor := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	views := c.Month(anchor)
	require.Len(t, views, 4+31)
	for _, v := range views[:4] {
		assert.True(t, v.Empty)
	}
	day18 := views[4+17]
	assert.Equal(t, 18, day18.Cell.Day)
	assert.True(t, day18.Today)
	assert.Len(t, day18.Appointments, 1)
	assert.False(t, views[4].Today)
}

func TestSetFilterRejectsUnknownKind(t *testing.T) {
	c, _ := newController(t, nil)
	err := c.SetFilter(model.FilterCriteria{Kind: "time"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrValidation))
	assert.Equal(t, model.FilterAll, c.Filter().Kind)
}

func TestStateIsACopy(t *testing.T) {
	c, _ := newController(t, nil)
	require.NoError(t, c.OpenCreateForm(3))
	st := c.State()
	*st.SelectedDay = 20
	assert.Equal(t, 3, *c.State().SelectedDay)
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, nil)

	require.NoError(t, c.Dispatch(ctx, Intent{Kind: IntentOpenCreate, Day: 12}))
	require.NoError(t, c.Dispatch(ctx, Intent{Kind: IntentSubmit, Appointment: model.Appointment{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}}))
	require.Len(t, c.Snapshot()[12], 1)

	require.NoError(t, c.Dispatch(ctx, Intent{Kind: IntentOpenEdit, Day: 12, Index: 0}))
	assert.Equal(t, "Jo", c.Form().Draft.Patient)
	require.NoError(t, c.Dispatch(ctx, Intent{Kind: IntentClose}))
	assert.Equal(t, FormClosed, c.Form().Mode)
	assert.Nil(t, c.Form().Draft)

	err := c.Dispatch(ctx, Intent{Kind: IntentOpenEdit, Day: 12, Index: 3})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrIndexOutOfRange))

	require.NoError(t, c.Dispatch(ctx, Intent{Kind: IntentFilterChanged, Filter: model.FilterCriteria{Kind: model.FilterPatient, Value: "x"}}))
	assert.Empty(t, c.Day(12))

	require.NoError(t, c.Dispatch(ctx, Intent{Kind: IntentDelete, Day: 12, Index: 0}))
	assert.Empty(t, c.Snapshot())

	err = c.Dispatch(ctx, Intent{Kind: "reschedule"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestMonthView(t *testing.T) {
	c, _ := newController(t, model.AppointmentsByDay{2: {{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}}})

	view := c.MonthView(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-10", view.Month)
	assert.Equal(t, 4, view.Offset)
	assert.Equal(t, []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}, view.Weekdays)
	assert.Equal(t, model.FilterAll, view.Filter.Kind)
	require.Len(t, view.Days, 35)
	assert.Len(t, view.Days[5].Appointments, 1)
}
