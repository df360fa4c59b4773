package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-calendar/internal/handler"
	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/internal/repository/memory"
	"github.com/jwalitptl/clinic-calendar/internal/service/appointment"
	"github.com/jwalitptl/clinic-calendar/internal/service/calendar"
	"github.com/jwalitptl/clinic-calendar/internal/service/export"
	"github.com/jwalitptl/clinic-calendar/internal/service/persistence"
	"github.com/jwalitptl/clinic-calendar/internal/service/scheduling"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/metrics"
	"github.com/jwalitptl/clinic-calendar/pkg/validator"
)

var now = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

func newRouter(t *testing.T, seed model.AppointmentsByDay) (*gin.Engine, *scheduling.Controller) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	m := metrics.New("test")
	adapter := persistence.NewAdapter(memory.NewSlot(), "", logger.NewNop(), m)
	require.NoError(t, adapter.Save(ctx, seed))
	store := appointment.NewStore(adapter, logger.NewNop(), m)
	clock := func() time.Time { return now }
	builder := calendar.NewBuilder(calendar.WithClock(clock))
	ctrl := scheduling.NewController(ctx, store, validator.New(), builder, logger.NewNop())

	r := gin.New()
	NewHandler(handler.NewSession(ctrl), builder, export.NewExporter(0, clock)).RegisterRoutes(r.Group(""))
	return r, ctrl
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetMonth(t *testing.T) {
	jo := model.Appointment{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}
	r, ctrl := newRouter(t, model.AppointmentsByDay{2: {jo}, 18: {jo}})
	require.NoError(t, ctrl.SetFilter(model.FilterCriteria{Kind: model.FilterDoctor, Value: "lee"}))

	w := get(r, "/calendar")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data model.MonthView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	view := body.Data

	assert.Equal(t, "2026-10", view.Month)
	assert.Equal(t, 4, view.Offset)
	assert.Equal(t, "Sunday", view.Weekdays[0])
	assert.Equal(t, model.FilterDoctor, view.Filter.Kind)
	require.Len(t, view.Days, 35)
	assert.True(t, view.Days[0].Empty)
	assert.Len(t, view.Days[4+1].Appointments, 1)
	assert.True(t, view.Days[4+17].Today)
}

func TestGetMonthAnchor(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := get(r, "/calendar?month=2026-02")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"month":"2026-02"`)
	assert.Contains(t, w.Body.String(), `"offset":0`)

	w = get(r, "/calendar?month=February")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportMonth(t *testing.T) {
	r, _ := newRouter(t, model.AppointmentsByDay{
		18: {{Patient: "Jo", Doctor: "Dr. Lee", Time: "09:00"}},
	})

	w := get(r, "/calendar/export.ics?month=2026-10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeICS, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "appointments-2026-10.ics")
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, w.Body.String(), "SUMMARY:Jo with Dr. Lee")
	assert.Contains(t, w.Body.String(), "DTSTART:20261018T090000")
}
