package calendar

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-calendar/internal/handler"
	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/internal/service/calendar"
	"github.com/jwalitptl/clinic-calendar/internal/service/export"
	"github.com/jwalitptl/clinic-calendar/internal/service/scheduling"
	"github.com/jwalitptl/clinic-calendar/pkg/errors"
	"github.com/jwalitptl/clinic-calendar/pkg/httputil"
)

const contentTypeICS = "text/calendar; charset=utf-8"

type Handler struct {
	session  *handler.Session
	builder  *calendar.Builder
	exporter *export.Exporter
}

func NewHandler(session *handler.Session, builder *calendar.Builder, exporter *export.Exporter) *Handler {
	return &Handler{
		session:  session,
		builder:  builder,
		exporter: exporter,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cal := r.Group("/calendar")
	{
		cal.GET("", h.GetMonth)
		cal.GET("/export.ics", h.ExportMonth)
	}
}

// GetMonth renders ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) GetMonth(c *gin.Context) {
	anchor, ok := h.anchor(c)
	if !ok {
		return
	}

	var view model.MonthView
	_ = h.session.Do(func(ctrl *scheduling.Controller) error {
		view = ctrl.MonthView(anchor)
		return nil
	})
	httputil.RespondWithSuccess(c, view)
}

// ExportMonth serves the unfiltered month as an iCalendar attachment.
func (h *Handler) ExportMonth(c *gin.Context) {
	anchor, ok := h.anchor(c)
	if !ok {
		return
	}

	var snap model.AppointmentsByDay
	_ = h.session.Do(func(ctrl *scheduling.Controller) error {
		snap = ctrl.Snapshot()
		return nil
	})

	var buf bytes.Buffer
	if err := h.exporter.Month(&buf, anchor, snap); err != nil {
		httputil.RespondWithError(c, errors.NewInternal(fmt.Errorf("failed to export month: %w", err)))
		return
	}

	filename := fmt.Sprintf("appointments-%s.ics", anchor.Format(calendar.MonthLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentTypeICS, buf.Bytes())
}

func (h *Handler) anchor(c *gin.Context) (time.Time, bool) {
	anchor, err := calendar.ParseMonth(c.Query("month"), h.builder.Now())
	if err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return time.Time{}, false
	}
	return anchor, true
}
