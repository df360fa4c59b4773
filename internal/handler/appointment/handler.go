package appointment

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-calendar/internal/handler"
	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/internal/service/scheduling"
	"github.com/jwalitptl/clinic-calendar/pkg/httputil"
)

type Handler struct {
	session   *handler.Session
	directory model.Directory
}

func NewHandler(session *handler.Session, directory model.Directory) *Handler {
	if directory.Patients == nil {
		directory.Patients = []string{}
	}
	if directory.Doctors == nil {
		directory.Doctors = []string{}
	}
	return &Handler{session: session, directory: directory}
}

// DayResponse lists the visible entries of one day.
type DayResponse struct {
	Day          int                        `json:"day"`
	Appointments []model.IndexedAppointment `json:"appointments"`
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/:day", h.GetDay)
		appointments.DELETE("/:day/:index", h.DeleteEntry)
	}

	form := r.Group("/form")
	{
		form.GET("", h.GetForm)
		form.POST("/create", h.OpenCreate)
		form.POST("/edit", h.OpenEdit)
		form.POST("/submit", h.Submit)
		form.POST("/close", h.Close)
	}

	r.GET("/filter", h.GetFilter)
	r.PUT("/filter", h.SetFilter)
	r.POST("/intents", h.Dispatch)
	r.GET("/directory", h.GetDirectory)
}

func (h *Handler) GetDay(c *gin.Context) {
	day, ok := intParam(c, "day")
	if !ok {
		return
	}

	var resp DayResponse
	_ = h.session.Do(func(ctrl *scheduling.Controller) error {
		resp = DayResponse{Day: day, Appointments: ctrl.Day(day)}
		return nil
	})
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	day, ok := intParam(c, "day")
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}

	var resp DayResponse
	err := h.session.Do(func(ctrl *scheduling.Controller) error {
		in := scheduling.Intent{Kind: scheduling.IntentDelete, Day: day, Index: index}
		if err := ctrl.Dispatch(c.Request.Context(), in); err != nil {
			return err
		}
		resp = DayResponse{Day: day, Appointments: ctrl.Day(day)}
		return nil
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) GetForm(c *gin.Context) {
	h.respondForm(c, nil)
}

func (h *Handler) OpenCreate(c *gin.Context) {
	var req model.OpenFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	h.respondForm(c, &scheduling.Intent{Kind: scheduling.IntentOpenCreate, Day: req.Day})
}

func (h *Handler) OpenEdit(c *gin.Context) {
	var req model.OpenFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	if req.Index == nil {
		httputil.RespondWithBadRequest(c, "index is required to edit an appointment")
		return
	}
	h.respondForm(c, &scheduling.Intent{Kind: scheduling.IntentOpenEdit, Day: req.Day, Index: *req.Index})
}

func (h *Handler) Submit(c *gin.Context) {
	var req model.SubmitAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	var resp DayResponse
	err := h.session.Do(func(ctrl *scheduling.Controller) error {
		form := ctrl.Form()
		in := scheduling.Intent{
			Kind:        scheduling.IntentSubmit,
			Appointment: model.Appointment{Patient: req.Patient, Doctor: req.Doctor, Time: req.Time},
		}
		if err := ctrl.Dispatch(c.Request.Context(), in); err != nil {
			return err
		}
		resp = DayResponse{Day: *form.Day, Appointments: ctrl.Day(*form.Day)}
		return nil
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Close(c *gin.Context) {
	h.respondForm(c, &scheduling.Intent{Kind: scheduling.IntentClose})
}

func (h *Handler) GetFilter(c *gin.Context) {
	var f model.FilterCriteria
	_ = h.session.Do(func(ctrl *scheduling.Controller) error {
		f = ctrl.Filter()
		return nil
	})
	httputil.RespondWithSuccess(c, f)
}

func (h *Handler) SetFilter(c *gin.Context) {
	var req model.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	var f model.FilterCriteria
	err := h.session.Do(func(ctrl *scheduling.Controller) error {
		in := scheduling.Intent{
			Kind:   scheduling.IntentFilterChanged,
			Filter: model.FilterCriteria{Kind: req.Kind, Value: req.Value},
		}
		if err := ctrl.Dispatch(c.Request.Context(), in); err != nil {
			return err
		}
		f = ctrl.Filter()
		return nil
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, f)
}

// Dispatch accepts any intent as JSON and answers with the resulting form.
func (h *Handler) Dispatch(c *gin.Context) {
	var in scheduling.Intent
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	h.respondForm(c, &in)
}

func (h *Handler) GetDirectory(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.directory)
}

// respondForm applies in, if any, and writes the form state.
func (h *Handler) respondForm(c *gin.Context, in *scheduling.Intent) {
	var form scheduling.Form
	err := h.session.Do(func(ctrl *scheduling.Controller) error {
		if in != nil {
			if err := ctrl.Dispatch(c.Request.Context(), *in); err != nil {
				return err
			}
		}
		form = ctrl.Form()
		return nil
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, form)
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}
