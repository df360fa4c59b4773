package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/internal/service/auth"
	"github.com/jwalitptl/clinic-calendar/pkg/httputil"
)

// Authenticator is satisfied by auth.Service.
type Authenticator interface {
	Login(ctx context.Context, client, username, password string) error
}

type Handler struct {
	svc Authenticator
}

func NewHandler(svc Authenticator) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	err := h.svc.Login(c.Request.Context(), c.ClientIP(), req.Username, req.Password)
	switch {
	case err == nil:
		httputil.RespondWithSuccess(c, model.LoginResponse{Authenticated: true})
	case errors.Is(err, auth.ErrLocked):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.Response{
			Status:  "error",
			Message: err.Error(),
			Data:    model.LoginResponse{},
		})
	case errors.Is(err, model.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.Response{
			Status:  "error",
			Message: err.Error(),
			Data:    model.LoginResponse{},
		})
	default:
		httputil.RespondWithError(c, err)
	}
}
