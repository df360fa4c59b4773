package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jwalitptl/clinic-calendar/pkg/errors"
	"github.com/jwalitptl/clinic-calendar/pkg/validator"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Fields  []string    `json:"fields,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithStatus sends a success response with an explicit status code.
func RespondWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"
	var fields []string

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		statusCode = appErr.StatusCode()
		message = appErr.Error()
		if statusCode == http.StatusInternalServerError {
			message = appErr.Message
		}
	}

	var verrs validator.Errors
	if stderrors.As(err, &verrs) {
		fields = verrs.Fields()
	}

	if statusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(statusCode, Response{
		Status:  "error",
		Message: message,
		Fields:  fields,
	})
}

// RespondWithBadRequest sends a 400 for malformed input.
func RespondWithBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Status:  "error",
		Message: message,
	})
}

// RespondWithBindError answers a failed ShouldBind. Rule violations become
// a 422 listing the offending fields; malformed bodies are a 400.
func RespondWithBindError(c *gin.Context, err error) {
	var verrs validator.Errors
	if stderrors.As(validator.Convert(err), &verrs) {
		RespondWithError(c, errors.NewValidation("invalid request", verrs))
		return
	}
	RespondWithBadRequest(c, "malformed request body")
}
