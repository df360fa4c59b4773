package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the error envelope written by middleware.
type ErrorResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func newErrorResponse(c *gin.Context, message string) ErrorResponse {
	return ErrorResponse{
		Status:    "error",
		Message:   message,
		RequestID: c.GetString(ContextRequestID),
	}
}

// ErrorHandler logs errors attached with c.Error. Handlers normally answer
// themselves; a response is only written when nothing was.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Interface("meta", e.Meta).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		status := http.StatusInternalServerError
		if err, ok := lastErr.Err.(interface{ StatusCode() int }); ok {
			status = err.StatusCode()
		}
		message := http.StatusText(status)
		if status < http.StatusInternalServerError {
			message = lastErr.Error()
		}
		c.JSON(status, newErrorResponse(c, message))
	}
}
