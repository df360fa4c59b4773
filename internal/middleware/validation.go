package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	appvalidator "github.com/jwalitptl/clinic-calendar/pkg/validator"
)

// RegisterValidators adds the application tags (notblank, clock) to gin's
// binding engine and reports field names by their json tag.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		appvalidator.Register(v)
	}
}
