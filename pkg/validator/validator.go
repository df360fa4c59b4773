package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
	ValidateField(field string, value interface{}, rules ...string) error
}

// FieldError is a single failed rule.
type FieldError struct {
	Field string
	Rule  string
}

func (e FieldError) Error() string {
	switch e.Rule {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", e.Field)
	case "clock":
		return fmt.Sprintf("%s must be a HH:MM time", e.Field)
	default:
		return fmt.Sprintf("%s failed %s", e.Field, e.Rule)
	}
}

// Errors is the list of failed rules for one Validate call.
type Errors []FieldError

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the names of the failing fields in order.
func (es Errors) Fields() []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Field
	}
	return out
}

type validatorImpl struct {
	v *validator.Validate
}

// New returns a validator with the notblank and clock tags registered.
func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	Register(v)
	return &validatorImpl{v: v}
}

// Register adds the custom tags to an existing engine, e.g. gin's binding
// validator.
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("clock", clock)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

func (v *validatorImpl) Validate(obj interface{}) error {
	if err := v.v.Struct(obj); err != nil {
		return Convert(err)
	}
	return nil
}

func (v *validatorImpl) ValidateField(field string, value interface{}, rules ...string) error {
	if err := v.v.Var(value, strings.Join(rules, ",")); err != nil {
		errs := Convert(err)
		if fe, ok := errs.(Errors); ok {
			for i := range fe {
				fe[i].Field = field
			}
		}
		return errs
	}
	return nil
}

// Convert turns go-playground validation errors, including those returned
// by gin binding, into Errors. Other errors pass through.
func Convert(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

func notBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

func clock(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return clockPattern.MatchString(fl.Field().String())
}
