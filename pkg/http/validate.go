package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

// wireTags are checked in order to name a field the way the client sent it.
var wireTags = []string{"query", "param", "json"}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range wireTags {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// RegisterValidation adds a custom validation tag. msg is used as the
// field error message, with %s replaced by the field name.
func RegisterValidation(tag, msg string, fn validator.Func) error {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("register validation %s: %w", tag, err)
	}
	customMessages[tag] = msg
	return nil
}

var customMessages = map[string]string{}

// ReadAndValidateRequest binds path, query and body into req, applies
// `default` tags and validates. Returns nil when req is usable.
func ReadAndValidateRequest(c echo.Context, req interface{}) []FieldError {
	if err := c.Bind(req); err != nil {
		return []FieldError{bindError(err)}
	}
	if err := defaults.Set(req); err != nil {
		return []FieldError{{Code: "ERR_DEFAULTS", Message: err.Error()}}
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return fieldErrors(err)
	}
	return nil
}

func bindError(err error) FieldError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return FieldError{Code: "ERR_BIND", Message: fmt.Sprintf("%v", he.Message)}
	}
	return FieldError{Code: "ERR_BIND", Message: err.Error()}
}

func fieldErrors(err error) []FieldError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []FieldError{{Code: "ERR_INVALID", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Param:   fe.Param(),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	if msg, ok := customMessages[fe.Tag()]; ok {
		return fmt.Sprintf(msg, field)
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
