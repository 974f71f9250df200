package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/testdeck/console/internal/core/domain"
)

// requestTags are consulted in order to name a field in error messages.
var requestTags = []string{"json", "query", "form"}

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

// NewValidator builds the validator used for every bound request.
func NewValidator() *RequestValidator {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic("handler: register notblank: " + err.Error())
	}
	v.RegisterTagNameFunc(requestFieldName)
	return &RequestValidator{validate: v}
}

func requestFieldName(f reflect.StructField) string {
	for _, tag := range requestTags {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// Validate reports rule violations as *domain.ValidationError, one message
// per field.
func (rv *RequestValidator) Validate(i any) error {
	err := rv.validate.Struct(i)
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return err
	}

	fields := make(map[string]string, len(violations))
	for _, fe := range violations {
		name := fe.Field()
		if _, dup := fields[name]; dup {
			continue
		}
		fields[name] = describe(name, fe.Tag(), fe.Param())
	}
	return &domain.ValidationError{Fields: fields}
}

func describe(name, tag, param string) string {
	switch tag {
	case "required", "notblank":
		return name + " is required"
	case "min":
		return name + " must be at least " + param
	case "max":
		return name + " must be at most " + param
	case "oneof":
		return name + " must be one of: " + param
	case "datetime":
		return name + " must be a date (YYYY-MM-DD)"
	}
	return fmt.Sprintf("%s is invalid (%s)", name, tag)
}
