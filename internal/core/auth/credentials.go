package auth

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/testdeck/console/internal/core/domain"
)

// MinPasswordLength is the client-side pre-check, not a security boundary.
const MinPasswordLength = 6

// Credentials is the login form input.
type Credentials struct {
	Username string `json:"username" form:"username" validate:"notblank"`
	Password string `json:"password" form:"password" validate:"notblank,min=6"`
}

var (
	credValidator     *validator.Validate
	credValidatorOnce sync.Once
)

func credentialsValidator() *validator.Validate {
	credValidatorOnce.Do(func() {
		v := validator.New()
		mustRegister(v, "notblank", validators.NotBlank)
		credValidator = v
	})
	return credValidator
}

// mustRegister panics on a failed registration; a missing tag would otherwise
// fail every Validate call with an unrelated-looking error.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("auth: register validation " + tag + ": " + err.Error())
	}
}

// Validate rejects blank fields and short passwords before any network call.
// The returned error is a *domain.ValidationError keyed by "username" and
// "password".
func (c Credentials) Validate() error {
	err := credentialsValidator().Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "notblank":
			fields[name] = name + " is required"
		case "min":
			fields[name] = name + " must be at least " + fe.Param() + " characters"
		default:
			fields[name] = name + " is invalid"
		}
	}
	return &domain.ValidationError{Fields: fields}
}
