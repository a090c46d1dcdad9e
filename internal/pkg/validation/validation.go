package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var phoneRegex = regexp.MustCompile(`^\+?[\d\s\-()]+$`)

// FieldError describes one failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) Error() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// Errors is the set of field errors produced by a single validation pass.
type Errors []FieldError

func (v Errors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// Validator wraps go-playground/validator with the custom rules used by the catalogue.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the "phone" rule registered.
func New() *Validator {
	v := validator.New()
	// Registering a well-formed rule on a fresh validator cannot fail.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates s and translates failures into Errors.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return translate(validationErrs)
	}
	return err
}

// Check is Struct for the service layer: failures come back as validation AppErrors
// that still unwrap to Errors.
func (v *Validator) Check(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	return apperror.Wrap(err, apperror.KindValidation, err.Error())
}

func translate(errs validator.ValidationErrors) Errors {
	out := make(Errors, 0, len(errs))
	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email", err.Field())
		case "phone":
			message = fmt.Sprintf("%s must be a valid phone number", err.Field())
		}

		out = append(out, FieldError{Field: err.Field(), Message: message})
	}
	return out
}
