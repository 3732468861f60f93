package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors"`
}

// RecordValidator checks structs against their `validate` tags and reports
// fields by their JSON names.
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator creates a new record validator
func NewRecordValidator() *RecordValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		}
		return name
	})
	return &RecordValidator{validate: v}
}

// Validate checks every field of record and collects one error per failing
// field, in declaration order. An error is returned only when record is not a
// struct the validator can inspect.
func (rv *RecordValidator) Validate(record any) (ValidationResult, error) {
	result := ValidationResult{
		IsValid: true,
		Errors:  []ValidationError{},
	}

	err := rv.validate.Struct(record)
	if err == nil {
		return result, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationResult{}, fmt.Errorf("failed to validate record: %w", err)
	}

	result.IsValid = false
	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Value:   fe.Value(),
		})
	}
	return result, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", fe.Field())
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s characters", fe.Field(), fe.Param())
	case "alphanum":
		return fmt.Sprintf("field '%s' contains invalid characters", fe.Field())
	case "datetime":
		return fmt.Sprintf("field '%s' must be a date in YYYY-MM-DD format", fe.Field())
	default:
		return fmt.Sprintf("field '%s' failed the '%s' check", fe.Field(), fe.Tag())
	}
}
