package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go-ats-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// FormatValidationErrors converts validator.ValidationErrors to field errors
// keyed by the JSON path of the offending field (e.g. "education[0].title").
func FormatValidationErrors(err error) []apperror.FieldError {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []apperror.FieldError{{Message: err.Error()}}
	}

	out := make([]apperror.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, apperror.FieldError{
			Field:   fieldPath(e.Namespace()),
			Message: formatSingleError(e),
		})
	}
	return out
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func formatSingleError(e validator.FieldError) string {
	label := e.Field()
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		switch e.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("%s must contain at least %s item(s)", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email", label)
	case "valid_phone":
		return fmt.Sprintf("%s has an invalid phone format", label)
	case "iso8601":
		return fmt.Sprintf("%s must be a valid ISO-8601 date", label)
	case "datetime":
		if param == "2006-01-02" {
			param = "YYYY-MM-DD"
		}
		return fmt.Sprintf("%s must be a date in %s format", label, param)
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, e.Tag())
	}
}

// Merge appends rule errors to normalization errors, skipping rule errors for
// fields that already failed normalization.
func Merge(normalization, rules []apperror.FieldError) []apperror.FieldError {
	if len(normalization) == 0 {
		return rules
	}
	seen := make(map[string]bool, len(normalization))
	for _, e := range normalization {
		seen[e.Field] = true
	}
	out := append([]apperror.FieldError{}, normalization...)
	for _, e := range rules {
		if !seen[e.Field] && !underFailed(e.Field, seen) {
			out = append(out, e)
		}
	}
	return out
}

// underFailed reports whether field is nested below a field that failed.
func underFailed(field string, failed map[string]bool) bool {
	for f := range failed {
		if strings.HasPrefix(field, f+".") || strings.HasPrefix(field, f+"[") {
			return true
		}
	}
	return false
}
