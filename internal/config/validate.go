package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validator returns the shared validator instance so request types can be
// checked with the same rules and error formatting.
func Validator() *validator.Validate {
	return validate
}

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

// FormatValidationError turns validator output into one readable error.
func FormatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, describe(fe)))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "lowercase":
		return "must be lowercase"
	case "alphanum":
		return "must contain only letters and digits"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "excludesall":
		return "contains characters that are not allowed"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
