package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxPropertyKey bounds the length of property names.
	MaxPropertyKey = 100

	propKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func init() {
	validate = validator.New()
}

// ValidateStruct checks the `validate` struct tags of v. The first failure
// is reported as "<Field>: <reason>" wrapping ErrInvalidConfig.
func ValidateStruct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidatePropertyKey validates a node or relationship property name.
func ValidatePropertyKey(key string) error {
	if key == "" {
		return errors.New("property key cannot be empty")
	}
	if len(key) > MaxPropertyKey {
		return fmt.Errorf("property key '%s' exceeds maximum length of %d characters", key, MaxPropertyKey)
	}
	if !propKeyPattern.MatchString(key) {
		return fmt.Errorf("property key '%s' is invalid (must start with letter or underscore, followed by alphanumeric or underscore)", key)
	}
	return nil
}

// OptionalPropertyKey validates key when it is non-empty.
func OptionalPropertyKey(key string) func() error {
	return func() error {
		if key == "" {
			return nil
		}
		return ValidatePropertyKey(key)
	}
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.StructNamespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%w: %s: field is required", ErrInvalidConfig, field)
		case "min", "gte":
			return fmt.Errorf("%w: %s: must be at least %s, got %v", ErrInvalidConfig, field, param, e.Value())
		case "max", "lte":
			return fmt.Errorf("%w: %s: must not exceed %s, got %v", ErrInvalidConfig, field, param, e.Value())
		case "gt":
			return fmt.Errorf("%w: %s: must be greater than %s, got %v", ErrInvalidConfig, field, param, e.Value())
		case "lt":
			return fmt.Errorf("%w: %s: must be less than %s, got %v", ErrInvalidConfig, field, param, e.Value())
		case "oneof":
			return fmt.Errorf("%w: %s: must be one of [%s], got %v", ErrInvalidConfig, field, param, e.Value())
		default:
			return fmt.Errorf("%w: %s: validation failed (%s)", ErrInvalidConfig, field, e.Tag())
		}
	}

	return err
}
