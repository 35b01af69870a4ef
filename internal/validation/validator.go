package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom tag name function to use JSON tags instead of struct field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("difficulty", validateDifficulty)
}

// Validate validates a struct and returns formatted error messages
func Validate(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors converts validator errors to user-friendly messages
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, formatFieldError(fieldError))
	}
	return errors.New(strings.Join(messages, ", "))
}

// formatFieldError formats a single field validation error
func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "difficulty":
		names := make([]string, 0, 4)
		for _, d := range ai.Difficulties() {
			names = append(names, string(d))
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", "))
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// validateDifficulty accepts any case of a known difficulty name.
func validateDifficulty(fl validator.FieldLevel) bool {
	_, err := ai.ParseDifficulty(fl.Field().String())
	return err == nil
}

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(uuid string) error {
	if err := validate.Var(uuid, "required,uuid"); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}
