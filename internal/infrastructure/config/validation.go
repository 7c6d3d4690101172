package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the colony rules
// registered: colony_role and colony_part
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("colony_role", func(fl validator.FieldLevel) bool {
		_, err := colony.ParseRole(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("colony_part", func(fl validator.FieldLevel) bool {
		_, err := colony.ParsePartKind(fl.Field().String())
		return err == nil
	})

	return &Validator{
		validate: v,
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Namespace(),
				e.Tag(),
				e.Value(),
			))
		}
		return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return err
}

// ValidateConfig validates the entire configuration, then checks that the
// spawn section converts to domain values
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	if err := v.Validate(cfg); err != nil {
		return err
	}
	if _, err := cfg.Spawn.ToLoadoutTable(); err != nil {
		return err
	}
	if _, err := cfg.Spawn.ToStaticRanks(); err != nil {
		return err
	}
	return nil
}
