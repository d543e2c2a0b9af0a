package application

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// configValidator is the package-level validator used for configuration
// validation, with custom validators registered at init.
var configValidator = newConfigValidator()

// newConfigValidator builds a validator with the custom validation rules
// used by pipeline configuration beyond basic struct tags.
func newConfigValidator() *validator.Validate {
	v := validator.New()

	if err := registerCustomValidators(v); err != nil {
		// Registration only fails for programming errors such as an empty
		// tag name, never on user input.
		panic(fmt.Sprintf("failed to register validators: %v", err))
	}

	return v
}

// registerCustomValidators installs the semantic validation rules that
// struct tags alone cannot express.
func registerCustomValidators(v *validator.Validate) error {
	// probability accepts a float64 in the closed interval [0, 1].
	// Used for the confidence threshold.
	if err := v.RegisterValidation("probability", validateProbability); err != nil {
		return fmt.Errorf("register probability: %w", err)
	}

	return nil
}

// validateProbability implements the "probability" validation tag.
func validateProbability(fl validator.FieldLevel) bool {
	value := fl.Field().Float()
	return value >= 0 && value <= 1
}
