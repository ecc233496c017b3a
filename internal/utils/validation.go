package contextutils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IsValidEmail checks if an email address is valid using go-playground/validator
func IsValidEmail(email string) bool {
	return validate.Var(email, "email") == nil
}

// ValidateLengthBetween checks a trimmed string against inclusive length bounds.
func ValidateLengthBetween(value string, min, max int) bool {
	n := len(strings.TrimSpace(value))
	return n >= min && n <= max
}

// ValidateMinLength checks a trimmed string against a minimum length.
func ValidateMinLength(value string, min int) bool {
	return len(strings.TrimSpace(value)) >= min
}
