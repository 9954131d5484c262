package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidateRequired checks if a string field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidatePositiveAmount checks if a monetary amount is strictly positive
func ValidatePositiveAmount(value decimal.Decimal, fieldName string) error {
	if !value.IsPositive() {
		return NewValidationError(fmt.Sprintf("%s must be positive", fieldName))
	}
	return nil
}

// ValidateNonNegativeAmount checks if a monetary amount is not negative
func ValidateNonNegativeAmount(value decimal.Decimal, fieldName string) error {
	if value.IsNegative() {
		return NewValidationError(fmt.Sprintf("%s cannot be negative", fieldName))
	}
	return nil
}

// ValidateIntRange checks that an integer falls within [min, max]
func ValidateIntRange(value, min, max int, fieldName string) error {
	if value < min || value > max {
		return NewValidationError(fmt.Sprintf("%s must be between %d and %d", fieldName, min, max))
	}
	return nil
}

// ValidateNotEmpty checks if a slice is not empty
func ValidateNotEmpty[T any](slice []T, fieldName string) error {
	if len(slice) == 0 {
		return NewValidationError(fmt.Sprintf("%s cannot be empty", fieldName))
	}
	return nil
}

// ValidateFutureDate checks that a date is strictly after now
func ValidateFutureDate(value time.Time, fieldName string) error {
	if !value.After(time.Now()) {
		return NewValidationError(fmt.Sprintf("%s must be a future date", fieldName))
	}
	return nil
}

// ValidateMaxLength checks that a string does not exceed a length limit
func ValidateMaxLength(value string, max int, fieldName string) error {
	if len(value) > max {
		return NewValidationError(fmt.Sprintf("%s cannot exceed %d characters", fieldName, max))
	}
	return nil
}
