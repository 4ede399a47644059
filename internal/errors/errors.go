// Package errors provides custom error types for pricing failures.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrNumericalInstability = errors.New("numerical instability")
	ErrConfigInvalid        = errors.New("invalid configuration")
	ErrUnknownMethod        = errors.New("unknown pricing method")
)

// ValidationError represents a rejected pricing input.
type ValidationError struct {
	Field   string
	Value   float64
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%g): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidParameter.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidParameter
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value float64, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// InstabilityError reports a transition coefficient or linear system that
// would make the discretisation unstable.
type InstabilityError struct {
	Method      string
	Coefficient string
	Value       float64
	Message     string
}

func (e *InstabilityError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("numerical instability [%s] %s=%g: %s", e.Method, e.Coefficient, e.Value, e.Message)
	}
	return fmt.Sprintf("numerical instability [%s] %s=%g", e.Method, e.Coefficient, e.Value)
}

// Unwrap lets errors.Is match ErrNumericalInstability.
func (e *InstabilityError) Unwrap() error {
	return ErrNumericalInstability
}

// NewInstabilityError creates a new InstabilityError.
func NewInstabilityError(method, coefficient string, value float64, message string) *InstabilityError {
	return &InstabilityError{
		Method:      method,
		Coefficient: coefficient,
		Value:       value,
		Message:     message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
