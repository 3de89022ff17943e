package pump

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration indicates an unknown unit-system selector.
	ErrInvalidConfiguration = errors.New("pump: invalid configuration")

	// ErrMissingInput indicates a required input field was nil at calculation time.
	ErrMissingInput = errors.New("pump: missing input")

	// ErrDomain indicates a segment whose friction loss cannot be computed.
	ErrDomain = errors.New("pump: domain error")

	// ErrInvalidInput indicates an input value outside its physical range.
	ErrInvalidInput = errors.New("pump: invalid input")
)

type InvalidConfigurationError struct {
	Value string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("Unit system must be 'imperial' or 'si', got %q.", e.Value)
}

func (e *InvalidConfigurationError) Is(target error) bool { return target == ErrInvalidConfiguration }

// MissingInputError names the missing field the way a user reads it ("flow rate").
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("Input for '%s' is missing.", e.Field)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

type DomainError struct {
	Segment Segment
	Reason  string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("Friction Loss Error (%s): %s", e.Segment, e.Reason)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }
