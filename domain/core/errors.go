package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrVariableNotFound = fmt.Errorf("%w: variable", ErrNotFound)
	ErrScenarioNotFound = fmt.Errorf("%w: scenario", ErrNotFound)
	ErrRunNotFound      = fmt.Errorf("%w: run", ErrNotFound)
	ErrCountryNotFound  = fmt.Errorf("%w: country", ErrNotFound)

	// Structure errors
	ErrInvalidStructure  = errors.New("invalid causal structure")
	ErrUndefinedVariable = fmt.Errorf("%w: undefined variable", ErrInvalidStructure)
	ErrCyclicStructure   = fmt.Errorf("%w: cycle detected", ErrInvalidStructure)

	// Estimation errors
	ErrInsufficientData  = errors.New("insufficient data for analysis")
	ErrRankDeficient     = errors.New("design matrix is rank deficient")
	ErrInvalidComparison = errors.New("invalid comparison")
	ErrNonFinite         = errors.New("non-finite value")

	// Input errors
	ErrMalformedInput = errors.New("malformed input")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrHashMismatch     = errors.New("hash mismatch")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidStructure, field, reason)
}

func NewUndefinedVariableError(variable, parent string) error {
	return fmt.Errorf("%w: %s references %q", ErrUndefinedVariable, variable, parent)
}

func NewMalformedInputError(source string, row int, reason string) error {
	return fmt.Errorf("%w: %s row %d: %s", ErrMalformedInput, source, row, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStructureError(err error) bool {
	return errors.Is(err, ErrInvalidStructure)
}

func IsEstimationError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrRankDeficient) ||
		errors.Is(err, ErrNonFinite)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrNonDeterministic) ||
		errors.Is(err, ErrHashMismatch)
}
