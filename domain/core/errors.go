package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors raised at the explorer boundary
	ErrInvalidInput            = errors.New("invalid input")
	ErrCorrelationOutOfRange   = fmt.Errorf("%w: correlation outside [-1, 1]", ErrInvalidInput)
	ErrCorrelationNotANumber   = fmt.Errorf("%w: correlation is not a number", ErrInvalidInput)
	ErrSampleSizeOutOfRange    = fmt.Errorf("%w: sample size outside configured bounds", ErrInvalidInput)
	ErrUnknownDisplayMode      = fmt.Errorf("%w: unknown display mode", ErrInvalidInput)
	ErrUnknownBaselineMode     = fmt.Errorf("%w: unknown baseline mode", ErrInvalidInput)
	ErrUnknownInputPolicy      = fmt.Errorf("%w: unknown input policy", ErrInvalidInput)
	ErrUnsupportedRenderFormat = fmt.Errorf("%w: unsupported render format", ErrInvalidInput)

	// Configuration errors
	ErrInvalidBounds = errors.New("invalid bounds")
)

// NewCorrelationError wraps ErrCorrelationOutOfRange with the offending value
func NewCorrelationError(r float64) error {
	return fmt.Errorf("%w: got %g", ErrCorrelationOutOfRange, r)
}

// NewSampleSizeError wraps ErrSampleSizeOutOfRange with the offending value and bounds
func NewSampleSizeError(n, min, max int) error {
	return fmt.Errorf("%w: got %d, want [%d, %d]", ErrSampleSizeOutOfRange, n, min, max)
}

// IsInvalidInput reports whether err stems from rejected user input
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
