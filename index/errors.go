package index

import (
	"errors"
	"fmt"
)

var (
	// ErrNotTrained is returned when an index is used before Train.
	ErrNotTrained = errors.New("index not trained")

	// ErrAlreadyTrained is returned when Train is called on a trained index.
	ErrAlreadyTrained = errors.New("index already trained")

	// ErrInvalidArgument is returned for out-of-range parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownKind is returned when no loader is registered for a kind.
	ErrUnknownKind = errors.New("unknown index kind")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = fmt.Errorf("%w: k must be positive", ErrInvalidArgument)
)

// ErrDimensionMismatch is a named error type for dimension mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// InvalidArgument returns an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
