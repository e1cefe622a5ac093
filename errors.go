package vecann

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/internal/resource"
)

var (
	// ErrNotTrained is returned when an algorithm is queried before Fit.
	ErrNotTrained = errors.New("algorithm not fit")

	// ErrInvalidArgument is returned for out-of-range parameters such as
	// k <= 0, n_bits <= 0 or n_probe outside [1, n_list].
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyFit is returned when Fit is called a second time.
	ErrAlreadyFit = errors.New("algorithm already fit")

	// ErrMemoryLimitExceeded is returned when building would exceed the
	// configured memory limit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	if errors.Is(err, index.ErrNotTrained) {
		return fmt.Errorf("%w: %w", ErrNotTrained, err)
	}
	if errors.Is(err, index.ErrAlreadyTrained) {
		return fmt.Errorf("%w: %w", ErrAlreadyFit, err)
	}
	if errors.Is(err, index.ErrInvalidArgument) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}

	return err
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
