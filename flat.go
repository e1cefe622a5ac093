package vecann

import (
	"fmt"

	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/index/flat"
	"github.com/hupe1980/vecann/internal/resource"
)

// Flat is exhaustive exact search.
type Flat struct {
	base
	dimension int
}

// NewFlat creates a Flat algorithm for vectors of the given dimension.
// Use WithMetric to select Angular; the default is L2.
func NewFlat(dimension int, optFns ...Option) (*Flat, error) {
	opts := applyOptions(optFns)
	if dimension <= 0 {
		return nil, invalidArgument("dimension must be positive, got %d", dimension)
	}
	if err := opts.metric.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	f := &Flat{dimension: dimension}
	f.init(opts, f.newIndex)
	f.logger = f.logger.WithAlgorithm(f.String())
	return f, nil
}

func (f *Flat) newIndex(_ int, ctrl *resource.Controller) (index.Index, error) {
	return flat.New(func(o *flat.Options) {
		o.Dimension = f.dimension
		o.Metric = f.opts.metric
		o.Workers = f.opts.workers
		o.Controller = ctrl
		o.Logger = f.logger.Logger
	})
}

// SetQueryArguments accepts no arguments.
func (f *Flat) SetQueryArguments(args ...int) error {
	return f.noQueryArguments(args)
}

// GetAdditional returns no diagnostics.
func (f *Flat) GetAdditional() map[string]any {
	return map[string]any{}
}

func (f *Flat) String() string {
	return fmt.Sprintf("Flat(n_dims=%d)", f.dimension)
}
