package vecann

import (
	"fmt"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/index/lsh"
	"github.com/hupe1980/vecann/internal/resource"
)

// LSH ranks vectors by the Hamming distance of random-hyperplane codes.
type LSH struct {
	base
	metric distance.Metric
	nBits  int
}

// NewLSH creates an LSH algorithm with nBits hyperplanes. The dimension is
// taken from the data passed to Fit.
func NewLSH(metric distance.Metric, nBits int, optFns ...Option) (*LSH, error) {
	opts := applyOptions(optFns)
	if nBits <= 0 {
		return nil, invalidArgument("n_bits must be positive, got %d", nBits)
	}
	if err := metric.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	l := &LSH{metric: metric, nBits: nBits}
	l.init(opts, l.newIndex)
	l.logger = l.logger.WithAlgorithm(l.String())
	return l, nil
}

func (l *LSH) newIndex(dim int, ctrl *resource.Controller) (index.Index, error) {
	return lsh.New(func(o *lsh.Options) {
		o.Dimension = dim
		o.Metric = l.metric
		o.NumBits = l.nBits
		o.Seed = l.opts.seed
		o.TrainThresholds = l.opts.trainThresholds
		o.Workers = l.opts.workers
		o.Controller = ctrl
		o.Logger = l.logger.Logger
	})
}

// SetQueryArguments accepts no arguments.
func (l *LSH) SetQueryArguments(args ...int) error {
	return l.noQueryArguments(args)
}

// GetAdditional returns no diagnostics.
func (l *LSH) GetAdditional() map[string]any {
	return map[string]any{}
}

func (l *LSH) String() string {
	return fmt.Sprintf("LSH(n_bits=%d)", l.nBits)
}
