package vecann

import (
	"context"
	"fmt"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/index/ivf"
	"github.com/hupe1980/vecann/internal/resource"
)

// IVF clusters the data with k-means and scans the n_probe lists whose
// centroids are nearest to the query.
type IVF struct {
	base
	metric distance.Metric
	nList  int
}

// NewIVF creates an IVF algorithm with nList inverted lists. The dimension
// is taken from the data passed to Fit.
func NewIVF(metric distance.Metric, nList int, optFns ...Option) (*IVF, error) {
	opts := applyOptions(optFns)
	if err := metric.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if nList <= 0 {
		return nil, invalidArgument("n_list must be positive, got %d", nList)
	}
	if opts.numProbe < 1 || opts.numProbe > nList {
		return nil, invalidArgument("n_probe must be in [1, %d], got %d", nList, opts.numProbe)
	}
	if opts.maxIterations <= 0 {
		return nil, invalidArgument("max iterations must be positive, got %d", opts.maxIterations)
	}

	v := &IVF{metric: metric, nList: nList}
	v.init(opts, v.newIndex)
	v.logger = v.logger.WithAlgorithm(fmt.Sprintf("IVF(n_list=%d)", nList))
	return v, nil
}

func (v *IVF) newIndex(dim int, ctrl *resource.Controller) (index.Index, error) {
	return ivf.New(func(o *ivf.Options) {
		o.Dimension = dim
		o.Metric = v.metric
		o.NumLists = v.nList
		o.NumProbe = v.opts.numProbe
		o.MaxIterations = v.opts.maxIterations
		o.Seed = v.opts.seed
		o.KMeansInit = v.opts.kmeansInit
		o.Workers = v.opts.workers
		o.Controller = ctrl
		o.Logger = v.logger.Logger
	})
}

// ivfIndex returns the fitted index. Callers hold v.mu.
func (v *IVF) ivfIndex() *ivf.IVF {
	if v.idx == nil {
		return nil
	}
	return v.idx.(*ivf.IVF)
}

// SetQueryArguments takes exactly one argument, n_probe in [1, n_list].
// It resets the distance counters reported by GetAdditional.
func (v *IVF) SetQueryArguments(args ...int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := func() error {
		if len(args) != 1 {
			return invalidArgument("expected 1 query argument (n_probe), got %d", len(args))
		}
		n := args[0]
		if n < 1 || n > v.nList {
			return invalidArgument("n_probe must be in [1, %d], got %d", v.nList, n)
		}
		if idx := v.ivfIndex(); idx != nil {
			if err := idx.SetNumProbe(n); err != nil {
				return translateError(err)
			}
		}
		v.opts.numProbe = n
		return nil
	}()

	v.logger.LogSetQueryArguments(context.Background(), args, err)
	return err
}

// NumProbe returns the current n_probe.
func (v *IVF) NumProbe() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.opts.numProbe
}

// Stats returns the search counters of the fitted index. Before Fit all
// counters are zero.
func (v *IVF) Stats() ivf.Stats {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if idx := v.ivfIndex(); idx != nil {
		return idx.Stats()
	}
	return ivf.Stats{}
}

// GetAdditional reports dist_comps: true distances computed while scanning
// lists plus n_list centroid distances per query, counted since the last
// SetQueryArguments.
func (v *IVF) GetAdditional() map[string]any {
	s := v.Stats()
	return map[string]any{
		"dist_comps": s.DistanceComputations + s.Queries*int64(v.nList),
	}
}

func (v *IVF) String() string {
	return fmt.Sprintf("IVF(n_list=%d, n_probe=%d)", v.nList, v.NumProbe())
}
