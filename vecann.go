package vecann

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/internal/resource"
)

// Algorithm is the contract a benchmark harness drives.
type Algorithm interface {
	// Fit trains and populates the index. It succeeds at most once.
	Fit(ctx context.Context, X [][]float32) error

	// Query returns the ids of the n nearest neighbors of v, nearest first.
	Query(v []float32, n int) ([]int64, error)

	// BatchQuery answers every query and keeps the results for
	// GetBatchResults.
	BatchQuery(ctx context.Context, X [][]float32, n int) error

	// GetBatchResults returns the ids of the last successful BatchQuery,
	// one row per query with empty slots removed.
	GetBatchResults() [][]int64

	// SetQueryArguments sets the algorithm's query-time tunables.
	SetQueryArguments(args ...int) error

	// GetAdditional returns algorithm-specific diagnostics.
	GetAdditional() map[string]any

	// String describes the algorithm and its parameters.
	String() string
}

var (
	_ Algorithm = (*Flat)(nil)
	_ Algorithm = (*LSH)(nil)
	_ Algorithm = (*IVF)(nil)
)

// ParseMetric maps dataset metric names ("euclidean", "angular") to a
// distance.Metric.
func ParseMetric(s string) (distance.Metric, error) {
	m, err := distance.ParseMetric(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return m, nil
}

// buildFunc constructs an empty index for vectors of dimension dim.
type buildFunc func(dim int, ctrl *resource.Controller) (index.Index, error)

// base holds the lifecycle shared by every algorithm.
type base struct {
	mu      sync.RWMutex
	id      string
	opts    options
	logger  *Logger
	metrics MetricsCollector
	build   buildFunc

	idx   index.Index
	batch *index.BatchResult
}

func (b *base) init(opts options, build buildFunc) {
	b.id = uuid.NewString()
	b.opts = opts
	b.logger = opts.logger.WithInstance(b.id)
	b.metrics = opts.metricsCollector
	b.build = build
}

// InstanceID returns the unique id attached to this instance's log records.
func (b *base) InstanceID() string { return b.id }

// Index returns the fitted index, or nil before Fit.
func (b *base) Index() index.Index {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.idx
}

// Fit trains and populates the index. A failed Fit leaves the algorithm
// unfit, so it may be retried.
func (b *base) Fit(ctx context.Context, X [][]float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.idx != nil {
		return ErrAlreadyFit
	}

	start := time.Now()
	dim := 0
	err := func() error {
		if len(X) == 0 {
			return invalidArgument("fit requires at least one vector")
		}
		dim = len(X[0])

		idx, err := b.build(dim, b.opts.newController())
		if err != nil {
			return translateError(err)
		}
		if err := idx.Train(ctx, X); err != nil {
			return translateError(err)
		}
		if _, err := idx.Add(ctx, X); err != nil {
			return translateError(err)
		}
		b.idx = idx
		return nil
	}()

	elapsed := time.Since(start)
	b.metrics.RecordFit(len(X), elapsed, err)
	b.logger.LogFit(ctx, len(X), dim, elapsed, err)
	return err
}

// Query returns the ids of the n nearest neighbors of v.
func (b *base) Query(v []float32, n int) ([]int64, error) {
	idx := b.Index()

	start := time.Now()
	ids, err := func() ([]int64, error) {
		if idx == nil {
			return nil, ErrNotTrained
		}
		res, err := idx.Search(v, n)
		if err != nil {
			return nil, translateError(err)
		}
		ids := make([]int64, len(res))
		for i, r := range res {
			ids[i] = int64(r.ID)
		}
		return ids, nil
	}()

	b.metrics.RecordQuery(n, time.Since(start), err)
	b.logger.LogQuery(context.Background(), n, len(ids), err)
	return ids, err
}

// BatchQuery answers every query in parallel. On error the previous batch
// results are discarded.
func (b *base) BatchQuery(ctx context.Context, X [][]float32, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	err := func() error {
		b.batch = nil
		if b.idx == nil {
			return ErrNotTrained
		}
		br, err := b.idx.BatchSearch(ctx, X, n)
		if err != nil {
			return translateError(err)
		}
		b.batch = br
		return nil
	}()

	elapsed := time.Since(start)
	b.metrics.RecordBatchQuery(len(X), n, elapsed, err)
	b.logger.LogBatchQuery(ctx, len(X), n, elapsed, err)
	return err
}

// GetBatchResults returns the ids of the last successful BatchQuery.
func (b *base) GetBatchResults() [][]int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.batch == nil {
		return nil
	}
	out := make([][]int64, b.batch.Len())
	for i := range out {
		ids := b.batch.RowIDs(i)
		row := make([]int64, len(ids))
		for j, id := range ids {
			row[j] = int64(id)
		}
		out[i] = row
	}
	return out
}

// noQueryArguments rejects any query-time argument.
func (b *base) noQueryArguments(args []int) error {
	var err error
	if len(args) != 0 {
		err = invalidArgument("expected no query arguments, got %d", len(args))
	}
	b.logger.LogSetQueryArguments(context.Background(), args, err)
	return err
}
