package flat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/internal/resource"
	"github.com/hupe1980/vecann/internal/searcher"
	"github.com/hupe1980/vecann/internal/vectorstore"
	"github.com/hupe1980/vecann/model"
)

// Compile-time check to ensure Flat satisfies the index interface.
var _ index.Index = (*Flat)(nil)

// blockSize is the number of vectors scored per batch kernel call.
const blockSize = 1024

// Options contains configuration options for the flat index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	// It must be > 0 and is enforced for all adds and searches.
	Dimension int

	// Metric is the distance metric.
	Metric distance.Metric

	// Prenormalized declares that every added vector and query is already
	// unit length, so angular inputs are used without a normalized copy.
	Prenormalized bool

	// Workers bounds BatchSearch parallelism. 0 uses the controller budget.
	Workers int

	// Controller accounts memory and worker slots. May be nil.
	Controller *resource.Controller

	// Logger receives build messages. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions contains the default configuration options for the flat index.
var DefaultOptions = Options{
	Dimension: 0,
	Metric:    distance.MetricL2,
}

// Flat represents a flat index for vector storage and search.
type Flat struct {
	opts   Options
	store  *vectorstore.Store
	batch  distance.BatchFunc
	logger *slog.Logger
}

// New creates a new flat index.
func New(optFns ...func(o *Options)) (*Flat, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, index.InvalidArgument("dimension must be positive, got %d", opts.Dimension)
	}
	if err := opts.Metric.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrInvalidArgument, err)
	}

	store, err := vectorstore.New(opts.Dimension, opts.Controller)
	if err != nil {
		return nil, err
	}
	batch, err := distance.BatchProvider(opts.Metric)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Flat{
		opts:   opts,
		store:  store,
		batch:  batch,
		logger: logger.With(slog.String("index", "flat")),
	}, nil
}

// Kind returns index.KindFlat.
func (f *Flat) Kind() index.Kind { return index.KindFlat }

// Dimension returns the vector dimension.
func (f *Flat) Dimension() int { return f.opts.Dimension }

// Metric returns the distance metric.
func (f *Flat) Metric() distance.Metric { return f.opts.Metric }

// Len returns the number of stored vectors.
func (f *Flat) Len() int { return f.store.Len() }

// IsTrained always reports true; a flat index needs no training.
func (f *Flat) IsTrained() bool { return true }

// Train validates the training data. Flat has no trained state.
func (f *Flat) Train(ctx context.Context, vectors [][]float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return index.ValidateVectors(f.opts.Dimension, vectors)
}

// Add appends vectors and returns their ids. Angular vectors are stored
// normalized; the caller's slices are never modified.
func (f *Flat) Add(ctx context.Context, vectors [][]float32) ([]model.ID, error) {
	if err := index.ValidateVectors(f.opts.Dimension, vectors); err != nil {
		return nil, err
	}

	prepared := vectors
	if !f.opts.Prenormalized {
		prepared = index.PrepareVectors(f.opts.Metric, vectors)
	}

	ids, err := f.store.Add(ctx, prepared)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("vectors added",
		slog.Int("count", len(ids)),
		slog.Int("total", f.store.Len()))

	return ids, nil
}

// Vector returns the stored form of vector id.
func (f *Flat) Vector(id model.ID) ([]float32, error) {
	return f.store.Get(id)
}

// Search returns the k nearest stored vectors to query.
func (f *Flat) Search(query []float32, k int, opts ...index.SearchOption) ([]index.SearchResult, error) {
	if err := index.ValidateK(k); err != nil {
		return nil, err
	}
	if err := index.ValidateVector(f.opts.Dimension, query); err != nil {
		return nil, err
	}

	q := query
	if !f.opts.Prenormalized {
		q = index.PrepareVector(f.opts.Metric, query)
	}

	so := index.ApplySearchOptions(opts)
	return f.search(q, k, &so), nil
}

// search scans every stored vector. q must already be in stored form.
func (f *Flat) search(q []float32, k int, so *index.SearchOptions) []index.SearchResult {
	n := f.store.Len()
	if n == 0 {
		return []index.SearchResult{}
	}

	dim := f.opts.Dimension
	data := f.store.RawData()

	h := searcher.GetHeap(min(k, n))
	defer searcher.PutHeap(h)
	scratch := searcher.GetScratch()
	defer searcher.PutScratch(scratch)

	for lo := 0; lo < n; lo += blockSize {
		hi := min(lo+blockSize, n)
		dists := scratch.Floats(hi - lo)
		f.batch(q, data[lo*dim:hi*dim], dim, dists)

		for i, d := range dists {
			id := model.ID(lo + i)
			if !so.Allowed(id) {
				continue
			}
			h.Push(model.Candidate{ID: id, Distance: d})
		}
	}

	return h.Drain(make([]index.SearchResult, 0, h.Len()))
}

// BatchSearch runs Search for every query in parallel.
func (f *Flat) BatchSearch(ctx context.Context, queries [][]float32, k int, opts ...index.SearchOption) (*index.BatchResult, error) {
	return index.SearchBatch(ctx, f.opts.Controller, f.opts.Workers, f.opts.Dimension, f.Len(), queries, k, f.Search, opts...)
}

// MemoryUsage returns the bytes reserved for vector storage.
func (f *Flat) MemoryUsage() int64 {
	return f.store.Size()
}
