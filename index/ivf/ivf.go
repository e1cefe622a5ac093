package ivf

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/index/flat"
	"github.com/hupe1980/vecann/internal/kmeans"
	"github.com/hupe1980/vecann/internal/parallel"
	"github.com/hupe1980/vecann/internal/searcher"
	"github.com/hupe1980/vecann/internal/vectorstore"
	"github.com/hupe1980/vecann/model"
)

// Compile-time check to ensure IVF satisfies the index interface.
var _ index.Index = (*IVF)(nil)

// State is the lifecycle state of an IVF index.
type State int32

const (
	StateUntrained State = iota
	StateTrained
	StateQueried
)

func (s State) String() string {
	switch s {
	case StateUntrained:
		return "UNTRAINED"
	case StateTrained:
		return "TRAINED"
	case StateQueried:
		return "QUERIED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// invertedList holds the ids and contiguous vectors routed to one centroid.
// ids are ascending.
type invertedList struct {
	ids     []model.ID
	vectors *vectorstore.Store
}

// IVF is an inverted file index.
type IVF struct {
	opts   Options
	logger *slog.Logger
	batch  distance.BatchFunc

	state    atomic.Int32
	numProbe atomic.Int32

	centroids []float32 // NumLists×Dimension
	quantizer *flat.Flat
	lists     []*invertedList
	n         int

	queries        atomic.Int64
	distComps      atomic.Int64
	quantizerComps atomic.Int64
}

// New creates a new, untrained IVF index.
func New(optFns ...func(o *Options)) (*IVF, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, index.InvalidArgument("dimension must be positive, got %d", opts.Dimension)
	}
	if opts.NumLists <= 0 {
		return nil, index.InvalidArgument("number of lists must be positive, got %d", opts.NumLists)
	}
	if opts.NumProbe < 1 || opts.NumProbe > opts.NumLists {
		return nil, index.InvalidArgument("nprobe must be in [1, %d], got %d", opts.NumLists, opts.NumProbe)
	}
	if opts.MaxIterations <= 0 {
		return nil, index.InvalidArgument("max iterations must be positive, got %d", opts.MaxIterations)
	}
	if opts.MaxPointsPerCentroid < 0 {
		return nil, index.InvalidArgument("max points per centroid must not be negative, got %d", opts.MaxPointsPerCentroid)
	}
	if err := opts.Metric.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrInvalidArgument, err)
	}

	batch, err := distance.BatchProvider(opts.Metric)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	idx := &IVF{
		opts:   opts,
		logger: logger.With(slog.String("index", "ivf")),
		batch:  batch,
	}
	idx.numProbe.Store(int32(opts.NumProbe))
	return idx, nil
}

// Kind returns index.KindIVF.
func (idx *IVF) Kind() index.Kind { return index.KindIVF }

// Dimension returns the vector dimension.
func (idx *IVF) Dimension() int { return idx.opts.Dimension }

// Metric returns the distance metric.
func (idx *IVF) Metric() distance.Metric { return idx.opts.Metric }

// Len returns the number of added vectors.
func (idx *IVF) Len() int { return idx.n }

// NumLists returns the number of inverted lists.
func (idx *IVF) NumLists() int { return idx.opts.NumLists }

// NumProbe returns the configured number of probed lists.
func (idx *IVF) NumProbe() int { return int(idx.numProbe.Load()) }

// State returns the lifecycle state.
func (idx *IVF) State() State { return State(idx.state.Load()) }

// IsTrained reports whether the coarse quantizer has been built.
func (idx *IVF) IsTrained() bool { return idx.State() != StateUntrained }

// Centroids returns the trained centroid matrix. The slice aliases the
// index and must not be modified.
func (idx *IVF) Centroids() []float32 { return idx.centroids }

// SetNumProbe sets the number of lists scanned per query and resets the
// diagnostic counters.
func (idx *IVF) SetNumProbe(n int) error {
	if n < 1 || n > idx.opts.NumLists {
		return index.InvalidArgument("nprobe must be in [1, %d], got %d", idx.opts.NumLists, n)
	}
	idx.numProbe.Store(int32(n))
	idx.ResetStats()
	return nil
}

// Train clusters vectors into NumLists centroids and builds the coarse
// quantizer. At least NumLists vectors are required.
func (idx *IVF) Train(ctx context.Context, vectors [][]float32) error {
	if idx.IsTrained() {
		return index.ErrAlreadyTrained
	}
	if err := index.ValidateVectors(idx.opts.Dimension, vectors); err != nil {
		return err
	}
	if len(vectors) < idx.opts.NumLists {
		return index.InvalidArgument("training needs at least %d vectors, got %d", idx.opts.NumLists, len(vectors))
	}

	start := time.Now()
	dim := idx.opts.Dimension

	sample := idx.sample(vectors)
	data := make([]float32, 0, len(sample)*dim)
	for _, v := range sample {
		data = append(data, index.PrepareVector(idx.opts.Metric, v)...)
	}

	res, err := kmeans.Train(ctx, data, dim, idx.opts.NumLists, func(o *kmeans.Options) {
		o.Metric = idx.opts.Metric
		o.MaxIterations = idx.opts.MaxIterations
		o.Seed = idx.opts.Seed
		o.Init = idx.opts.KMeansInit
		o.Workers = idx.opts.Workers
		o.Controller = idx.opts.Controller
		o.Logger = idx.logger
	})
	if err != nil {
		return err
	}

	if err := idx.build(res.Centroids); err != nil {
		return err
	}

	idx.logger.Info("ivf trained",
		slog.Int("lists", idx.opts.NumLists),
		slog.Int("training_points", len(vectors)),
		slog.Int("sampled_points", len(sample)),
		slog.Int("iterations", res.Iterations),
		slog.Bool("converged", res.Converged),
		slog.Int("empty_cluster_recoveries", res.EmptyClusterRecoveries),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// sample returns at most NumLists*MaxPointsPerCentroid vectors, chosen
// uniformly from seed and kept in input order.
func (idx *IVF) sample(vectors [][]float32) [][]float32 {
	limit := idx.opts.NumLists * idx.opts.MaxPointsPerCentroid
	if idx.opts.MaxPointsPerCentroid == 0 || len(vectors) <= limit {
		return vectors
	}

	idx.logger.Info("sampling training set",
		slog.Int("points", len(vectors)),
		slog.Int("sample", limit))

	rng := rand.New(rand.NewPCG(idx.opts.Seed, idx.opts.Seed^0x9e3779b97f4a7c15))
	picked := rng.Perm(len(vectors))[:limit]
	slices.Sort(picked)

	out := make([][]float32, limit)
	for i, p := range picked {
		out[i] = vectors[p]
	}
	return out
}

// build installs centroids as the quantizer and creates empty lists.
func (idx *IVF) build(centroids []float32) error {
	dim := idx.opts.Dimension

	quantizer, err := flat.New(func(o *flat.Options) {
		o.Dimension = dim
		o.Metric = idx.opts.Metric
		o.Prenormalized = true
		o.Controller = idx.opts.Controller
		o.Logger = idx.logger
	})
	if err != nil {
		return err
	}

	rows := make([][]float32, idx.opts.NumLists)
	for i := range rows {
		rows[i] = centroids[i*dim : (i+1)*dim]
	}
	if _, err := quantizer.Add(context.Background(), rows); err != nil {
		return err
	}

	lists := make([]*invertedList, idx.opts.NumLists)
	for i := range lists {
		store, err := vectorstore.New(dim, idx.opts.Controller)
		if err != nil {
			return err
		}
		lists[i] = &invertedList{vectors: store}
	}

	idx.centroids = centroids
	idx.quantizer = quantizer
	idx.lists = lists
	idx.state.Store(int32(StateTrained))
	return nil
}

// Add routes every vector to the list of its nearest centroid. Vectors are
// appended in id order so every list stays sorted by id. On error no vector
// is added.
func (idx *IVF) Add(ctx context.Context, vectors [][]float32) ([]model.ID, error) {
	if !idx.IsTrained() {
		return nil, index.ErrNotTrained
	}
	if err := index.ValidateVectors(idx.opts.Dimension, vectors); err != nil {
		return nil, err
	}

	prepared := index.PrepareVectors(idx.opts.Metric, vectors)

	assign := make([]int, len(prepared))
	err := parallel.For(ctx, idx.opts.Controller, idx.opts.Workers, len(prepared), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			list, err := kmeans.AssignPartition(prepared[i], idx.centroids, idx.opts.Dimension, idx.opts.Metric)
			if err != nil {
				return err
			}
			assign[i] = list
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	first := idx.n
	if err := idx.appendAll(ctx, prepared, assign, first); err != nil {
		return nil, err
	}
	idx.n += len(prepared)

	ids := make([]model.ID, len(prepared))
	for i := range ids {
		ids[i] = model.ID(first + i)
	}

	idx.logger.Debug("vectors added",
		slog.Int("count", len(ids)),
		slog.Int("total", idx.n))

	return ids, nil
}

// appendAll appends vectors to their lists. On error every list is rolled
// back and the memory it reserved is released.
func (idx *IVF) appendAll(ctx context.Context, vectors [][]float32, assign []int, first int) error {
	prevLen := make([]int, len(idx.lists))
	marks := make([]vectorstore.Mark, len(idx.lists))
	for i, l := range idx.lists {
		prevLen[i] = len(l.ids)
		marks[i] = l.vectors.Mark()
	}

	for i, v := range vectors {
		l := idx.lists[assign[i]]
		if _, err := l.vectors.Append(ctx, v); err != nil {
			for j, pl := range idx.lists {
				pl.ids = pl.ids[:prevLen[j]]
				pl.vectors.Rollback(marks[j])
			}
			return err
		}
		l.ids = append(l.ids, model.ID(first+i))
	}
	return nil
}

// Search returns the k nearest vectors among the probed lists.
// index.WithNumProbe overrides the configured nprobe for this call.
func (idx *IVF) Search(query []float32, k int, opts ...index.SearchOption) ([]index.SearchResult, error) {
	if !idx.IsTrained() {
		return nil, index.ErrNotTrained
	}
	if err := index.ValidateK(k); err != nil {
		return nil, err
	}
	if err := index.ValidateVector(idx.opts.Dimension, query); err != nil {
		return nil, err
	}

	so := index.ApplySearchOptions(opts)
	nprobe := idx.NumProbe()
	if so.NumProbe != 0 {
		if so.NumProbe < 1 || so.NumProbe > idx.opts.NumLists {
			return nil, index.InvalidArgument("nprobe must be in [1, %d], got %d", idx.opts.NumLists, so.NumProbe)
		}
		nprobe = so.NumProbe
	}

	idx.state.CompareAndSwap(int32(StateTrained), int32(StateQueried))

	q := index.PrepareVector(idx.opts.Metric, query)

	probes, err := idx.quantizer.Search(q, nprobe)
	if err != nil {
		return nil, err
	}
	idx.quantizerComps.Add(int64(idx.opts.NumLists))

	dim := idx.opts.Dimension
	h := searcher.GetHeap(min(k, idx.Len()))
	defer searcher.PutHeap(h)
	scratch := searcher.GetScratch()
	defer searcher.PutScratch(scratch)

	var scanned int64
	for _, p := range probes {
		l := idx.lists[p.ID]
		m := len(l.ids)
		if m == 0 {
			continue
		}

		dists := scratch.Floats(m)
		idx.batch(q, l.vectors.RawData(), dim, dists)
		scanned += int64(m)

		for j, d := range dists {
			id := l.ids[j]
			if !so.Allowed(id) {
				continue
			}
			h.Push(model.Candidate{ID: id, Distance: d})
		}
	}

	idx.distComps.Add(scanned)
	idx.queries.Add(1)

	return h.Drain(make([]index.SearchResult, 0, h.Len())), nil
}

// BatchSearch runs Search for every query in parallel.
func (idx *IVF) BatchSearch(ctx context.Context, queries [][]float32, k int, opts ...index.SearchOption) (*index.BatchResult, error) {
	if !idx.IsTrained() {
		return nil, index.ErrNotTrained
	}
	return index.SearchBatch(ctx, idx.opts.Controller, idx.opts.Workers, idx.opts.Dimension, idx.Len(), queries, k, idx.Search, opts...)
}

// MemoryUsage returns the bytes reserved for centroids and list vectors.
func (idx *IVF) MemoryUsage() int64 {
	var total int64
	if idx.quantizer != nil {
		total += idx.quantizer.MemoryUsage()
	}
	for _, l := range idx.lists {
		total += l.vectors.Size() + int64(cap(l.ids))*8
	}
	return total
}
