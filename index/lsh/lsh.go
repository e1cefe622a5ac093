package lsh

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/internal/mem"
	"github.com/hupe1980/vecann/internal/parallel"
	"github.com/hupe1980/vecann/internal/resource"
	"github.com/hupe1980/vecann/internal/searcher"
	"github.com/hupe1980/vecann/internal/simd"
	"github.com/hupe1980/vecann/model"
	"github.com/hupe1980/vecann/quantization"
)

// Compile-time check to ensure LSH satisfies the index interface.
var _ index.Index = (*LSH)(nil)

// minGrow is the smallest code buffer growth step in vectors.
const minGrow = 64

// Options contains configuration options for the LSH index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	Dimension int

	// Metric is the metric of the data. Angular inputs are normalized
	// before projection.
	Metric distance.Metric

	// NumBits is the code length in bits.
	NumBits int

	// Seed makes the projection matrix deterministic.
	Seed uint64

	// TrainThresholds sets each bit threshold to the median training
	// projection instead of 0.
	TrainThresholds bool

	// Workers bounds Add and BatchSearch parallelism. 0 uses the controller budget.
	Workers int

	// Controller accounts memory and worker slots. May be nil.
	Controller *resource.Controller

	// Logger receives build messages. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions contains the default configuration options for the LSH index.
var DefaultOptions = Options{
	Metric: distance.MetricL2,
	Seed:   1234,
}

// LSH is a random-hyperplane LSH index.
type LSH struct {
	opts   Options
	logger *slog.Logger

	trained    bool
	projection []float32 // NumBits×Dimension, one hyperplane per row
	quantizer  *quantization.BinaryQuantizer

	words int
	codes []uint64 // len = n*words
}

// New creates a new, untrained LSH index.
func New(optFns ...func(o *Options)) (*LSH, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, index.InvalidArgument("dimension must be positive, got %d", opts.Dimension)
	}
	if opts.NumBits <= 0 {
		return nil, index.InvalidArgument("number of bits must be positive, got %d", opts.NumBits)
	}
	if err := opts.Metric.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrInvalidArgument, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	quantizer := quantization.NewBinaryQuantizer(opts.NumBits)

	return &LSH{
		opts:      opts,
		logger:    logger.With(slog.String("index", "lsh")),
		quantizer: quantizer,
		words:     quantizer.Words(),
	}, nil
}

// Kind returns index.KindLSH.
func (l *LSH) Kind() index.Kind { return index.KindLSH }

// Dimension returns the vector dimension.
func (l *LSH) Dimension() int { return l.opts.Dimension }

// Metric returns the distance metric of the data.
func (l *LSH) Metric() distance.Metric { return l.opts.Metric }

// NumBits returns the code length.
func (l *LSH) NumBits() int { return l.opts.NumBits }

// Len returns the number of encoded vectors.
func (l *LSH) Len() int { return len(l.codes) / l.words }

// IsTrained reports whether the projection has been drawn.
func (l *LSH) IsTrained() bool { return l.trained }

// Thresholds returns the per-bit thresholds.
func (l *LSH) Thresholds() []float32 { return l.quantizer.Thresholds() }

// Train draws the projection matrix and, with TrainThresholds, fits the
// per-bit thresholds to vectors. The projection is frozen afterward.
func (l *LSH) Train(ctx context.Context, vectors [][]float32) error {
	if l.trained {
		return index.ErrAlreadyTrained
	}
	if err := index.ValidateVectors(l.opts.Dimension, vectors); err != nil {
		return err
	}
	if l.opts.TrainThresholds && len(vectors) == 0 {
		return index.InvalidArgument("threshold training needs at least one vector")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	projection := gaussianMatrix(l.opts.Seed, l.opts.NumBits*l.opts.Dimension)

	if l.opts.TrainThresholds {
		projected := make([][]float32, len(vectors))
		err := parallel.For(ctx, l.opts.Controller, l.opts.Workers, len(vectors), func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				projected[i] = make([]float32, l.opts.NumBits)
				project(projection, l.opts.Dimension, index.PrepareVector(l.opts.Metric, vectors[i]), projected[i])
			}
			return nil
		})
		if err != nil {
			return err
		}
		if err := l.quantizer.Train(projected); err != nil {
			return err
		}
	}

	l.projection = projection
	l.trained = true

	l.logger.Info("lsh trained",
		slog.Int("bits", l.opts.NumBits),
		slog.Int("dimension", l.opts.Dimension),
		slog.Bool("train_thresholds", l.opts.TrainThresholds),
		slog.Int("training_points", len(vectors)))

	return nil
}

// Add encodes vectors and returns their ids.
func (l *LSH) Add(ctx context.Context, vectors [][]float32) ([]model.ID, error) {
	if !l.trained {
		return nil, index.ErrNotTrained
	}
	if err := index.ValidateVectors(l.opts.Dimension, vectors); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	first := l.Len()
	if err := l.grow(len(vectors)); err != nil {
		return nil, err
	}
	l.codes = l.codes[:(first+len(vectors))*l.words]

	err := parallel.For(ctx, l.opts.Controller, l.opts.Workers, len(vectors), func(lo, hi int) error {
		proj := make([]float32, l.opts.NumBits)
		for i := lo; i < hi; i++ {
			off := (first + i) * l.words
			l.encode(vectors[i], proj, l.codes[off:off+l.words])
		}
		return nil
	})
	if err != nil {
		l.codes = l.codes[:first*l.words]
		return nil, err
	}

	ids := make([]model.ID, len(vectors))
	for i := range ids {
		ids[i] = model.ID(first + i)
	}

	l.logger.Debug("vectors added",
		slog.Int("count", len(ids)),
		slog.Int("total", l.Len()))

	return ids, nil
}

// Code returns the packed code of vector id.
func (l *LSH) Code(id model.ID) ([]uint64, error) {
	if id < 0 || int(id) >= l.Len() {
		return nil, index.InvalidArgument("id %d out of range [0, %d)", id, l.Len())
	}
	off := int(id) * l.words
	return l.codes[off : off+l.words : off+l.words], nil
}

// Encode returns the code of v without adding it.
func (l *LSH) Encode(v []float32) ([]uint64, error) {
	if !l.trained {
		return nil, index.ErrNotTrained
	}
	if err := index.ValidateVector(l.opts.Dimension, v); err != nil {
		return nil, err
	}
	code := make([]uint64, l.words)
	l.encode(v, make([]float32, l.opts.NumBits), code)
	return code, nil
}

// Search returns the k codes closest to the query code in Hamming distance.
// The distance field of each result is the Hamming distance.
func (l *LSH) Search(query []float32, k int, opts ...index.SearchOption) ([]index.SearchResult, error) {
	if !l.trained {
		return nil, index.ErrNotTrained
	}
	if err := index.ValidateK(k); err != nil {
		return nil, err
	}
	if err := index.ValidateVector(l.opts.Dimension, query); err != nil {
		return nil, err
	}

	n := l.Len()
	if n == 0 {
		return []index.SearchResult{}, nil
	}

	so := index.ApplySearchOptions(opts)

	qcode := make([]uint64, l.words)
	l.encode(query, make([]float32, l.opts.NumBits), qcode)

	h := searcher.GetHeap(min(k, n))
	defer searcher.PutHeap(h)

	for i := 0; i < n; i++ {
		id := model.ID(i)
		if !so.Allowed(id) {
			continue
		}
		off := i * l.words
		d := distance.Hamming(qcode, l.codes[off:off+l.words])
		h.Push(model.Candidate{ID: id, Distance: float32(d)})
	}

	return h.Drain(make([]index.SearchResult, 0, h.Len())), nil
}

// BatchSearch runs Search for every query in parallel.
func (l *LSH) BatchSearch(ctx context.Context, queries [][]float32, k int, opts ...index.SearchOption) (*index.BatchResult, error) {
	if !l.trained {
		return nil, index.ErrNotTrained
	}
	return index.SearchBatch(ctx, l.opts.Controller, l.opts.Workers, l.opts.Dimension, l.Len(), queries, k, l.Search, opts...)
}

// MemoryUsage returns the bytes reserved for codes and the projection.
func (l *LSH) MemoryUsage() int64 {
	return int64(cap(l.codes))*8 + int64(len(l.projection))*4
}

// encode projects v into proj and quantizes it into dst.
func (l *LSH) encode(v []float32, proj []float32, dst []uint64) {
	project(l.projection, l.opts.Dimension, index.PrepareVector(l.opts.Metric, v), proj)
	l.quantizer.EncodeInto(dst, proj)
}

// grow ensures capacity for n more codes.
func (l *LSH) grow(n int) error {
	need := len(l.codes) + n*l.words
	if need <= cap(l.codes) {
		return nil
	}

	newCap := max(need, 2*cap(l.codes), minGrow*l.words)
	delta := int64(newCap-cap(l.codes)) * 8
	if err := l.opts.Controller.AcquireMemory(delta); err != nil {
		return err
	}

	buf := mem.AllocAlignedUint64(newCap)[:len(l.codes)]
	copy(buf, l.codes)
	l.codes = buf
	return nil
}

// project computes out[j] = <projection row j, v>.
func project(projection []float32, dim int, v []float32, out []float32) {
	simd.DotBatch(v, projection, dim, out)
}

// gaussianMatrix draws n standard normal values from seed.
func gaussianMatrix(seed uint64, n int) []float32 {
	rng := rand.New(rand.NewPCG(seed, seed))
	m := make([]float32, n)
	for i := range m {
		m[i] = float32(rng.NormFloat64())
	}
	return m
}
