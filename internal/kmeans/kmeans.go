package kmeans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/internal/parallel"
)

var (
	// ErrTooFewPoints is returned when there are fewer points than clusters.
	ErrTooFewPoints = errors.New("kmeans: fewer points than clusters")

	// ErrInvalidInput is returned for malformed training input.
	ErrInvalidInput = errors.New("kmeans: invalid input")
)

// Result holds a trained clustering.
type Result struct {
	// Centroids is the k×dim centroid matrix, row-major.
	Centroids []float32

	// Assignments maps every training point to its nearest centroid.
	Assignments []int

	// Iterations is the number of assignment passes run.
	Iterations int

	// Converged reports whether an iteration left every assignment unchanged.
	Converged bool

	// EmptyClusterRecoveries counts empty clusters repaired during training.
	EmptyClusterRecoveries int
}

// Sizes returns the number of points assigned to each cluster.
func (r *Result) Sizes(k int) []int {
	sizes := make([]int, k)
	for _, c := range r.Assignments {
		sizes[c]++
	}
	return sizes
}

// Train clusters n = len(vectors)/dim points into k clusters using Lloyd's
// algorithm. The context is checked between iterations.
//
// The returned assignments are always the nearest returned centroid for each
// point, with ties resolved to the lowest centroid index.
func Train(ctx context.Context, vectors []float32, dim, k int, optFns ...func(o *Options)) (*Result, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if dim <= 0 || len(vectors)%dim != 0 {
		return nil, fmt.Errorf("%w: %d values for dimension %d", ErrInvalidInput, len(vectors), dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidInput, k)
	}
	if opts.MaxIterations <= 0 {
		return nil, fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidInput, opts.MaxIterations)
	}
	if err := opts.Metric.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	n := len(vectors) / dim
	if n < k {
		return nil, fmt.Errorf("%w: %d points, %d clusters", ErrTooFewPoints, n, k)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	t := &trainer{
		vectors: vectors,
		n:       n,
		dim:     dim,
		k:       k,
		opts:    opts,
		logger:  logger,
		rng:     rand.New(rand.NewPCG(opts.Seed, opts.Seed)),
	}
	t.batch, _ = distance.BatchProvider(opts.Metric)
	t.dist, _ = distance.Provider(opts.Metric)

	return t.run(ctx)
}

type trainer struct {
	vectors []float32
	n, dim  int
	k       int
	opts    Options
	logger  *slog.Logger
	rng     *rand.Rand

	batch distance.BatchFunc
	dist  distance.Func

	centroids   []float32
	assignments []int
	counts      []int
}

func (t *trainer) run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch t.opts.Init {
	case InitKMeansPlusPlus:
		t.seedPlusPlus()
	default:
		t.seedRandom()
	}

	t.assignments = make([]int, t.n)
	for i := range t.assignments {
		t.assignments[i] = -1
	}
	t.counts = make([]int, t.k)
	sums := make([]float64, t.k*t.dim)

	res := &Result{}
	progress := rate.Sometimes{First: 1, Interval: time.Second}

	for iter := 0; iter < t.opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed, err := t.assign(ctx)
		if err != nil {
			return nil, err
		}
		res.Iterations = iter + 1

		progress.Do(func() {
			t.logger.Debug("kmeans iteration",
				slog.Int("iteration", res.Iterations),
				slog.Int("changed", changed),
				slog.Int("k", t.k),
				slog.Int("points", t.n))
		})

		if changed == 0 {
			res.Converged = true
			break
		}

		t.update(sums)
		res.EmptyClusterRecoveries += t.repairEmpty()
	}

	if !res.Converged {
		// Centroids moved after the last assignment pass.
		if _, err := t.assign(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
	}

	res.Centroids = t.centroids
	res.Assignments = t.assignments

	t.logger.Info("kmeans trained",
		slog.Int("k", t.k),
		slog.Int("points", t.n),
		slog.Int("iterations", res.Iterations),
		slog.Bool("converged", res.Converged),
		slog.Int("empty_cluster_recoveries", res.EmptyClusterRecoveries),
		slog.Duration("duration", time.Since(start)))

	return res, nil
}

func (t *trainer) row(i int) []float32 {
	return t.vectors[i*t.dim : (i+1)*t.dim]
}

func (t *trainer) centroid(c int) []float32 {
	return t.centroids[c*t.dim : (c+1)*t.dim]
}

func (t *trainer) setCentroid(c, point int) {
	copy(t.centroid(c), t.row(point))
}

// seedRandom picks k distinct points.
func (t *trainer) seedRandom() {
	t.centroids = make([]float32, t.k*t.dim)
	perm := t.rng.Perm(t.n)
	for c := 0; c < t.k; c++ {
		t.setCentroid(c, perm[c])
	}
}

// seedPlusPlus picks the first centroid uniformly and every next one with
// probability proportional to its distance from the nearest chosen centroid.
func (t *trainer) seedPlusPlus() {
	t.centroids = make([]float32, t.k*t.dim)
	chosen := make([]bool, t.n)

	first := t.rng.IntN(t.n)
	t.setCentroid(0, first)
	chosen[first] = true

	minDist := make([]float64, t.n)
	for i := range minDist {
		minDist[i] = float64(t.dist(t.row(i), t.centroid(0)))
	}

	for c := 1; c < t.k; c++ {
		total := 0.0
		for i, d := range minDist {
			if !chosen[i] {
				total += d
			}
		}

		selected := -1
		if total > 0 {
			target := t.rng.Float64() * total
			cum := 0.0
			for i, d := range minDist {
				if chosen[i] {
					continue
				}
				cum += d
				selected = i
				if cum >= target {
					break
				}
			}
		}
		if selected < 0 {
			// Every remaining point coincides with a centroid.
			selected = t.randomUnchosen(chosen)
		}

		t.setCentroid(c, selected)
		chosen[selected] = true
		for i := range minDist {
			if d := float64(t.dist(t.row(i), t.centroid(c))); d < minDist[i] {
				minDist[i] = d
			}
		}
	}
}

func (t *trainer) randomUnchosen(chosen []bool) int {
	offset := t.rng.IntN(t.n)
	for j := 0; j < t.n; j++ {
		i := (offset + j) % t.n
		if !chosen[i] {
			return i
		}
	}
	return offset
}

// assign moves every point to its nearest centroid and returns the number of
// points whose assignment changed.
func (t *trainer) assign(ctx context.Context) (int, error) {
	var changed atomic.Int64

	err := parallel.For(ctx, t.opts.Controller, t.opts.Workers, t.n, func(lo, hi int) error {
		dists := make([]float32, t.k)
		local := 0
		for i := lo; i < hi; i++ {
			best := nearest(t.batch, t.row(i), t.centroids, t.dim, dists)
			if t.assignments[i] != best {
				t.assignments[i] = best
				local++
			}
		}
		changed.Add(int64(local))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(changed.Load()), nil
}

// update recomputes every non-empty centroid as the mean of its members.
func (t *trainer) update(sums []float64) {
	clear(sums)
	clear(t.counts)

	for i, c := range t.assignments {
		v := t.row(i)
		s := sums[c*t.dim : (c+1)*t.dim]
		for d, x := range v {
			s[d] += float64(x)
		}
		t.counts[c]++
	}

	for c := 0; c < t.k; c++ {
		if t.counts[c] == 0 {
			continue
		}
		inv := 1 / float64(t.counts[c])
		dst := t.centroid(c)
		for d := range dst {
			dst[d] = float32(sums[c*t.dim+d] * inv)
		}
		if t.opts.Metric.RequiresNormalization() {
			distance.NormalizeL2InPlace(dst)
		}
	}
}

// repairEmpty reseeds every empty cluster with the member of the largest
// cluster that lies farthest from its centroid.
func (t *trainer) repairEmpty() int {
	repaired := 0
	for c := 0; c < t.k; c++ {
		if t.counts[c] > 0 {
			continue
		}

		largest := 0
		for j := 1; j < t.k; j++ {
			if t.counts[j] > t.counts[largest] {
				largest = j
			}
		}

		far, farDist := -1, float32(-1)
		for i, a := range t.assignments {
			if a != largest {
				continue
			}
			// NaN distances never compare greater, so take the first member.
			if d := t.dist(t.row(i), t.centroid(largest)); far < 0 || d > farDist {
				far, farDist = i, d
			}
		}

		t.setCentroid(c, far)
		t.assignments[far] = c
		t.counts[largest]--
		t.counts[c] = 1
		repaired++

		t.logger.Debug("kmeans empty cluster repaired",
			slog.Int("cluster", c),
			slog.Int("split_from", largest),
			slog.Int("point", far))
	}
	return repaired
}

// nearest returns the index of the closest centroid, lowest index on ties.
// dists must have room for every centroid.
func nearest(batch distance.BatchFunc, v, centroids []float32, dim int, dists []float32) int {
	k := len(centroids) / dim
	dists = dists[:k]
	batch(v, centroids, dim, dists)

	best := 0
	bestDist := float32(math.Inf(1))
	for c, d := range dists {
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// AssignPartition finds the closest centroid for a vector.
func AssignPartition(vec []float32, centroids []float32, dim int, metric distance.Metric) (int, error) {
	if dim <= 0 || len(centroids) < dim || len(centroids)%dim != 0 {
		return -1, fmt.Errorf("%w: %d centroid values for dimension %d", ErrInvalidInput, len(centroids), dim)
	}
	batch, err := distance.BatchProvider(metric)
	if err != nil {
		return -1, err
	}
	return nearest(batch, vec, centroids, dim, make([]float32, len(centroids)/dim)), nil
}
