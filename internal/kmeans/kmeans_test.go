package kmeans

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/testutil"
)

func TestTrain(t *testing.T) {
	ctx := context.Background()
	// 2 clusters: (0,0) and (10,10)
	vecs := []float32{
		0, 0, 0, 1, 1, 0, // near 0,0
		10, 10, 10, 11, 11, 10, // near 10,10
	}

	res, err := Train(ctx, vecs, 2, 2, func(o *Options) { o.MaxIterations = 100 })
	require.NoError(t, err)
	assert.Len(t, res.Centroids, 4)
	assert.True(t, res.Converged)
	assert.Equal(t, []int{3, 3}, res.Sizes(2))

	p1, err := AssignPartition([]float32{0.5, 0.5}, res.Centroids, 2, distance.MetricL2)
	require.NoError(t, err)
	p2, err := AssignPartition([]float32{10.5, 10.5}, res.Centroids, 2, distance.MetricL2)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)

	assert.Equal(t, res.Assignments[0], p1)
	assert.Equal(t, res.Assignments[5], p2)
}

func TestTrain_InvalidInput(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		vecs    []float32
		dim, k  int
		opt     func(o *Options)
		wantErr error
	}{
		{"too few points", []float32{0, 0}, 2, 2, nil, ErrTooFewPoints},
		{"ragged input", []float32{0, 0, 1}, 2, 1, nil, ErrInvalidInput},
		{"zero dim", []float32{0, 0}, 0, 1, nil, ErrInvalidInput},
		{"zero k", []float32{0, 0}, 2, 0, nil, ErrInvalidInput},
		{"bad metric", []float32{0, 0}, 2, 1, func(o *Options) { o.Metric = distance.Metric(999) }, ErrInvalidInput},
		{"zero iterations", []float32{0, 0}, 2, 1, func(o *Options) { o.MaxIterations = 0 }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []func(o *Options)
			if tt.opt != nil {
				opts = append(opts, tt.opt)
			}
			_, err := Train(ctx, tt.vecs, tt.dim, tt.k, opts...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTrain_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vecs := make([]float32, 1000*2)
	for i := range vecs {
		vecs[i] = float32(i)
	}

	_, err := Train(ctx, vecs, 2, 10, func(o *Options) { o.MaxIterations = 1000 })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrain_AssignmentOptimality(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(7)
	const n, dim, k = 500, 8, 12

	for _, metric := range []distance.Metric{distance.MetricL2, distance.MetricAngular} {
		for _, init := range []Init{InitRandom, InitKMeansPlusPlus} {
			t.Run(metric.String()+"/"+init.String(), func(t *testing.T) {
				vecs := rng.UniformVectorsFlat(n, dim)
				res, err := Train(ctx, vecs, dim, k, func(o *Options) {
					o.Metric = metric
					o.Init = init
					o.MaxIterations = 5
				})
				require.NoError(t, err)
				require.Len(t, res.Assignments, n)
				require.LessOrEqual(t, res.Iterations, 5)

				for i := 0; i < n; i++ {
					v := vecs[i*dim : (i+1)*dim]
					assigned := res.Assignments[i]
					dAssigned := distance.Distance(metric, v, res.Centroids[assigned*dim:(assigned+1)*dim])
					for c := 0; c < k; c++ {
						d := distance.Distance(metric, v, res.Centroids[c*dim:(c+1)*dim])
						assert.LessOrEqual(t, dAssigned, d, "point %d assigned to %d but %d is closer", i, assigned, c)
						if d == dAssigned {
							assert.LessOrEqual(t, assigned, c, "tie must go to lowest index")
							break
						}
					}
				}

				if metric == distance.MetricAngular {
					for c := 0; c < k; c++ {
						row := res.Centroids[c*dim : (c+1)*dim]
						norm := math.Sqrt(float64(distance.Dot(row, row)))
						assert.InDelta(t, 1.0, norm, 1e-4)
					}
				}
			})
		}
	}
}

func TestTrain_Deterministic(t *testing.T) {
	ctx := context.Background()
	vecs := testutil.NewRNG(3).UniformVectorsFlat(300, 4)

	a, err := Train(ctx, vecs, 4, 8, func(o *Options) { o.Workers = 1 })
	require.NoError(t, err)
	b, err := Train(ctx, vecs, 4, 8, func(o *Options) { o.Workers = 8 })
	require.NoError(t, err)

	assert.Equal(t, a.Centroids, b.Centroids)
	assert.Equal(t, a.Assignments, b.Assignments)
}

func TestTrain_EmptyClusterRecovery(t *testing.T) {
	ctx := context.Background()
	// Three copies of the origin plus three points on a line.
	vecs := []float32{
		0, 0,
		0, 0,
		0, 0,
		1, 0,
		2, 0,
		3, 0,
	}

	res, err := Train(ctx, vecs, 2, 4, func(o *Options) {
		o.Init = InitKMeansPlusPlus
		o.MaxIterations = 10
	})
	require.NoError(t, err)
	assert.Len(t, res.Centroids, 8)
	assert.GreaterOrEqual(t, res.EmptyClusterRecoveries, 0)

	total := 0
	for _, s := range res.Sizes(4) {
		total += s
	}
	assert.Equal(t, 6, total)
}

func TestRepairEmpty(t *testing.T) {
	tr := &trainer{
		vectors:     []float32{0, 0, 1, 0, 5, 0},
		n:           3,
		dim:         2,
		k:           2,
		opts:        DefaultOptions,
		logger:      testutil.DiscardLogger(),
		centroids:   []float32{2, 0, 100, 100},
		assignments: []int{0, 0, 0},
		counts:      []int{3, 0},
	}
	tr.dist, _ = distance.Provider(distance.MetricL2)

	assert.Equal(t, 1, tr.repairEmpty())
	assert.Equal(t, []float32{5, 0}, tr.centroids[2:4])
	assert.Equal(t, []int{0, 0, 1}, tr.assignments)
	assert.Equal(t, []int{2, 1}, tr.counts)

	t.Run("non-finite distances", func(t *testing.T) {
		nan := float32(math.NaN())
		tr := &trainer{
			vectors:     []float32{nan, 0, 1, nan, nan, nan},
			n:           3,
			dim:         2,
			k:           2,
			opts:        DefaultOptions,
			logger:      testutil.DiscardLogger(),
			centroids:   []float32{nan, nan, 0, 0},
			assignments: []int{0, 0, 0},
			counts:      []int{3, 0},
		}
		tr.dist, _ = distance.Provider(distance.MetricL2)

		assert.NotPanics(t, func() {
			assert.Equal(t, 1, tr.repairEmpty())
		})
		assert.Equal(t, []int{1, 0, 0}, tr.assignments)
		assert.Equal(t, []int{2, 1}, tr.counts)
	})
}

func TestAssignPartition_Error(t *testing.T) {
	_, err := AssignPartition([]float32{0, 0}, []float32{0, 0}, 2, distance.Metric(999))
	assert.Error(t, err)

	_, err = AssignPartition([]float32{0, 0}, nil, 2, distance.MetricL2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
