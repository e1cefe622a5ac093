package lsh

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/model"
	"github.com/hupe1980/vecann/testutil"
)

func newLSH(t *testing.T, dim, bits int, optFns ...func(o *Options)) *LSH {
	t.Helper()
	l, err := New(append([]func(o *Options){func(o *Options) {
		o.Dimension = dim
		o.NumBits = bits
	}}, optFns...)...)
	require.NoError(t, err)
	return l
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		dim  int
		bits int
	}{
		{"zero bits", 4, 0},
		{"negative bits", 4, -8},
		{"zero dimension", 0, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(func(o *Options) {
				o.Dimension = tt.dim
				o.NumBits = tt.bits
			})
			assert.ErrorIs(t, err, index.ErrInvalidArgument)
		})
	}

	l := newLSH(t, 4, 70)
	assert.Equal(t, index.KindLSH, l.Kind())
	assert.Equal(t, 70, l.NumBits())
	assert.False(t, l.IsTrained())
}

func TestNotTrained(t *testing.T) {
	ctx := context.Background()
	l := newLSH(t, 4, 8)

	_, err := l.Add(ctx, [][]float32{{1, 2, 3, 4}})
	assert.ErrorIs(t, err, index.ErrNotTrained)
	_, err = l.Search([]float32{1, 2, 3, 4}, 1)
	assert.ErrorIs(t, err, index.ErrNotTrained)
	_, err = l.BatchSearch(ctx, [][]float32{{1, 2, 3, 4}}, 1)
	assert.ErrorIs(t, err, index.ErrNotTrained)
	_, err = l.Encode([]float32{1, 2, 3, 4})
	assert.ErrorIs(t, err, index.ErrNotTrained)

	require.NoError(t, l.Train(ctx, nil))
	assert.ErrorIs(t, l.Train(ctx, nil), index.ErrAlreadyTrained)
}

func TestCodeDeterminism(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(11)
	data := rng.GaussianVectors(20, 16)

	a := newLSH(t, 16, 100)
	require.NoError(t, a.Train(ctx, data))
	b := newLSH(t, 16, 100)
	require.NoError(t, b.Train(ctx, data))

	for _, v := range data {
		ca, err := a.Encode(v)
		require.NoError(t, err)
		cb, err := b.Encode(slices.Clone(v))
		require.NoError(t, err)
		assert.Equal(t, ca, cb, "same seed and input must give the same code")
		assert.Zero(t, distance.Hamming(ca, ca))
		assert.Len(t, ca, 2)
	}
}

func TestSelfQuery(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(42)
	data := rng.GaussianVectors(100, 16)

	l := newLSH(t, 16, 8)
	require.NoError(t, l.Train(ctx, data))
	ids, err := l.Add(ctx, data)
	require.NoError(t, err)
	require.Len(t, ids, 100)

	firstWithCode := map[uint64]model.ID{}
	for _, id := range ids {
		code, err := l.Code(id)
		require.NoError(t, err)
		if _, ok := firstWithCode[code[0]]; !ok {
			firstWithCode[code[0]] = id
		}
	}

	selfHits := 0
	for i, v := range data {
		res, err := l.Search(v, 1)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Zero(t, res[0].Distance)

		code, err := l.Code(model.ID(i))
		require.NoError(t, err)
		// Equal codes tie at distance 0 and resolve to the lowest id.
		assert.Equal(t, firstWithCode[code[0]], res[0].ID)
		if res[0].ID == model.ID(i) {
			selfHits++
		}
	}
	assert.Equal(t, len(firstWithCode), selfHits)
}

func TestSearchOrdering(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(3)
	data := rng.GaussianVectors(200, 8)

	l := newLSH(t, 8, 64)
	require.NoError(t, l.Train(ctx, data))
	_, err := l.Add(ctx, data)
	require.NoError(t, err)

	q := rng.GaussianVectors(1, 8)[0]
	res, err := l.Search(q, 50)
	require.NoError(t, err)
	require.Len(t, res, 50)

	qcode, err := l.Encode(q)
	require.NoError(t, err)
	for i, r := range res {
		code, err := l.Code(r.ID)
		require.NoError(t, err)
		assert.Equal(t, float32(distance.Hamming(qcode, code)), r.Distance)
		if i > 0 {
			assert.False(t, r.Less(res[i-1]))
		}
	}

	_, err = l.Search(q, 0)
	assert.ErrorIs(t, err, index.ErrInvalidK)
	_, err = l.Search(q[:3], 1)
	assert.IsType(t, &index.ErrDimensionMismatch{}, err)

	filtered, err := l.Search(q, 5, index.WithFilter(index.FilterBitmap(7)))
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, model.ID(7), filtered[0].ID)
}

func TestTrainThresholds(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(8)
	data := rng.UniformVectors(101, 8)

	l := newLSH(t, 8, 16, func(o *Options) { o.TrainThresholds = true })
	require.ErrorIs(t, l.Train(ctx, nil), index.ErrInvalidArgument)
	require.NoError(t, l.Train(ctx, data))

	nonZero := 0
	for _, th := range l.Thresholds() {
		if th != 0 {
			nonZero++
		}
	}
	assert.Positive(t, nonZero)

	_, err := l.Add(ctx, data)
	require.NoError(t, err)

	// Every bit splits the training set at its median.
	for b := 0; b < 16; b++ {
		set := 0
		for i := range data {
			code, err := l.Code(model.ID(i))
			require.NoError(t, err)
			if code[0]&(1<<b) != 0 {
				set++
			}
		}
		assert.Equal(t, 51, set, "bit %d", b)
	}
}

func TestAngularScaleInvariance(t *testing.T) {
	ctx := context.Background()
	l := newLSH(t, 4, 32, func(o *Options) {
		o.Metric = distance.MetricAngular
		o.TrainThresholds = true
	})
	rng := testutil.NewRNG(1)
	require.NoError(t, l.Train(ctx, rng.GaussianVectors(50, 4)))

	v := []float32{1, -2, 3, 0.5}
	scaled := []float32{10, -20, 30, 5}
	a, err := l.Encode(v)
	require.NoError(t, err)
	b, err := l.Encode(scaled)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, []float32{1, -2, 3, 0.5}, v)
}

func TestBatchSearchMatchesSearch(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(21)
	data := rng.GaussianVectors(150, 12)

	l := newLSH(t, 12, 24, func(o *Options) { o.Workers = 3 })
	require.NoError(t, l.Train(ctx, data))
	_, err := l.Add(ctx, data)
	require.NoError(t, err)

	queries := rng.GaussianVectors(40, 12)
	br, err := l.BatchSearch(ctx, queries, 7)
	require.NoError(t, err)
	for i, q := range queries {
		res, err := l.Search(q, 7)
		require.NoError(t, err)
		assert.Equal(t, res, br.Row(i))
	}
}

func TestMarshalBinary(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(77)
	data := rng.GaussianVectors(60, 6)

	l := newLSH(t, 6, 12, func(o *Options) { o.TrainThresholds = true })
	require.NoError(t, l.Train(ctx, data))
	_, err := l.Add(ctx, data)
	require.NoError(t, err)

	payload, err := l.MarshalBinary()
	require.NoError(t, err)

	loaded, err := index.LoadBinary(index.KindLSH, payload)
	require.NoError(t, err)
	require.True(t, loaded.IsTrained())
	assert.Equal(t, 60, loaded.Len())

	q := rng.GaussianVectors(1, 6)[0]
	want, err := l.Search(q, 10)
	require.NoError(t, err)
	got, err := loaded.Search(q, 10)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Loaded index keeps accepting vectors.
	ids, err := loaded.Add(ctx, data[:1])
	require.NoError(t, err)
	assert.Equal(t, []model.ID{60}, ids)

	_, err = Load(payload[:len(payload)-3])
	assert.Error(t, err)
}
