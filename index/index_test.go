package index

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/model"
)

type mockIndex struct {
	dim int
}

func (m *mockIndex) Kind() Kind              { return Kind(250) }
func (m *mockIndex) Dimension() int          { return m.dim }
func (m *mockIndex) Metric() distance.Metric { return distance.MetricL2 }
func (m *mockIndex) Len() int                { return 0 }
func (m *mockIndex) IsTrained() bool         { return true }
func (m *mockIndex) Train(ctx context.Context, vectors [][]float32) error {
	return nil
}
func (m *mockIndex) Add(ctx context.Context, vectors [][]float32) ([]model.ID, error) {
	return nil, nil
}
func (m *mockIndex) Search(q []float32, k int, opts ...SearchOption) ([]SearchResult, error) {
	return nil, nil
}
func (m *mockIndex) BatchSearch(ctx context.Context, q [][]float32, k int, opts ...SearchOption) (*BatchResult, error) {
	return nil, nil
}
func (m *mockIndex) MarshalBinary() ([]byte, error) { return []byte{byte(m.dim)}, nil }

func TestBinaryRegistry(t *testing.T) {
	kind := Kind(250)
	called := false
	RegisterBinaryLoader(kind, func(data []byte) (Index, error) {
		called = true
		return &mockIndex{dim: int(data[0])}, nil
	})

	idx, err := LoadBinary(kind, []byte{7})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 7, idx.Dimension())

	_, err = LoadBinary(Kind(251), nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Flat", KindFlat.String())
	assert.Equal(t, "LSH", KindLSH.String())
	assert.Equal(t, "IVF", KindIVF.String())
	assert.Equal(t, "Unknown", Kind(0).String())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, ValidateK(1))
	assert.ErrorIs(t, ValidateK(0), ErrInvalidK)
	assert.ErrorIs(t, ValidateK(-3), ErrInvalidArgument)

	assert.NoError(t, ValidateVector(2, []float32{1, 2}))
	assert.ErrorIs(t, ValidateVector(2, []float32{1, float32(math.NaN())}), ErrInvalidArgument)
	assert.ErrorIs(t, ValidateVector(2, []float32{float32(math.Inf(-1)), 0}), ErrInvalidArgument)
	assert.ErrorIs(t, ValidateVectors(2, [][]float32{{1, 2}, {float32(math.Inf(1)), 0}}), ErrInvalidArgument)

	err := ValidateVectors(2, [][]float32{{1, 2}, {1, 2, 3}})
	var dm *ErrDimensionMismatch
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)
	assert.Equal(t, "dimension mismatch: expected 2, got 3", err.Error())
}

func TestPrepareVector(t *testing.T) {
	t.Run("L2 returns input", func(t *testing.T) {
		v := []float32{3, 4}
		out := PrepareVector(distance.MetricL2, v)
		assert.Equal(t, &v[0], &out[0])
	})

	t.Run("Angular normalizes a copy", func(t *testing.T) {
		v := []float32{3, 4}
		out := PrepareVector(distance.MetricAngular, v)
		assert.Equal(t, []float32{3, 4}, v)
		assert.InDelta(t, 0.6, out[0], 1e-6)
		assert.InDelta(t, 0.8, out[1], 1e-6)
	})

	t.Run("Angular keeps zero vector", func(t *testing.T) {
		out := PrepareVectors(distance.MetricAngular, [][]float32{{0, 0}})
		assert.Equal(t, []float32{0, 0}, out[0])
	})
}

func TestSearchOptions(t *testing.T) {
	o := ApplySearchOptions(nil)
	assert.True(t, o.Allowed(5))
	assert.Equal(t, 0, o.NumProbe)

	o = ApplySearchOptions([]SearchOption{WithFilter(FilterBitmap(1, 3, -1)), WithNumProbe(4)})
	assert.True(t, o.Allowed(1))
	assert.False(t, o.Allowed(2))
	assert.True(t, o.Allowed(3))
	assert.False(t, o.Allowed(-1))
	assert.False(t, o.Allowed(model.ID(math.MaxUint32)+1))
	assert.Equal(t, 4, o.NumProbe)
}

func TestBatchResult(t *testing.T) {
	br := NewBatchResult(2, 3)
	assert.Equal(t, 2, br.Len())

	br.SetRow(0, []SearchResult{{ID: 4, Distance: 0.5}, {ID: 1, Distance: 1}})
	br.SetRow(1, []SearchResult{{ID: 0, Distance: 0}, {ID: 1, Distance: 1}, {ID: 2, Distance: 2}, {ID: 3, Distance: 3}})

	assert.Equal(t, []model.ID{4, 1, model.NoID}, br.IDs[:3])
	assert.True(t, math.IsInf(float64(br.Distances[2]), 1))
	assert.Equal(t, []model.ID{4, 1}, br.RowIDs(0))
	assert.Equal(t, []model.ID{0, 1, 2}, br.RowIDs(1))
	assert.Equal(t, []SearchResult{{ID: 4, Distance: 0.5}, {ID: 1, Distance: 1}}, br.Row(0))

	assert.Equal(t, 0, (&BatchResult{}).Len())
}

func TestSearchBatch(t *testing.T) {
	search := func(q []float32, k int, opts ...SearchOption) ([]SearchResult, error) {
		return []SearchResult{{ID: model.ID(q[0]), Distance: 0}}, nil
	}

	queries := make([][]float32, 100)
	for i := range queries {
		queries[i] = []float32{float32(i), 0}
	}

	br, err := SearchBatch(context.Background(), nil, 4, 2, len(queries), queries, 2, search)
	require.NoError(t, err)
	require.Equal(t, 100, br.Len())
	for i := range queries {
		assert.Equal(t, []model.ID{model.ID(i)}, br.RowIDs(i))
	}

	t.Run("k larger than size", func(t *testing.T) {
		br, err := SearchBatch(context.Background(), nil, 2, 2, 3, queries[:2], math.MaxInt, search)
		require.NoError(t, err)
		require.Equal(t, 2, br.Len())
		assert.Equal(t, 3, br.K)
		assert.Len(t, br.IDs, 6)
		assert.Equal(t, []model.ID{1}, br.RowIDs(1))
	})

	t.Run("empty index", func(t *testing.T) {
		br, err := SearchBatch(context.Background(), nil, 2, 2, 0, queries[:2], 5, search)
		require.NoError(t, err)
		assert.Equal(t, 2, br.Len())
		assert.Empty(t, br.IDs)
		assert.Empty(t, br.RowIDs(0))
	})

	t.Run("invalid k", func(t *testing.T) {
		_, err := SearchBatch(context.Background(), nil, 1, 2, len(queries), queries, 0, search)
		assert.ErrorIs(t, err, ErrInvalidK)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := SearchBatch(context.Background(), nil, 1, 3, len(queries), queries, 1, search)
		var dm *ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)
	})

	t.Run("search error", func(t *testing.T) {
		boom := errors.New("boom")
		failing := func(q []float32, k int, opts ...SearchOption) ([]SearchResult, error) {
			return nil, boom
		}
		_, err := SearchBatch(context.Background(), nil, 2, 2, len(queries), queries, 1, failing)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := SearchBatch(ctx, nil, 2, 2, len(queries), queries, 1, search)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
