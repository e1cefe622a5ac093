package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/model"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.Equal(t, 32, cap(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(0.0))
}

func TestUniformRangeVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformRangeVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(-1.0))
}

func TestUnitVectors(t *testing.T) {
	rng := NewRNG(4711)

	for _, vec := range rng.UnitVectors(8, 32) {
		var sum float32
		for _, val := range vec {
			sum += val * val
		}
		assert.InDelta(t, float32(1.0), sum, 1e-5)
	}
}

func TestClusteredVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.ClusteredVectors(100, 32, 5, 0.1)

	assert.Equal(t, 100, len(v))
	assert.Equal(t, 32, len(v[0]))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10)
	rng.Reset()
	v2 := rng.UniformVectors(1, 10)
	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestExactTopK(t *testing.T) {
	vectors := [][]float32{{0, 0}, {3, 0}, {1, 0}, {1, 0}}

	got := ExactTopK([]float32{0, 0}, vectors, 3, distance.MetricL2)
	assert.Equal(t, []model.ID{0, 2, 3}, IDs(got))
	assert.Equal(t, float32(1), got[1].Distance)

	all := ExactTopK([]float32{0, 0}, vectors, 10, distance.MetricL2)
	assert.Len(t, all, 4)

	ang := ExactTopK([]float32{2, 0}, [][]float32{{0, 5}, {7, 0}}, 1, distance.MetricAngular)
	assert.Equal(t, model.ID(1), ang[0].ID)
	assert.InDelta(t, 0, ang[0].Distance, 1e-6)
}

func TestComputeRecall(t *testing.T) {
	assert.Equal(t, 1.0, ComputeRecall(nil, nil))
	assert.Equal(t, 0.0, ComputeRecall([]model.ID{1}, nil))
	assert.Equal(t, 0.5, ComputeRecall([]model.ID{1, 2}, []model.ID{2, 3}))
	assert.Equal(t, 1.0, ComputeRecall([]model.ID{1, 2}, []model.ID{2, 1}))
}
