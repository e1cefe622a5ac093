package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-5)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 27},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, 8},
		{"Empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SquaredL2(tt.a, tt.b), 1e-5)
		})
	}
}

func TestAngular(t *testing.T) {
	x := []float32{1, 0}
	y := []float32{0, 1}
	negX := []float32{-1, 0}

	assert.InDelta(t, 0, Angular(x, x), 1e-6)
	assert.InDelta(t, 1, Angular(x, y), 1e-6)
	assert.InDelta(t, 2, Angular(x, negX), 1e-6)

	// Slightly over-unit inputs must not produce negative distances.
	big := []float32{1.0000001, 0}
	assert.GreaterOrEqual(t, Angular(big, big), float32(0))
}

func TestHamming(t *testing.T) {
	assert.Equal(t, 0, Hamming([]uint64{0xAA55}, []uint64{0xAA55}))
	assert.Equal(t, 16, Hamming([]uint64{0xFF00}, []uint64{0x00FF}))
	assert.Equal(t, 0, Hamming(nil, nil))
}

func TestNormalizeL2Copy(t *testing.T) {
	src := []float32{3, 4}
	dst, ok := NormalizeL2Copy(src)
	require.True(t, ok)
	assert.InDelta(t, 0.6, dst[0], 1e-6)
	assert.InDelta(t, 0.8, dst[1], 1e-6)
	assert.Equal(t, []float32{3, 4}, src, "source must not be mutated")

	zero, ok := NormalizeL2Copy([]float32{0, 0})
	assert.False(t, ok)
	assert.Equal(t, []float32{0, 0}, zero)

	assert.False(t, NormalizeL2InPlace(nil))
}

func TestNormalizeProducesUnitLength(t *testing.T) {
	v := []float32{1, 2, 3, 4, 5, 6, 7}
	require.True(t, NormalizeL2InPlace(v))
	assert.InDelta(t, 1.0, math.Sqrt(float64(Dot(v, v))), 1e-5)
}

func TestProvider(t *testing.T) {
	fn, err := Provider(MetricL2)
	require.NoError(t, err)
	assert.Equal(t, float32(25), fn([]float32{0, 0}, []float32{3, 4}))

	fn, err = Provider(MetricAngular)
	require.NoError(t, err)
	assert.InDelta(t, 1, fn([]float32{1, 0}, []float32{0, 1}), 1e-6)

	assert.Equal(t, float32(25), Distance(MetricL2, []float32{0, 0}, []float32{3, 4}))
	assert.InDelta(t, 0, Distance(MetricAngular, []float32{1, 0}, []float32{1, 0}), 1e-6)

	_, err = Provider(Metric(99))
	assert.Error(t, err)
	_, err = BatchProvider(Metric(99))
	assert.Error(t, err)
}

func TestBatchProviderMatchesProvider(t *testing.T) {
	query, _ := NormalizeL2Copy([]float32{0.3, -0.2, 0.9})
	targets := []float32{}
	for _, v := range [][]float32{{1, 0, 0}, {0, 1, 0}, {0.5, 0.5, 0.5}, {-1, 2, -3}} {
		u, _ := NormalizeL2Copy(v)
		targets = append(targets, u...)
	}

	for _, m := range []Metric{MetricL2, MetricAngular} {
		t.Run(m.String(), func(t *testing.T) {
			single, err := Provider(m)
			require.NoError(t, err)
			batch, err := BatchProvider(m)
			require.NoError(t, err)

			out := make([]float32, 4)
			batch(query, targets, 3, out)
			for i := range out {
				assert.Equal(t, single(query, targets[i*3:(i+1)*3]), out[i])
			}
		})
	}
}

func TestMetric(t *testing.T) {
	assert.Equal(t, "L2", MetricL2.String())
	assert.Equal(t, "Angular", MetricAngular.String())
	assert.Equal(t, "Unknown(7)", Metric(7).String())

	assert.NoError(t, MetricL2.Validate())
	assert.Error(t, Metric(7).Validate())
	assert.True(t, MetricAngular.RequiresNormalization())
	assert.False(t, MetricL2.RequiresNormalization())

	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"euclidean", MetricL2, false},
		{"L2", MetricL2, false},
		{" angular ", MetricAngular, false},
		{"cosine", MetricAngular, false},
		{"hamming", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMetric(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
