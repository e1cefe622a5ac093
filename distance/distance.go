// Package distance provides the public API for vector distance calculations.
// All distance functions use the kernels from internal/simd.
package distance

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/vecann/internal/simd"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	return simd.Dot(a, b)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	return simd.SquaredL2(a, b)
}

// Angular returns 1 - <a, b>.
//
// Both inputs must already be L2-normalized; Angular does not renormalize.
// Rounding noise that would produce a negative value is clamped to 0.
func Angular(a, b []float32) float32 {
	return angularFromDot(simd.Dot(a, b))
}

func angularFromDot(dot float32) float32 {
	d := 1 - dot
	if d < 0 {
		return 0
	}
	return d
}

// Hamming returns the number of differing bits between two packed binary codes.
// Assumes slices are the same length.
func Hamming(a, b []uint64) int {
	return simd.Hamming(a, b)
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := simd.Dot(v, v)
	if norm2 == 0 {
		return false
	}
	simd.ScaleInPlace(v, 1/simd.Sqrt(norm2))
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// The second return value is false if src has zero L2 norm, in which case
// the returned slice is an unmodified copy.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	return dst, NormalizeL2InPlace(dst)
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	// MetricL2 is the squared Euclidean distance.
	MetricL2 Metric = iota
	// MetricAngular is 1 - cosine similarity over unit-length vectors.
	MetricAngular
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricAngular:
		return "Angular"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Validate returns an error if m is not a supported metric.
func (m Metric) Validate() error {
	switch m {
	case MetricL2, MetricAngular:
		return nil
	default:
		return fmt.Errorf("unsupported metric: %v", m)
	}
}

// RequiresNormalization reports whether vectors must be unit length before
// they are stored or compared under m.
func (m Metric) RequiresNormalization() bool {
	return m == MetricAngular
}

// ParseMetric parses the metric names used by benchmark datasets.
// "euclidean" and "l2" map to MetricL2; "angular" and "cosine" to MetricAngular.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euclidean", "l2":
		return MetricL2, nil
	case "angular", "cosine":
		return MetricAngular, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", s)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Distance computes the distance between a and b under m.
// Unknown metrics fall back to MetricL2.
func Distance(m Metric, a, b []float32) float32 {
	if m == MetricAngular {
		return Angular(a, b)
	}
	return SquaredL2(a, b)
}

// BatchFunc computes the distance from query to each of the len(out)
// vectors stored contiguously in targets.
type BatchFunc func(query, targets []float32, dim int, out []float32)

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return SquaredL2, nil
	case MetricAngular:
		return Angular, nil
	default:
		return nil, fmt.Errorf("unsupported metric for float32: %v", m)
	}
}

// BatchProvider returns the vectorized distance function for the given metric.
//
// For every i the batch result equals Provider(m)(query, targets[i*dim:(i+1)*dim]).
func BatchProvider(m Metric) (BatchFunc, error) {
	switch m {
	case MetricL2:
		return simd.SquaredL2Batch, nil
	case MetricAngular:
		return angularBatch, nil
	default:
		return nil, fmt.Errorf("unsupported metric for float32: %v", m)
	}
}

func angularBatch(query, targets []float32, dim int, out []float32) {
	simd.DotBatch(query, targets, dim, out)
	for i, dot := range out {
		out[i] = angularFromDot(dot)
	}
}
