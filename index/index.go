package index

import (
	"context"
	"math"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/model"
)

// Kind identifies an index implementation in snapshots.
type Kind uint8

const (
	KindFlat Kind = 1
	KindLSH  Kind = 2
	KindIVF  Kind = 3
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "Flat"
	case KindLSH:
		return "LSH"
	case KindIVF:
		return "IVF"
	default:
		return "Unknown"
	}
}

// SearchResult is a single (id, distance) hit.
type SearchResult = model.Candidate

// Index represents an index for vector search.
type Index interface {
	// Kind identifies the implementation.
	Kind() Kind

	// Dimension returns the configured vector dimension.
	Dimension() int

	// Metric returns the distance metric fixed at construction.
	Metric() distance.Metric

	// Len returns the number of added vectors.
	Len() int

	// IsTrained reports whether the index accepts Add and Search.
	IsTrained() bool

	// Train fits the index structure to vectors.
	Train(ctx context.Context, vectors [][]float32) error

	// Add appends vectors and returns their ids in input order.
	Add(ctx context.Context, vectors [][]float32) ([]model.ID, error)

	// Search returns up to k nearest neighbors in ascending (distance, id) order.
	Search(query []float32, k int, opts ...SearchOption) ([]SearchResult, error)

	// BatchSearch runs Search for every query. Row i of the result equals
	// Search(queries[i], k, opts...), padded with model.NoID.
	BatchSearch(ctx context.Context, queries [][]float32, k int, opts ...SearchOption) (*BatchResult, error)

	// MarshalBinary encodes the index for persistence.
	MarshalBinary() ([]byte, error)
}

// ValidateK returns ErrInvalidK if k is not positive.
func ValidateK(k int) error {
	if k <= 0 {
		return ErrInvalidK
	}
	return nil
}

// ValidateVector checks that v has dimension dim and only finite values.
func ValidateVector(dim int, v []float32) error {
	if len(v) != dim {
		return &ErrDimensionMismatch{Expected: dim, Actual: len(v)}
	}
	for i, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return InvalidArgument("non-finite value %v at position %d", x, i)
		}
	}
	return nil
}

// ValidateVectors checks every vector before any of them is used, so a bad
// batch is rejected as a whole.
func ValidateVectors(dim int, vectors [][]float32) error {
	for _, v := range vectors {
		if err := ValidateVector(dim, v); err != nil {
			return err
		}
	}
	return nil
}

// PrepareVector returns the form of v that is stored or compared under m.
// For MetricAngular this is a normalized copy; otherwise v itself.
// Caller data is never modified.
func PrepareVector(m distance.Metric, v []float32) []float32 {
	if !m.RequiresNormalization() {
		return v
	}
	out, _ := distance.NormalizeL2Copy(v)
	return out
}

// PrepareVectors applies PrepareVector to every vector.
func PrepareVectors(m distance.Metric, vectors [][]float32) [][]float32 {
	if !m.RequiresNormalization() {
		return vectors
	}
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		out[i] = PrepareVector(m, v)
	}
	return out
}
