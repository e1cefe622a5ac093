package index

import (
	"context"

	"github.com/hupe1980/vecann/internal/parallel"
	"github.com/hupe1980/vecann/internal/resource"
	"github.com/hupe1980/vecann/model"
)

// BatchResult is a dense nq×K result matrix. Rows with fewer than K hits
// are padded with model.NoID and +Inf distances.
type BatchResult struct {
	K         int
	IDs       []model.ID
	Distances []float32

	rows int
}

// NewBatchResult allocates a padded result for nq queries of width k.
func NewBatchResult(nq, k int) *BatchResult {
	br := &BatchResult{
		K:         k,
		IDs:       make([]model.ID, nq*k),
		Distances: make([]float32, nq*k),
		rows:      nq,
	}
	for i := range br.IDs {
		br.IDs[i] = model.EmptyCandidate.ID
		br.Distances[i] = model.EmptyCandidate.Distance
	}
	return br
}

// Len returns the number of queries.
func (b *BatchResult) Len() int {
	return b.rows
}

// SetRow writes results into row i. Results beyond K are ignored.
func (b *BatchResult) SetRow(i int, results []SearchResult) {
	base := i * b.K
	for j, r := range results {
		if j >= b.K {
			break
		}
		b.IDs[base+j] = r.ID
		b.Distances[base+j] = r.Distance
	}
}

// Row returns the valid hits of row i, skipping padding.
func (b *BatchResult) Row(i int) []SearchResult {
	base := i * b.K
	out := make([]SearchResult, 0, b.K)
	for j := 0; j < b.K; j++ {
		if id := b.IDs[base+j]; id.Valid() {
			out = append(out, SearchResult{ID: id, Distance: b.Distances[base+j]})
		}
	}
	return out
}

// RowIDs returns the valid ids of row i, skipping padding.
func (b *BatchResult) RowIDs(i int) []model.ID {
	base := i * b.K
	out := make([]model.ID, 0, b.K)
	for _, id := range b.IDs[base : base+b.K] {
		if id.Valid() {
			out = append(out, id)
		}
	}
	return out
}

// SearchFunc answers a single query.
type SearchFunc func(query []float32, k int, opts ...SearchOption) ([]SearchResult, error)

// SearchBatch fans queries out over workers and collects the rows in input
// order. size is the number of vectors held by the index; rows are at most
// min(k, size) wide. Any error discards the whole batch.
func SearchBatch(ctx context.Context, ctrl *resource.Controller, workers int, dim int, size int, queries [][]float32, k int, search SearchFunc, opts ...SearchOption) (*BatchResult, error) {
	if err := ValidateK(k); err != nil {
		return nil, err
	}
	if err := ValidateVectors(dim, queries); err != nil {
		return nil, err
	}

	br := NewBatchResult(len(queries), min(k, max(size, 0)))
	err := parallel.For(ctx, ctrl, workers, len(queries), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			res, err := search(queries[i], k, opts...)
			if err != nil {
				return err
			}
			br.SetRow(i, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return br, nil
}
