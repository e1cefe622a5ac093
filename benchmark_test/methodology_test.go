package benchmark_test

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/hupe1980/vecann"
	"github.com/hupe1980/vecann/testutil"
)

// Benchmarks follow the same rules throughout:
//
//   - a warmup phase before the timer is reset
//   - a forced GC so setup garbage does not land in the measurement
//   - one query per b.N iteration, cycling through a fixed query set
//   - recall computed outside the timed loop and reported with ReportMetric

// WarmupIterations is the number of untimed iterations before measurement.
const WarmupIterations = 10

// BenchLoop runs fn once per iteration with i cycling over queryCount.
func BenchLoop(b *testing.B, queryCount int, fn func(i int)) {
	b.Helper()

	for i := 0; i < WarmupIterations; i++ {
		fn(i % queryCount)
	}
	runtime.GC()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; b.Loop(); i++ {
		fn(i % queryCount)
	}
}

// Dataset is a deterministic train/query split with exact ground truth.
type Dataset struct {
	Train   [][]float32
	Queries [][]float32
	Truth   [][]int64
}

// NewDataset generates clustered data so IVF lists carry real structure.
func NewDataset(b *testing.B, n, dim, numQueries, k int) *Dataset {
	b.Helper()

	rng := testutil.NewRNG(42)
	train := rng.ClusteredVectors(n, dim, 32, 0.25)
	queries := rng.ClusteredVectors(numQueries, dim, 32, 0.25)

	oracle, err := vecann.NewFlat(dim)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	if err := oracle.Fit(ctx, train); err != nil {
		b.Fatal(err)
	}
	if err := oracle.BatchQuery(ctx, queries, k); err != nil {
		b.Fatal(err)
	}

	return &Dataset{Train: train, Queries: queries, Truth: oracle.GetBatchResults()}
}

// Recall returns the mean recall of algo over the dataset queries.
func (d *Dataset) Recall(b *testing.B, algo vecann.Algorithm, k int) float64 {
	b.Helper()

	if err := algo.BatchQuery(context.Background(), d.Queries, k); err != nil {
		b.Fatal(err)
	}
	var sum float64
	for i, row := range algo.GetBatchResults() {
		sum += recallAtK(d.Truth[i], row)
	}
	return sum / float64(len(d.Queries))
}

func recallAtK(truth, got []int64) float64 {
	if len(truth) == 0 {
		return 1
	}
	want := make(map[int64]struct{}, len(truth))
	for _, id := range truth {
		want[id] = struct{}{}
	}
	hits := 0
	for _, id := range got {
		if _, ok := want[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

func formatDim(dim int) string {
	return fmt.Sprintf("dim=%d", dim)
}

func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("n=%dM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("n=%dK", n/1_000)
	default:
		return fmt.Sprintf("n=%d", n)
	}
}
