package testutil

import (
	"log/slog"
	"sort"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/model"
)

// ExactTopK returns the k nearest vectors to query by brute force, ordered
// by ascending (distance, id). Angular inputs are normalized on copies.
func ExactTopK(query []float32, vectors [][]float32, k int, metric distance.Metric) []model.Candidate {
	q := query
	if metric.RequiresNormalization() {
		q, _ = distance.NormalizeL2Copy(query)
	}

	results := make([]model.Candidate, len(vectors))
	for i, v := range vectors {
		if metric.RequiresNormalization() {
			v, _ = distance.NormalizeL2Copy(v)
		}
		results[i] = model.Candidate{ID: model.ID(i), Distance: distance.Distance(metric, q, v)}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Less(results[j])
	})

	if k < len(results) {
		results = results[:k]
	}
	return results
}

// IDs extracts the ids of results.
func IDs(results []model.Candidate) []model.ID {
	ids := make([]model.ID, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

// ComputeRecall computes recall@k by comparing approximate ids against ground truth.
func ComputeRecall(groundTruth, approximate []model.ID) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))

	truthSet := make(map[model.ID]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i]] = struct{}{}
	}

	hits := 0
	for _, id := range approximate {
		if _, ok := truthSet[id]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
