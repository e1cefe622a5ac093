// Package distance provides vector distance calculations.
//
// # Supported Metrics
//
//   - MetricL2: Squared Euclidean distance (default)
//   - MetricAngular: 1 - dot product of L2-normalized vectors
//
// Normalization for MetricAngular is the caller's job. Indexes normalize a copy
// of each vector once at insert time and each query once at search time; the
// metric functions never renormalize.
//
// # Usage
//
//	dist := distance.SquaredL2(a, b)
//	unit, ok := distance.NormalizeL2Copy(vec)
//	fn, _ := distance.Provider(distance.MetricAngular)
package distance
