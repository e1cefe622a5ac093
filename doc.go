// Package vecann provides nearest-neighbor search algorithms behind the small
// interface used by ANN benchmark harnesses.
//
// Three algorithms are available:
//
//   - Flat: exhaustive exact search, the recall oracle
//   - LSH: random-hyperplane binary codes ranked by Hamming distance
//   - IVF: k-means coarse quantizer with inverted lists; recall grows with
//     n_probe and is exact at n_probe = n_list
//
// # Quick Start
//
//	metric, err := vecann.ParseMetric("angular")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	algo, err := vecann.NewIVF(metric, 64, vecann.WithNumProbe(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := algo.Fit(ctx, train); err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := algo.Query(query, 10)
//
// Batch queries run in parallel and keep input order:
//
//	if err := algo.BatchQuery(ctx, queries, 10); err != nil {
//	    log.Fatal(err)
//	}
//	for i, ids := range algo.GetBatchResults() {
//	    fmt.Println(i, ids)
//	}
//
// Query-time tunables are set with SetQueryArguments. IVF takes n_probe;
// Flat and LSH take none:
//
//	if err := algo.SetQueryArguments(16); err != nil {
//	    log.Fatal(err)
//	}
//
// # Lifecycle
//
// Fit builds the index and may succeed only once per instance. Queries are
// safe to run concurrently after Fit returns. SetQueryArguments must not run
// concurrently with queries.
//
// # Persistence
//
// The fitted index is available through Index and can be written with the
// persistence package:
//
//	err := persistence.SaveToFile("ivf.vann", algo.Index(),
//	    persistence.WithCompression(persistence.CompressionZSTD))
//
// # Subpackages
//
//   - distance: L2 and Angular kernels
//   - index: shared index contract plus flat, lsh and ivf implementations
//   - persistence: snapshot codec
//   - quantization: sign quantizer used by LSH
//   - testutil: deterministic data generators and recall helpers
package vecann
