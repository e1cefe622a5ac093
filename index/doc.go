// Package index defines the contract shared by every vector index.
//
// vecann supports three index types:
//
//   - Flat: exact nearest neighbor search (exhaustive scan)
//   - LSH: random-hyperplane binary codes ranked by Hamming distance
//   - IVF: k-means coarse quantizer plus inverted lists, scanning nprobe lists
//
// # Index Selection
//
//   - Flat: correctness oracle, small collections, 100% recall
//   - LSH: very compact codes, coarse ranking
//   - IVF: large collections; recall grows with nprobe, reaching exactness
//     at nprobe = nlist
//
// # Lifecycle
//
// An index is built once with Train followed by one or more Add calls, then
// queried with Search and BatchSearch. Indexes are single-writer: concurrent
// searches are safe once Add calls have stopped.
//
// # Results
//
// Search returns at most k results in ascending (distance, id) order.
// BatchSearch returns a fixed-width BatchResult whose short rows are padded
// with model.NoID.
//
// # Subpackages
//
//   - flat: exhaustive search
//   - lsh: locality-sensitive hashing
//   - ivf: inverted file index
package index
