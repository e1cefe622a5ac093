// Package kmeans implements Lloyd's k-means clustering used to train the
// coarse quantizer of the IVF index.
//
// Training is deterministic for a given seed and worker-count independent:
// the assignment step runs in parallel over disjoint ranges while the
// centroid update is a serial reduction. For the angular metric the
// centroids are renormalized after every update (spherical k-means).
//
// Empty clusters never fail training. They are repaired by splitting the
// largest cluster, and the number of repairs is reported in Result.
package kmeans
