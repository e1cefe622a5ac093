// Package ivf implements an inverted file index with a k-means coarse
// quantizer.
//
// Train clusters a sample of the training data into NumLists centroids and
// builds a flat index over them. Add routes every vector to the inverted
// list of its nearest centroid. Search asks the quantizer for the NumProbe
// nearest centroids and scans only those lists with exact distances.
//
// Probe sets are nested: the first p lists probed with NumProbe = p are
// also probed with any larger value, so recall never decreases as NumProbe
// grows and NumProbe = NumLists gives exactly the flat result.
//
// # Lifecycle
//
//	StateUntrained --Train--> StateTrained --Search--> StateQueried
//
// Add and Search before Train fail with index.ErrNotTrained.
//
// # Diagnostics
//
// Stats reports the number of queries, the distance evaluations spent
// scanning lists and on the quantizer, and the list size distribution.
// SetNumProbe and ResetStats zero the counters.
package ivf
