package ivf

// Stats holds IVF search diagnostics.
type Stats struct {
	// Queries is the number of searches since the last reset.
	Queries int64

	// DistanceComputations counts true distances evaluated while scanning
	// inverted lists.
	DistanceComputations int64

	// QuantizerComputations counts distances to centroids (NumLists per query).
	QuantizerComputations int64

	// ListSizes holds the number of vectors in each inverted list.
	ListSizes []int
}

// ImbalanceFactor returns k·Σsize²/n² over the list sizes: 1 for perfectly
// balanced lists, larger when a few lists hold most vectors. 0 when empty.
func (s Stats) ImbalanceFactor() float64 {
	var n, sq float64
	for _, size := range s.ListSizes {
		f := float64(size)
		n += f
		sq += f * f
	}
	if n == 0 {
		return 0
	}
	return float64(len(s.ListSizes)) * sq / (n * n)
}

// Stats returns a snapshot of the diagnostic counters.
func (idx *IVF) Stats() Stats {
	sizes := make([]int, len(idx.lists))
	for i, l := range idx.lists {
		sizes[i] = len(l.ids)
	}
	return Stats{
		Queries:               idx.queries.Load(),
		DistanceComputations:  idx.distComps.Load(),
		QuantizerComputations: idx.quantizerComps.Load(),
		ListSizes:             sizes,
	}
}

// ResetStats zeroes the search counters.
func (idx *IVF) ResetStats() {
	idx.queries.Store(0)
	idx.distComps.Store(0)
	idx.quantizerComps.Store(0)
}
