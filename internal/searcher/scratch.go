package searcher

import "sync"

// Scratch holds per-query buffers reused across searches.
type Scratch struct {
	Distances []float32
}

// Floats returns s.Distances resized to n, growing it if needed.
func (s *Scratch) Floats(n int) []float32 {
	if cap(s.Distances) < n {
		s.Distances = make([]float32, n)
	}
	s.Distances = s.Distances[:n]
	return s.Distances
}

var scratchPool = sync.Pool{
	New: func() any { return &Scratch{} },
}

// GetScratch returns a pooled scratch area.
func GetScratch() *Scratch {
	return scratchPool.Get().(*Scratch)
}

// PutScratch returns a scratch area to the pool.
func PutScratch(s *Scratch) {
	if s == nil {
		return
	}
	scratchPool.Put(s)
}
