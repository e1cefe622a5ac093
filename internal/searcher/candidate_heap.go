package searcher

import (
	"sync"

	"github.com/hupe1980/vecann/model"
)

// worse reports whether a ranks after b: larger distance, or same distance and larger ID.
func worse(a, b model.Candidate) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.ID > b.ID
}

// CandidateHeap keeps the k best candidates seen so far.
// The root is the worst retained candidate, so a new candidate is admitted
// in O(log k) only when it beats the root.
// It does NOT implement container/heap to avoid interface overhead.
type CandidateHeap struct {
	k     int
	items []model.Candidate
}

// NewCandidateHeap creates a heap retaining at most k candidates.
func NewCandidateHeap(k int) *CandidateHeap {
	return &CandidateHeap{
		k:     k,
		items: make([]model.Candidate, 0, k),
	}
}

// Reset clears the heap for reuse with a new bound.
func (h *CandidateHeap) Reset(k int) {
	h.k = k
	if cap(h.items) < k {
		h.items = make([]model.Candidate, 0, k)
		return
	}
	h.items = h.items[:0]
}

// Len returns the number of retained candidates.
func (h *CandidateHeap) Len() int { return len(h.items) }

// Push offers a candidate. It reports whether the candidate was retained.
func (h *CandidateHeap) Push(c model.Candidate) bool {
	if h.k <= 0 {
		return false
	}
	if len(h.items) < h.k {
		h.items = append(h.items, c)
		h.siftUp(len(h.items) - 1)
		return true
	}
	if !worse(h.items[0], c) {
		return false
	}
	h.items[0] = c
	h.siftDown(0)
	return true
}

// Drain empties the heap into dst in ascending (distance, id) order and
// returns the extended slice.
func (h *CandidateHeap) Drain(dst []model.Candidate) []model.Candidate {
	n := len(h.items)
	start := len(dst)
	for range n {
		dst = append(dst, model.Candidate{})
	}
	for i := n - 1; i >= 0; i-- {
		dst[start+i] = h.pop()
	}
	return dst
}

func (h *CandidateHeap) pop() model.Candidate {
	n := len(h.items)
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *CandidateHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !worse(h.items[i], h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *CandidateHeap) siftDown(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && worse(h.items[right], h.items[left]) {
			child = right
		}
		if !worse(h.items[child], h.items[i]) {
			break
		}
		h.items[i], h.items[child] = h.items[child], h.items[i]
		i = child
	}
}

var heapPool = sync.Pool{
	New: func() any { return NewCandidateHeap(16) },
}

// GetHeap returns a pooled heap reset to bound k. Call PutHeap when done.
func GetHeap(k int) *CandidateHeap {
	h := heapPool.Get().(*CandidateHeap)
	h.Reset(k)
	return h
}

// PutHeap returns a heap to the pool.
func PutHeap(h *CandidateHeap) {
	if h == nil {
		return
	}
	h.items = h.items[:0]
	heapPool.Put(h)
}
