package searcher

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/hupe1980/vecann/model"
	"github.com/stretchr/testify/assert"
)

func TestCandidateHeap(t *testing.T) {
	t.Run("KeepsBestK", func(t *testing.T) {
		h := NewCandidateHeap(2)
		h.Push(model.Candidate{ID: 1, Distance: 10})
		h.Push(model.Candidate{ID: 2, Distance: 5})
		assert.Equal(t, 2, h.Len())
		assert.True(t, h.Push(model.Candidate{ID: 3, Distance: 1}))
		assert.False(t, h.Push(model.Candidate{ID: 4, Distance: 20}))

		got := h.Drain(nil)
		assert.Equal(t, []model.Candidate{{ID: 3, Distance: 1}, {ID: 2, Distance: 5}}, got)
		assert.Equal(t, 0, h.Len())
	})

	t.Run("TiesBreakByID", func(t *testing.T) {
		h := NewCandidateHeap(2)
		h.Push(model.Candidate{ID: 9, Distance: 1})
		h.Push(model.Candidate{ID: 5, Distance: 1})
		h.Push(model.Candidate{ID: 7, Distance: 1})
		h.Push(model.Candidate{ID: 1, Distance: 1})

		got := h.Drain(nil)
		assert.Equal(t, []model.Candidate{{ID: 1, Distance: 1}, {ID: 5, Distance: 1}}, got)
	})

	t.Run("ZeroK", func(t *testing.T) {
		h := NewCandidateHeap(0)
		assert.False(t, h.Push(model.Candidate{ID: 1}))
		assert.Zero(t, h.Len())
		assert.Empty(t, h.Drain(nil))
	})

	t.Run("DrainAppends", func(t *testing.T) {
		h := NewCandidateHeap(3)
		h.Push(model.Candidate{ID: 0, Distance: 2})
		h.Push(model.Candidate{ID: 1, Distance: 1})
		got := h.Drain([]model.Candidate{{ID: 42}})
		assert.Equal(t, []model.Candidate{{ID: 42}, {ID: 1, Distance: 1}, {ID: 0, Distance: 2}}, got)
	})
}

func TestCandidateHeapMatchesSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	all := make([]model.Candidate, 500)
	for i := range all {
		// Coarse distances force plenty of ties.
		all[i] = model.Candidate{ID: model.ID(i), Distance: float32(rng.Intn(50))}
	}

	for _, k := range []int{1, 7, 50, 500, 600} {
		h := GetHeap(k)
		for _, c := range all {
			h.Push(c)
		}
		got := h.Drain(nil)
		PutHeap(h)

		want := append([]model.Candidate(nil), all...)
		sort.Slice(want, func(i, j int) bool { return want[i].Less(want[j]) })
		want = want[:min(k, len(want))]

		assert.Equal(t, want, got, "k=%d", k)
	}
}

func TestScratch(t *testing.T) {
	s := GetScratch()
	defer PutScratch(s)

	buf := s.Floats(10)
	assert.Len(t, buf, 10)
	buf = s.Floats(3)
	assert.Len(t, buf, 3)
	assert.GreaterOrEqual(t, cap(buf), 10)
}
