package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/vecann/internal/mem"
	"github.com/hupe1980/vecann/internal/resource"
	"github.com/hupe1980/vecann/model"
)

var (
	// ErrWrongDimension is returned when a vector doesn't match the store dimension.
	ErrWrongDimension = errors.New("wrong vector dimension")

	// ErrOutOfRange is returned by Get for ids that were never added.
	ErrOutOfRange = errors.New("vector id out of range")
)

// minGrow is the smallest growth step in vectors.
const minGrow = 64

// Store is a dense N×dim float32 buffer. Ids are positions.
type Store struct {
	dim  int
	data []float32 // len = Len()*dim

	ctrl     *resource.Controller
	reserved int64 // bytes charged to ctrl
}

// New creates an empty store for dim-dimensional vectors.
// ctrl may be nil, in which case memory is not accounted.
func New(dim int, ctrl *resource.Controller) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vectorstore: dimension must be positive, got %d", dim)
	}
	return &Store{dim: dim, ctrl: ctrl}, nil
}

// Dimension returns the vector dimension.
func (s *Store) Dimension() int { return s.dim }

// Len returns the number of stored vectors.
func (s *Store) Len() int { return len(s.data) / s.dim }

// Size returns the number of bytes reserved by the store.
func (s *Store) Size() int64 { return int64(cap(s.data)) * 4 }

// RawData returns the contiguous vector data. The slice aliases the store
// and must not be modified.
func (s *Store) RawData() []float32 { return s.data }

// Get returns vector id. The slice aliases the store.
func (s *Store) Get(id model.ID) ([]float32, error) {
	if id < 0 || int(id) >= s.Len() {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, id, s.Len())
	}
	off := int(id) * s.dim
	return s.data[off : off+s.dim : off+s.dim], nil
}

// Append adds a single vector and returns its id.
func (s *Store) Append(ctx context.Context, v []float32) (model.ID, error) {
	ids, err := s.Add(ctx, [][]float32{v})
	if err != nil {
		return model.NoID, err
	}
	return ids[0], nil
}

// Add appends vectors in order and returns their ids. Every vector is
// validated first; on error the store is unchanged.
func (s *Store) Add(ctx context.Context, vectors [][]float32) ([]model.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, v := range vectors {
		if len(v) != s.dim {
			return nil, fmt.Errorf("%w: vector %d has %d, want %d", ErrWrongDimension, i, len(v), s.dim)
		}
	}
	if len(vectors) == 0 {
		return []model.ID{}, nil
	}

	if err := s.grow(len(vectors)); err != nil {
		return nil, err
	}

	first := s.Len()
	ids := make([]model.ID, len(vectors))
	for i, v := range vectors {
		s.data = append(s.data, v...)
		ids[i] = model.ID(first + i)
	}
	return ids, nil
}

// AddFlat appends n = len(data)/dim vectors stored contiguously in data.
func (s *Store) AddFlat(ctx context.Context, data []float32) ([]model.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data)%s.dim != 0 {
		return nil, fmt.Errorf("%w: flat length %d is not a multiple of %d", ErrWrongDimension, len(data), s.dim)
	}
	n := len(data) / s.dim
	if err := s.grow(n); err != nil {
		return nil, err
	}
	first := s.Len()
	s.data = append(s.data, data...)
	ids := make([]model.ID, n)
	for i := range ids {
		ids[i] = model.ID(first + i)
	}
	return ids, nil
}

// Mark is a point a store can be rolled back to.
type Mark struct {
	n        int
	capacity int
}

// Mark records the current length and capacity.
func (s *Store) Mark() Mark {
	return Mark{n: s.Len(), capacity: cap(s.data)}
}

// Rollback drops every vector added after m and returns the memory
// reserved since m to the controller.
func (s *Store) Rollback(m Mark) {
	if m.n < s.Len() {
		s.data = s.data[:m.n*s.dim]
	}
	if cap(s.data) <= m.capacity {
		return
	}

	delta := int64(cap(s.data)-m.capacity) * 4
	buf := mem.AllocAlignedFloat32(m.capacity)
	if buf != nil {
		buf = buf[:len(s.data)]
		copy(buf, s.data)
	}
	s.data = buf

	s.ctrl.ReleaseMemory(delta)
	s.reserved -= delta
}

// Release returns the reserved memory to the controller and empties the store.
func (s *Store) Release() {
	s.ctrl.ReleaseMemory(s.reserved)
	s.reserved = 0
	s.data = nil
}

// grow ensures capacity for n more vectors, reallocating into a fresh
// aligned buffer when needed.
func (s *Store) grow(n int) error {
	need := len(s.data) + n*s.dim
	if need <= cap(s.data) {
		return nil
	}

	newCap := max(need, 2*cap(s.data), minGrow*s.dim)
	delta := int64(newCap-cap(s.data)) * 4
	if err := s.ctrl.AcquireMemory(delta); err != nil {
		return err
	}
	s.reserved += delta

	buf := mem.AllocAlignedFloat32(newCap)[:len(s.data)]
	copy(buf, s.data)
	s.data = buf
	return nil
}
