// Package binenc provides the little-endian primitives used by index
// MarshalBinary/UnmarshalBinary implementations.
package binenc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortBuffer is returned when a payload ends before a value is complete.
var ErrShortBuffer = errors.New("binenc: short buffer")

// Writer appends values to an in-memory buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded payload.
func (w *Writer) Bytes() []byte { return w.buf }

// Uint8 appends a byte.
func (w *Writer) Uint8(v uint8) { w.buf = append(w.buf, v) }

// Bool appends a bool as one byte.
func (w *Writer) Bool(v bool) {
	if v {
		w.Uint8(1)
		return
	}
	w.Uint8(0)
}

// Uint32 appends a uint32.
func (w *Writer) Uint32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

// Uint64 appends a uint64.
func (w *Writer) Uint64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

// Int64 appends an int64.
func (w *Writer) Int64(v int64) { w.Uint64(uint64(v)) }

// Int appends an int as int64.
func (w *Writer) Int(v int) { w.Int64(int64(v)) }

// Float32s appends a length-prefixed float32 slice.
func (w *Writer) Float32s(vs []float32) {
	w.Int(len(vs))
	for _, v := range vs {
		w.Uint32(math.Float32bits(v))
	}
}

// Uint64s appends a length-prefixed uint64 slice.
func (w *Writer) Uint64s(vs []uint64) {
	w.Int(len(vs))
	for _, v := range vs {
		w.Uint64(v)
	}
}

// Int64s appends a length-prefixed int64 slice.
func (w *Writer) Int64s(vs []int64) {
	w.Int(len(vs))
	for _, v := range vs {
		w.Int64(v)
	}
}

// Reader consumes values from a payload. The first failure sticks; check Err
// once after decoding.
type Reader struct {
	buf []byte
	err error
}

// NewReader creates a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Err returns the first decoding error.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.buf) {
		r.err = fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, len(r.buf))
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

// Uint8 reads a byte.
func (r *Reader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Bool reads a bool.
func (r *Reader) Bool() bool { return r.Uint8() != 0 }

// Uint32 reads a uint32.
func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Uint64 reads a uint64.
func (r *Reader) Uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Int64 reads an int64.
func (r *Reader) Int64() int64 { return int64(r.Uint64()) }

// Int reads an int stored as int64.
func (r *Reader) Int() int { return int(r.Int64()) }

func (r *Reader) length(elemSize int) int {
	n := r.Int()
	if r.err == nil && (n < 0 || n > len(r.buf)/elemSize) {
		r.err = fmt.Errorf("%w: slice of %d elements exceeds payload", ErrShortBuffer, n)
	}
	if r.err != nil {
		return 0
	}
	return n
}

// Float32s reads a length-prefixed float32 slice.
func (r *Reader) Float32s() []float32 {
	n := r.length(4)
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(r.Uint32())
	}
	return out
}

// Uint64s reads a length-prefixed uint64 slice.
func (r *Reader) Uint64s() []uint64 {
	n := r.length(8)
	out := make([]uint64, n)
	for i := range out {
		out[i] = r.Uint64()
	}
	return out
}

// Int64s reads a length-prefixed int64 slice.
func (r *Reader) Int64s() []int64 {
	n := r.length(8)
	out := make([]int64, n)
	for i := range out {
		out[i] = r.Int64()
	}
	return out
}
