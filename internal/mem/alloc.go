package mem

import "unsafe"

// Alignment is the byte alignment of every buffer returned by this package.
const Alignment = 64

// Aligned returns a zeroed slice of n elements whose first element starts on
// an Alignment boundary. It returns nil for n <= 0.
func Aligned[T float32 | uint64](n int) []T {
	if n <= 0 {
		return nil
	}
	size := int(unsafe.Sizeof(T(0)))
	pad := Alignment / size

	buf := make([]T, n+pad)
	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // address is only inspected
	skip := int((Alignment-addr%Alignment)%Alignment) / size
	return buf[skip : skip+n : skip+n]
}

// AllocAlignedFloat32 allocates an aligned float32 slice of length n.
func AllocAlignedFloat32(n int) []float32 { return Aligned[float32](n) }

// AllocAlignedUint64 allocates an aligned uint64 slice of length n.
func AllocAlignedUint64(n int) []uint64 { return Aligned[uint64](n) }
