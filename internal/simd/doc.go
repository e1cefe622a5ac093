// Package simd provides the vector kernels used by every distance computation.
//
// # Kernel Selection
//
// Runtime CPU feature detection (golang.org/x/sys/cpu) selects the kernel
// table once at init. Wide ISAs (AVX2, AVX-512, NEON, SVE2) get the
// multi-accumulator kernels, which the Go compiler schedules across the
// available FP ports; everything else gets the plain scalar loops.
//
// Set VECANN_SIMD=generic to force the scalar kernels.
//
// # Operations
//
//   - Distance: Dot, SquaredL2
//   - Batch: DotBatch, SquaredL2Batch
//   - Binary codes: Hamming (popcount over packed uint64 words)
//   - Utility: ScaleInPlace, Sqrt
//
// All callers within one process observe the same kernel table, so results are
// bit-for-bit reproducible between single and batched paths.
package simd
