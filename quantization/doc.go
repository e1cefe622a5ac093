// Package quantization provides binary quantization of projected vectors.
//
// A BinaryQuantizer turns a float32 vector into packed bits: bit i is set
// when v[i] >= threshold[i]. Codes are stored as ceil(dimension/64) uint64
// words, bit i in word i/64 at position i%64, so Hamming distance is a
// popcount of XOR over words.
//
//	bq := quantization.NewBinaryQuantizer(64)
//	_ = bq.Train(projections) // per-dimension median thresholds
//	code := make([]uint64, bq.Words())
//	bq.EncodeInto(code, projected) // 64 floats → 1 word
//
// Thresholds default to 0 (sign-based quantization).
package quantization
