// Package lsh implements random-hyperplane locality-sensitive hashing.
//
// Training draws a Gaussian projection matrix with one hyperplane per bit.
// Each vector is projected onto every hyperplane and bit j of its code is
// set when projection j reaches threshold j. Thresholds are 0 by default or
// the per-bit median of the training projections when TrainThresholds is
// enabled. Search ranks all codes by Hamming distance to the query code.
//
// Codes are packed into ceil(NumBits/64) uint64 words per vector and stored
// contiguously.
package lsh
