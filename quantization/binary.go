package quantization

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNoTrainingData is returned by Train when no vectors are given.
var ErrNoTrainingData = errors.New("no vectors provided for training")

// BinaryQuantizer implements binary quantization (1 bit per dimension).
//
// Values >= the threshold of their dimension become 1, otherwise 0.
// Distance between codes is the Hamming distance.
type BinaryQuantizer struct {
	dimension  int       // Expected vector dimension
	thresholds []float32 // Per-dimension thresholds
}

// NewBinaryQuantizer creates a new binary quantizer for the given dimension.
// The default threshold is 0.0 for every dimension (sign-based quantization).
func NewBinaryQuantizer(dimension int) *BinaryQuantizer {
	return &BinaryQuantizer{
		dimension:  dimension,
		thresholds: make([]float32, dimension),
	}
}

// SetThresholds sets per-dimension thresholds.
func (bq *BinaryQuantizer) SetThresholds(thresholds []float32) error {
	if len(thresholds) != bq.dimension {
		return fmt.Errorf("thresholds: expected %d values, got %d", bq.dimension, len(thresholds))
	}
	copy(bq.thresholds, thresholds)
	return nil
}

// Train sets every dimension's threshold to the median of that dimension
// over vectors, so each bit splits the training data in half.
// For an even count the median is the mean of the two middle values.
func (bq *BinaryQuantizer) Train(vectors [][]float32) error {
	if len(vectors) == 0 {
		return ErrNoTrainingData
	}
	for i, v := range vectors {
		if len(v) != bq.dimension {
			return fmt.Errorf("training vector %d: expected dimension %d, got %d", i, bq.dimension, len(v))
		}
	}

	column := make([]float32, len(vectors))
	for d := 0; d < bq.dimension; d++ {
		for i, v := range vectors {
			column[i] = v[d]
		}
		slices.Sort(column)

		mid := len(column) / 2
		if len(column)%2 == 1 {
			bq.thresholds[d] = column[mid]
		} else {
			bq.thresholds[d] = (column[mid-1] + column[mid]) / 2
		}
	}

	return nil
}

// Words returns the number of uint64 words per code.
func (bq *BinaryQuantizer) Words() int {
	return (bq.dimension + 63) / 64
}

// EncodeInto writes the code of v into dst, which must hold Words() words.
func (bq *BinaryQuantizer) EncodeInto(dst []uint64, v []float32) {
	clear(dst)
	for i, val := range v[:bq.dimension] {
		if val >= bq.thresholds[i] {
			dst[i/64] |= 1 << (i % 64)
		}
	}
}

// Thresholds returns the per-dimension thresholds. The slice aliases the
// quantizer and must not be modified.
func (bq *BinaryQuantizer) Thresholds() []float32 {
	return bq.thresholds
}
