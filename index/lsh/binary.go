package lsh

import (
	"fmt"
	"slices"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/internal/binenc"
)

func init() {
	index.RegisterBinaryLoader(index.KindLSH, func(data []byte) (index.Index, error) {
		return Load(data)
	})
}

// MarshalBinary encodes the configuration, projection, thresholds and codes.
func (l *LSH) MarshalBinary() ([]byte, error) {
	w := binenc.NewWriter(64 + len(l.projection)*4 + len(l.codes)*8)
	w.Int(l.opts.Dimension)
	w.Uint8(uint8(l.opts.Metric))
	w.Int(l.opts.NumBits)
	w.Uint64(l.opts.Seed)
	w.Bool(l.opts.TrainThresholds)
	w.Bool(l.trained)
	w.Float32s(l.projection)
	w.Float32s(l.quantizer.Thresholds())
	w.Uint64s(l.codes)
	return w.Bytes(), nil
}

// Load decodes an LSH index written by MarshalBinary. optFns may set
// runtime options; encoded parameters always win.
func Load(data []byte, optFns ...func(o *Options)) (*LSH, error) {
	r := binenc.NewReader(data)
	dim := r.Int()
	metric := distance.Metric(r.Uint8())
	nBits := r.Int()
	seed := r.Uint64()
	trainThresholds := r.Bool()
	trained := r.Bool()
	projection := r.Float32s()
	thresholds := r.Float32s()
	codes := r.Uint64s()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("lsh: decode: %w", err)
	}

	l, err := New(append(slices.Clone(optFns), func(o *Options) {
		o.Dimension = dim
		o.Metric = metric
		o.NumBits = nBits
		o.Seed = seed
		o.TrainThresholds = trainThresholds
	})...)
	if err != nil {
		return nil, fmt.Errorf("lsh: decode: %w", err)
	}

	if trained && len(projection) != nBits*dim {
		return nil, fmt.Errorf("lsh: decode: projection has %d values, want %d", len(projection), nBits*dim)
	}
	if len(codes)%l.words != 0 {
		return nil, fmt.Errorf("lsh: decode: %d code words is not a multiple of %d", len(codes), l.words)
	}
	if err := l.quantizer.SetThresholds(thresholds); err != nil {
		return nil, fmt.Errorf("lsh: decode: %w", err)
	}

	l.trained = trained
	l.projection = projection
	if err := l.grow(len(codes) / l.words); err != nil {
		return nil, err
	}
	l.codes = append(l.codes, codes...)

	return l, nil
}
