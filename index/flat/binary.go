package flat

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/internal/binenc"
)

func init() {
	index.RegisterBinaryLoader(index.KindFlat, func(data []byte) (index.Index, error) {
		return Load(data)
	})
}

// MarshalBinary encodes the index configuration and stored vectors.
func (f *Flat) MarshalBinary() ([]byte, error) {
	data := f.store.RawData()

	w := binenc.NewWriter(32 + len(data)*4)
	w.Int(f.opts.Dimension)
	w.Uint8(uint8(f.opts.Metric))
	w.Bool(f.opts.Prenormalized)
	w.Float32s(data)

	return w.Bytes(), nil
}

// Load decodes a flat index written by MarshalBinary. optFns may set
// runtime options (workers, controller, logger); the encoded dimension and
// metric always win.
func Load(data []byte, optFns ...func(o *Options)) (*Flat, error) {
	r := binenc.NewReader(data)
	dim := r.Int()
	metric := distance.Metric(r.Uint8())
	prenormalized := r.Bool()
	vectors := r.Float32s()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("flat: decode: %w", err)
	}

	f, err := New(append(slices.Clone(optFns), func(o *Options) {
		o.Dimension = dim
		o.Metric = metric
		o.Prenormalized = prenormalized
	})...)
	if err != nil {
		return nil, fmt.Errorf("flat: decode: %w", err)
	}

	if _, err := f.store.AddFlat(context.Background(), vectors); err != nil {
		return nil, fmt.Errorf("flat: decode: %w", err)
	}
	return f, nil
}
