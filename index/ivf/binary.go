package ivf

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/internal/binenc"
	"github.com/hupe1980/vecann/internal/kmeans"
	"github.com/hupe1980/vecann/model"
)

func init() {
	index.RegisterBinaryLoader(index.KindIVF, func(data []byte) (index.Index, error) {
		return Load(data)
	})
}

// MarshalBinary encodes the configuration, centroids and inverted lists.
// Diagnostic counters are not persisted.
func (idx *IVF) MarshalBinary() ([]byte, error) {
	size := 96 + len(idx.centroids)*4
	for _, l := range idx.lists {
		size += 16 + len(l.ids)*8 + len(l.vectors.RawData())*4
	}

	w := binenc.NewWriter(size)
	w.Int(idx.opts.Dimension)
	w.Uint8(uint8(idx.opts.Metric))
	w.Int(idx.opts.NumLists)
	w.Int(idx.NumProbe())
	w.Int(idx.opts.MaxIterations)
	w.Int(idx.opts.MaxPointsPerCentroid)
	w.Uint64(idx.opts.Seed)
	w.Uint8(uint8(idx.opts.KMeansInit))
	w.Bool(idx.IsTrained())
	if !idx.IsTrained() {
		return w.Bytes(), nil
	}

	w.Float32s(idx.centroids)
	for _, l := range idx.lists {
		ids := make([]int64, len(l.ids))
		for i, id := range l.ids {
			ids[i] = int64(id)
		}
		w.Int64s(ids)
		w.Float32s(l.vectors.RawData())
	}
	return w.Bytes(), nil
}

// Load decodes an IVF index written by MarshalBinary. optFns may set
// runtime options; encoded parameters always win.
func Load(data []byte, optFns ...func(o *Options)) (*IVF, error) {
	r := binenc.NewReader(data)
	dim := r.Int()
	metric := distance.Metric(r.Uint8())
	nlist := r.Int()
	nprobe := r.Int()
	maxIter := r.Int()
	maxPts := r.Int()
	seed := r.Uint64()
	seeding := kmeans.Init(r.Uint8())
	trained := r.Bool()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("ivf: decode: %w", err)
	}

	idx, err := New(append(slices.Clone(optFns), func(o *Options) {
		o.Dimension = dim
		o.Metric = metric
		o.NumLists = nlist
		o.NumProbe = nprobe
		o.MaxIterations = maxIter
		o.MaxPointsPerCentroid = maxPts
		o.Seed = seed
		o.KMeansInit = seeding
	})...)
	if err != nil {
		return nil, fmt.Errorf("ivf: decode: %w", err)
	}
	if !trained {
		return idx, nil
	}

	centroids := r.Float32s()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("ivf: decode: %w", err)
	}
	if len(centroids) != nlist*dim {
		return nil, fmt.Errorf("ivf: decode: %d centroid values, want %d", len(centroids), nlist*dim)
	}
	if err := idx.build(centroids); err != nil {
		return nil, fmt.Errorf("ivf: decode: %w", err)
	}

	for li, l := range idx.lists {
		ids := r.Int64s()
		vectors := r.Float32s()
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("ivf: decode list %d: %w", li, err)
		}
		if len(vectors) != len(ids)*dim {
			return nil, fmt.Errorf("ivf: decode list %d: %d ids but %d values", li, len(ids), len(vectors))
		}
		if _, err := l.vectors.AddFlat(context.Background(), vectors); err != nil {
			return nil, fmt.Errorf("ivf: decode list %d: %w", li, err)
		}
		l.ids = make([]model.ID, len(ids))
		for i, id := range ids {
			l.ids[i] = model.ID(id)
		}
		idx.n += len(ids)
	}

	return idx, nil
}
