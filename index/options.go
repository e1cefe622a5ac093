package index

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecann/model"
)

// SearchOptions controls the execution of a single search.
type SearchOptions struct {
	// Filter restricts candidates to the ids in the bitmap. Nil means all ids.
	Filter *roaring.Bitmap

	// NumProbe overrides the configured number of probed lists (IVF only).
	// 0 keeps the index setting.
	NumProbe int
}

// SearchOption configures a search.
type SearchOption func(*SearchOptions)

// WithFilter restricts a search to the ids contained in filter.
func WithFilter(filter *roaring.Bitmap) SearchOption {
	return func(o *SearchOptions) {
		o.Filter = filter
	}
}

// WithNumProbe overrides nprobe for a single IVF search.
func WithNumProbe(n int) SearchOption {
	return func(o *SearchOptions) {
		o.NumProbe = n
	}
}

// ApplySearchOptions folds opts into a SearchOptions value.
func ApplySearchOptions(opts []SearchOption) SearchOptions {
	var o SearchOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Allowed reports whether id passes the filter.
func (o *SearchOptions) Allowed(id model.ID) bool {
	if o.Filter == nil {
		return true
	}
	if id < 0 || id > math.MaxUint32 {
		return false
	}
	return o.Filter.Contains(uint32(id))
}

// FilterBitmap builds a filter bitmap from ids. Ids outside the uint32
// range are ignored.
func FilterBitmap(ids ...model.ID) *roaring.Bitmap {
	bm := roaring.New()
	for _, id := range ids {
		if id >= 0 && id <= math.MaxUint32 {
			bm.Add(uint32(id))
		}
	}
	return bm
}
