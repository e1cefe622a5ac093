package ivf

import (
	"log/slog"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/internal/kmeans"
	"github.com/hupe1980/vecann/internal/resource"
)

// Options contains configuration options for the IVF index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	Dimension int

	// Metric is the distance metric. Angular inputs are normalized on copies.
	Metric distance.Metric

	// NumLists is the number of inverted lists (k-means clusters).
	NumLists int

	// NumProbe is the number of lists scanned per query, in [1, NumLists].
	NumProbe int

	// MaxIterations bounds k-means training.
	MaxIterations int

	// MaxPointsPerCentroid caps the training sample at
	// NumLists*MaxPointsPerCentroid points. 0 disables sampling.
	MaxPointsPerCentroid int

	// Seed makes sampling and k-means seeding deterministic.
	Seed uint64

	// KMeansInit selects the centroid seeding strategy.
	KMeansInit kmeans.Init

	// Workers bounds training, Add and BatchSearch parallelism.
	// 0 uses the controller budget.
	Workers int

	// Controller accounts memory and worker slots. May be nil.
	Controller *resource.Controller

	// Logger receives build messages. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions contains the default configuration options for the IVF index.
var DefaultOptions = Options{
	Metric:               distance.MetricL2,
	NumProbe:             1,
	MaxIterations:        25,
	MaxPointsPerCentroid: 256,
	Seed:                 1234,
	KMeansInit:           kmeans.InitRandom,
}
