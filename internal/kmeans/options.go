package kmeans

import (
	"log/slog"

	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/internal/resource"
)

// Init selects the centroid seeding strategy.
type Init int

const (
	// InitRandom seeds centroids with a random sample of distinct points.
	InitRandom Init = iota
	// InitKMeansPlusPlus seeds centroids with k-means++.
	InitKMeansPlusPlus
)

func (i Init) String() string {
	switch i {
	case InitRandom:
		return "random"
	case InitKMeansPlusPlus:
		return "kmeans++"
	default:
		return "unknown"
	}
}

// Options contains configuration for Train.
type Options struct {
	// Metric is the distance used for assignment.
	Metric distance.Metric

	// MaxIterations bounds the number of Lloyd iterations.
	MaxIterations int

	// Seed makes seeding deterministic.
	Seed uint64

	// Init is the seeding strategy.
	Init Init

	// Workers is the assignment parallelism. 0 uses the controller budget.
	Workers int

	// Controller bounds concurrent workers. May be nil.
	Controller *resource.Controller

	// Logger receives progress messages. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions contains the default configuration.
var DefaultOptions = Options{
	Metric:        distance.MetricL2,
	MaxIterations: 25,
	Seed:          1234,
	Init:          InitRandom,
}
