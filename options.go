package vecann

import (
	"github.com/hupe1980/vecann/distance"
	"github.com/hupe1980/vecann/internal/kmeans"
	"github.com/hupe1980/vecann/internal/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	workers          int
	seed             uint64
	memoryLimit      int64

	// Flat
	metric distance.Metric

	// LSH
	trainThresholds bool

	// IVF
	numProbe      int
	maxIterations int
	kmeansInit    kmeans.Init
}

// Option configures algorithm construction.
//
// Options that do not apply to an algorithm are ignored by it.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		seed:             1234,
		metric:           distance.MetricL2,
		numProbe:         1,
		maxIterations:    25,
		kmeansInit:       kmeans.InitRandom,
	}
}

func applyOptions(optFns []Option) options {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// newController returns a fresh resource budget for one Fit.
func (o *options) newController() *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes: o.memoryLimit,
		MaxWorkers:       int64(o.workers),
	})
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets a metrics collector for operation monitoring.
// If nil is passed, metrics collection is disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithWorkers bounds the goroutines used by batch queries, k-means and
// parallel adds. 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSeed sets the seed for hyperplanes, k-means seeding and training
// subsampling. Equal seeds give identical indexes.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithMemoryLimit caps the bytes held by vector stores and code buffers.
// 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMetric sets the metric of a Flat algorithm. Default: L2.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithTrainThresholds makes LSH use per-bit median thresholds learned from
// the training data instead of 0.
func WithTrainThresholds() Option {
	return func(o *options) {
		o.trainThresholds = true
	}
}

// WithNumProbe sets the initial IVF n_probe. Default: 1.
func WithNumProbe(n int) Option {
	return func(o *options) {
		o.numProbe = n
	}
}

// WithMaxIterations sets the IVF k-means iteration cap. Default: 25.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithKMeansPlusPlus seeds IVF centroids with k-means++ instead of a
// random sample.
func WithKMeansPlusPlus() Option {
	return func(o *options) {
		o.kmeansInit = kmeans.InitKMeansPlusPlus
	}
}
