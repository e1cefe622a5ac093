package vecann

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    queryCounter   prometheus.Counter
//	    queryHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordQuery(k int, duration time.Duration, err error) {
//	    p.queryCounter.Inc()
//	    p.queryHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordFit is called after each Fit.
	// count is the number of training vectors, err is nil if successful.
	RecordFit(count int, duration time.Duration, err error)

	// RecordQuery is called after each single query.
	RecordQuery(k int, duration time.Duration, err error)

	// RecordBatchQuery is called after each batch query.
	// queries is the batch size.
	RecordBatchQuery(queries, k int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFit(int, time.Duration, error)             {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordBatchQuery(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FitCount         atomic.Int64
	FitErrors        atomic.Int64
	FitVectors       atomic.Int64
	FitTotalNanos    atomic.Int64
	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
	QueryTotalNanos  atomic.Int64
	BatchQueryCount  atomic.Int64
	BatchQueryErrors atomic.Int64
	BatchQueryItems  atomic.Int64
	BatchQueryNanos  atomic.Int64
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(count int, duration time.Duration, err error) {
	b.FitCount.Add(1)
	b.FitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FitErrors.Add(1)
		return
	}
	b.FitVectors.Add(int64(count))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(k int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordBatchQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchQuery(queries, k int, duration time.Duration, err error) {
	b.BatchQueryCount.Add(1)
	b.BatchQueryNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BatchQueryErrors.Add(1)
		return
	}
	b.BatchQueryItems.Add(int64(queries))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FitCount:           b.FitCount.Load(),
		FitErrors:          b.FitErrors.Load(),
		FitVectors:         b.FitVectors.Load(),
		QueryCount:         b.QueryCount.Load(),
		QueryErrors:        b.QueryErrors.Load(),
		QueryAvgNanos:      avgNanos(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		BatchQueryCount:    b.BatchQueryCount.Load(),
		BatchQueryErrors:   b.BatchQueryErrors.Load(),
		BatchQueryItems:    b.BatchQueryItems.Load(),
		BatchQueryAvgNanos: avgNanos(b.BatchQueryNanos.Load(), b.BatchQueryCount.Load()),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FitCount           int64
	FitErrors          int64
	FitVectors         int64
	QueryCount         int64
	QueryErrors        int64
	QueryAvgNanos      int64
	BatchQueryCount    int64
	BatchQueryErrors   int64
	BatchQueryItems    int64
	BatchQueryAvgNanos int64
}
