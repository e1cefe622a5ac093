package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimitExceeded is returned when a reservation does not fit the budget.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps reserved buffer memory. 0 only tracks usage.
	MemoryLimitBytes int64

	// MaxWorkers caps goroutines doing distance work. 0 means GOMAXPROCS.
	MaxWorkers int64
}

// Controller accounts buffer memory and hands out worker slots.
type Controller struct {
	limit int64
	mem   *semaphore.Weighted // nil when unlimited
	used  atomic.Int64

	workers int
	slots   *semaphore.Weighted
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = int64(runtime.GOMAXPROCS(0))
	}

	c := &Controller{
		limit:   max(cfg.MemoryLimitBytes, 0),
		workers: int(workers),
		slots:   semaphore.NewWeighted(workers),
	}
	if c.limit > 0 {
		c.mem = semaphore.NewWeighted(c.limit)
	}
	return c
}

// AcquireMemory reserves n bytes without blocking. A reservation that would
// exceed the limit fails with ErrMemoryLimitExceeded and reserves nothing.
func (c *Controller) AcquireMemory(n int64) error {
	if c == nil || n <= 0 {
		return nil
	}
	if c.mem != nil && !c.mem.TryAcquire(n) {
		return fmt.Errorf("%w: need %d bytes with %d of %d in use", ErrMemoryLimitExceeded, n, c.used.Load(), c.limit)
	}
	c.used.Add(n)
	return nil
}

// ReleaseMemory returns n bytes to the budget.
func (c *Controller) ReleaseMemory(n int64) {
	if c == nil || n <= 0 {
		return
	}
	if c.mem != nil {
		c.mem.Release(n)
	}
	c.used.Add(-n)
}

// MemoryUsage returns the reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.used.Load()
}

// MemoryLimit returns the limit in bytes, 0 when unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.limit
}

// Workers returns the worker budget.
func (c *Controller) Workers() int {
	if c == nil {
		return runtime.GOMAXPROCS(0)
	}
	return c.workers
}

// AcquireWorker blocks until a worker slot is free or ctx is done.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	return c.slots.Acquire(ctx, 1)
}

// ReleaseWorker frees a slot taken by AcquireWorker.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.slots.Release(1)
}
