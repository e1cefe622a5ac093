// Package parallel runs index work across goroutines under a shared
// resource budget.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecann/internal/resource"
)

// minChunk is the smallest range handed to a single goroutine.
const minChunk = 16

// For splits [0, n) into contiguous chunks and calls fn(lo, hi) for each chunk
// on at most workers goroutines. Each goroutine holds one worker slot of ctrl
// while it runs. fn must only write state owned by its own range.
//
// The first error cancels the remaining chunks and is returned.
func For(ctx context.Context, ctrl *resource.Controller, workers, n int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = ctrl.Workers()
	}

	chunk := max((n+workers-1)/workers, minChunk)
	if chunk >= n {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := ctrl.AcquireWorker(gctx); err != nil {
				return err
			}
			defer ctrl.ReleaseWorker()
			return fn(lo, hi)
		})
	}

	return g.Wait()
}
