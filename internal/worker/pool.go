package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map runs fn over items on at most workers goroutines.
// Results keep the order of items. fn reports failures in its own result type,
// so one bad item never stops the others; ctx cancellation skips items not yet started.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) R) []R {
	if workers <= 0 {
		workers = 1
	}

	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = fn(gctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
