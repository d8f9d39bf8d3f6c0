package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element of items, at most workers at a time.
// The context passed to action is cancelled as soon as one action fails, and
// ForEach returns the first error encountered. workers < 1 means one worker
// per element.
func ForEach[T any](ctx context.Context, items []T, workers int, action func(ctx context.Context, index int, item T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return action(gctx, i, item)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Map applies mapFn to every element in parallel, preserving order. On error
// the partial results are discarded.
func Map[T any, R any](ctx context.Context, items []T, workers int, mapFn func(ctx context.Context, index int, item T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	err := ForEach(ctx, items, workers, func(ctx context.Context, i int, item T) error {
		r, err := mapFn(ctx, i, item)
		if err != nil {
			return err
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
