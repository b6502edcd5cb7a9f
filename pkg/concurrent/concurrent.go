package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element of items on at most workers
// goroutines and waits for all of them. The first error cancels the context
// passed to the remaining actions and is returned. A non-positive workers
// value runs the actions serially on the calling goroutine.
func ForEach[T any](ctx context.Context, items []T, workers int, action func(context.Context, T) error) error {
	if workers <= 1 || len(items) <= 1 {
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := action(ctx, item); err != nil {
				return err
			}
		}
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, item := range items {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return action(groupCtx, item)
		})
	}

	return group.Wait()
}

// Chunk splits items into at most n contiguous groups of near equal size so
// that small work items can be batched per goroutine.
func Chunk[T any](items []T, n int) [][]T {
	if n <= 1 || len(items) <= 1 {
		return [][]T{items}
	}
	if n > len(items) {
		n = len(items)
	}

	chunks := make([][]T, 0, n)
	size, rest := len(items)/n, len(items)%n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rest {
			end++
		}
		chunks = append(chunks, items[start:end])
		start = end
	}
	return chunks
}
