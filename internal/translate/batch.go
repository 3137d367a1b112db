package translate

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

type batchFunc func(ctx context.Context, items []Item) ([]Result, error)

// runBatches splits items into batches of batchSize and sends up to
// concurrency of them at once. The first failing batch cancels the rest.
// Results come back ordered by item index.
func runBatches(
	ctx context.Context,
	items []Item,
	batchSize, concurrency int,
	call batchFunc,
) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}

	var batches [][]Item
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		batches = append(batches, items[i:end])
	}
	if len(batches) == 1 {
		return call(ctx, batches[0])
	}

	out := make([][]Result, len(batches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results, err := call(ctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			out[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Result
	for _, results := range out {
		all = append(all, results...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}
