package restrictions

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const minChunk = 256

// EvaluateParallel resolves assets in chunks across at most workers goroutines.
// The result equals q.IsRestrictedBatch(assets, dt).
func EvaluateParallel(ctx context.Context, q Query, assets []Asset, dt time.Time, workers int) (map[Asset]bool, error) {
	if workers <= 1 || len(assets) <= minChunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return q.IsRestrictedBatch(assets, dt), nil
	}
	chunk := (len(assets) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	var mu sync.Mutex
	out := make(map[Asset]bool, len(assets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(assets); start += chunk {
		end := min(start+chunk, len(assets))
		part := assets[start:end]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := q.IsRestrictedBatch(part, dt)
			mu.Lock()
			for a, v := range res {
				out[a] = v
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
