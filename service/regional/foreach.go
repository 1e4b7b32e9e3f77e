package regional

import (
	"context"
	"log/slog"
	"sync"
)

// ForEach runs fn once per regional client, all regions concurrently, and
// blocks until every worker has finished. A worker's error is logged with its
// region and its contribution is simply omitted; sibling regions are never
// aborted.
func ForEach[T any](ctx context.Context, service string, clients map[string]Client[T], fn func(ctx context.Context, c Client[T]) error) {
	var wg sync.WaitGroup
	for _, client := range clients {
		wg.Add(1)
		go func(c Client[T]) {
			defer wg.Done()
			if err := fn(ctx, c); err != nil {
				slog.Error("regional listing failed",
					"service", service, "region", c.Region, "error", err)
			}
		}(client)
	}
	wg.Wait()
}
