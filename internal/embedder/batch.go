package embedder

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vecfs-dev/vecfs/internal/sparse"
)

// batchConcLimit bounds how many embed calls are in flight at once
// during EmbedBatch, so a bulk import never opens one connection per
// text.
const batchConcLimit = 5

// EmbedBatch embeds every text in texts concurrently, preserving input
// order in the result. Used by the CLI's bulk-import path; the tool
// dispatcher itself only ever embeds one text per call.
func EmbedBatch(ctx context.Context, e Embedder, texts []string, mode Mode) ([]sparse.Vector, error) {
	results := make([]sparse.Vector, len(texts))
	sem := make(chan struct{}, batchConcLimit)

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			vec, err := e.Embed(gctx, text, mode)
			if err != nil {
				return fmt.Errorf("embedding text at index %d: %w", i, err)
			}
			mu.Lock()
			results[i] = vec
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
