package embed

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// EmbedStream partitions texts into opts.BatchSize batches and runs up to
// opts.Concurrency of them in parallel, preserving input order in the
// output. Each batch retries up to 3 times on transient failure. An empty
// input returns without provider contact.
func EmbedStream(ctx context.Context, embedder Embedder, texts []string, opts StreamOptions) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	opts = opts.withDefaults()

	batches := partition(texts, opts.BatchSize)
	results := make([][][]float32, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			vectors, err := EmbedWithRetry(gctx, embedder, batch)
			if err != nil {
				return err
			}
			results[i] = vectors
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([][]float32, 0, len(texts))
	for _, batch := range results {
		out = append(out, batch...)
	}
	return out, nil
}

func partition(texts []string, size int) [][]string {
	var batches [][]string
	for i := 0; i < len(texts); i += size {
		end := i + size
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[i:end])
	}
	return batches
}
