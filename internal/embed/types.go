// Package embed wraps an embedding provider with batching, bounded
// concurrency, and retry.
package embed

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// EmbedBatch embeds every text in one provider call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding width this embedder produces.
	Dimensions() int
}

// StreamOptions configures EmbedStream.
type StreamOptions struct {
	BatchSize   int
	Concurrency int
}

func (o StreamOptions) withDefaults() StreamOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Default batching and concurrency settings.
const (
	DefaultBatchSize   = 100
	DefaultConcurrency = 5
)
