package embed

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig configures exponential backoff for a single embedding batch.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig retries transient provider failures up to 3 times
// per batch.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     16 * time.Second,
		Multiplier:   2.0,
	}
}

// EmbedWithRetry runs a single EmbedBatch call under DefaultRetryConfig,
// retrying transient provider failures with exponential backoff. Used both
// as EmbedStream's per-batch call and directly by callers that embed one
// batch at a time (e.g. a single search query).
func EmbedWithRetry(ctx context.Context, embedder Embedder, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := withRetry(ctx, DefaultRetryConfig(), func() error {
		v, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		vectors = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// withRetry runs fn with exponential backoff, retrying up to cfg.MaxRetries
// times. Context cancellation aborts immediately.
func withRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(); err != nil {
			lastErr = err
			if attempt >= cfg.MaxRetries {
				break
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
			continue
		}

		return nil
	}

	return fmt.Errorf("embedding batch failed after %d retries: %w", cfg.MaxRetries, lastErr)
}
