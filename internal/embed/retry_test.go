package embed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 4, calls) // initial + 3 retries
}

func TestWithRetry_ContextCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, fastRetryConfig(), func() error {
		t.Fatal("should not be called with a cancelled context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedWithRetry_RetriesTransientFailure(t *testing.T) {
	var attempts int
	flaky := &retryingEmbedder{
		fn: func(texts []string) ([][]float32, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient")
			}
			return [][]float32{{1, 2, 3}}, nil
		},
	}

	out, err := EmbedWithRetry(context.Background(), flaky, []string{"query"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 3, attempts)
}

func TestEmbedWithRetry_PropagatesPersistentFailure(t *testing.T) {
	always := &retryingEmbedder{
		fn: func(texts []string) ([][]float32, error) {
			return nil, errors.New("persistent failure")
		},
	}

	_, err := EmbedWithRetry(context.Background(), always, []string{"query"})
	assert.Error(t, err)
}
