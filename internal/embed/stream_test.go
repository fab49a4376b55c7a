package embed

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	dims      int
	calls     int32
	failUntil int32 // fail the first failUntil calls before succeeding
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if n := atomic.AddInt32(&f.calls, 1); n <= atomic.LoadInt32(&f.failUntil) {
		return nil, fmt.Errorf("transient")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func TestEmbedStream_EmptyInput(t *testing.T) {
	out, err := EmbedStream(context.Background(), &fakeEmbedder{}, nil, StreamOptions{})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEmbedStream_PreservesOrder(t *testing.T) {
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee", "f", "gg", "hhh"}
	f := &fakeEmbedder{dims: 1}

	out, err := EmbedStream(context.Background(), f, texts, StreamOptions{BatchSize: 3, Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, out, len(texts))
	for i, text := range texts {
		assert.Equal(t, float32(len(text)), out[i][0])
	}
}

func TestEmbedStream_RetriesTransientFailure(t *testing.T) {
	var attempts int32
	flaky := &retryingEmbedder{
		fn: func(texts []string) ([][]float32, error) {
			n := atomic.AddInt32(&attempts, 1)
			if n < 3 {
				return nil, fmt.Errorf("transient")
			}
			return make([][]float32, len(texts)), nil
		},
	}

	out, err := EmbedStream(context.Background(), flaky, []string{"x"}, StreamOptions{BatchSize: 1, Concurrency: 1})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestEmbedStream_GivesUpAfterMaxRetries(t *testing.T) {
	always := &retryingEmbedder{
		fn: func(texts []string) ([][]float32, error) {
			return nil, fmt.Errorf("persistent failure")
		},
	}

	_, err := EmbedStream(context.Background(), always, []string{"x"}, StreamOptions{BatchSize: 1, Concurrency: 1})
	assert.Error(t, err)
}

type retryingEmbedder struct {
	fn func([]string) ([][]float32, error)
}

func (r *retryingEmbedder) Dimensions() int { return 0 }
func (r *retryingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return r.fn(texts)
}

func TestPartition(t *testing.T) {
	batches := partition([]string{"a", "b", "c", "d", "e"}, 2)
	require.Len(t, batches, 3)
	assert.Equal(t, []string{"a", "b"}, batches[0])
	assert.Equal(t, []string{"c", "d"}, batches[1])
	assert.Equal(t, []string{"e"}, batches[2])
}
